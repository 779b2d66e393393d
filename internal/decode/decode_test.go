package decode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_Window(t *testing.T) {
	output := `Info: creating stash file /tmp/.qmake.stash
qmprobe::variable:EARLY:ignored before window
Project MESSAGE: qmprobe::BEGIN
Project MESSAGE: qmprobe::variable:SOURCES:main.cpp
Project MESSAGE: qmprobe::variable:SOURCES:util.cpp
some unrelated noise line
Project MESSAGE: qmprobe::test:CONFIG(debug, debug|release):1
Project MESSAGE: qmprobe::END
Project MESSAGE: qmprobe::variable:LATE:ignored after window
Project ERROR: qmprobe-early-exit-5ca1ab1e
`
	got := Decode(output)

	wantVars := map[string][]string{
		"SOURCES": {"main.cpp", "util.cpp"},
	}
	wantTests := map[string]string{
		"CONFIG(debug, debug|release)": "1",
	}
	if diff := cmp.Diff(wantVars, got.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantTests, got.Tests); diff != "" {
		t.Errorf("tests mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NoWindow(t *testing.T) {
	got := Decode("qmake: could not find a Qt installation of ''\n")
	if len(got.Variables) != 0 || len(got.Tests) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestDecode_EmptyElementPreserved(t *testing.T) {
	output := `qmprobe::BEGIN
qmprobe::variable:DEFINES:
qmprobe::END
`
	got := Decode(output)
	if diff := cmp.Diff([]string{""}, got.Variables["DEFINES"]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_SameRunTestOverwrites(t *testing.T) {
	output := `qmprobe::BEGIN
qmprobe::test:win32:0
qmprobe::test:win32:1
qmprobe::END
`
	got := Decode(output)
	if got.Tests["win32"] != "1" {
		t.Errorf("Tests[win32] = %q, want later value to win", got.Tests["win32"])
	}
}

func TestMerge(t *testing.T) {
	cache := NewResult()
	cache.Variables["TARGET"] = []string{"myapp"}
	cache.Variables["SOURCES"] = []string{"main.cpp"}
	cache.Tests["unix"] = "1"

	run := NewResult()
	run.Variables["SOURCES"] = []string{"main.cpp", "extra.cpp"}
	run.Variables["HEADERS"] = []string{"app.h"}
	run.Tests["win32"] = "0"

	cache.Merge(run)

	want := map[string][]string{
		"TARGET":  {"myapp"},                 // untouched: absent from this run
		"SOURCES": {"main.cpp", "extra.cpp"}, // overwritten by this run
		"HEADERS": {"app.h"},                 // added by this run
	}
	if diff := cmp.Diff(want, cache.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if cache.Tests["unix"] != "1" || cache.Tests["win32"] != "0" {
		t.Errorf("tests merged wrong: %+v", cache.Tests)
	}
}
