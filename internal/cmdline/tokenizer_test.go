package cmdline

import (
	"reflect"
	"testing"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{
			name:    "plain words",
			command: "qmake -o Makefile ../src/app.pro",
			want:    []string{"qmake", "-o", "Makefile", "../src/app.pro"},
		},
		{
			name:    "collapses runs of whitespace",
			command: "  qmake \t -nocache   app.pro ",
			want:    []string{"qmake", "-nocache", "app.pro"},
		},
		{
			name:    "double quotes keep spaces",
			command: `qmake -o "My Makefile" app.pro`,
			want:    []string{"qmake", "-o", "My Makefile", "app.pro"},
		},
		{
			name:    "single quotes keep everything",
			command: `qmake 'DEFINES += "A B"' app.pro`,
			want:    []string{"qmake", `DEFINES += "A B"`, "app.pro"},
		},
		{
			name:    "quotes join adjacent segments",
			command: `qmake "a b"c app.pro`,
			want:    []string{"qmake", "a bc", "app.pro"},
		},
		{
			name:    "backslash escapes a space",
			command: `qmake My\ File.pro`,
			want:    []string{"qmake", "My File.pro"},
		},
		{
			name:    "escaped quote inside double quotes",
			command: `qmake "say \"hi\"" app.pro`,
			want:    []string{"qmake", `say "hi"`, "app.pro"},
		},
		{
			name:    "backslash kept inside double quotes when not escaping",
			command: `qmake "a\b"`,
			want:    []string{"qmake", `a\b`},
		},
		{
			name:    "empty command",
			command: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitCommand(tt.command)
			if err != nil {
				t.Fatalf("SplitCommand(%q) failed: %v", tt.command, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCommand(%q) = %#v, want %#v", tt.command, got, tt.want)
			}
		})
	}
}

func TestSplitCommand_Errors(t *testing.T) {
	for _, command := range []string{
		`qmake "unterminated`,
		`qmake 'unterminated`,
		`qmake trailing\`,
	} {
		if _, err := SplitCommand(command); err == nil {
			t.Errorf("SplitCommand(%q) succeeded, want error", command)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"plain", `"plain"`},
		{"with space", `"with space"`},
		{`embedded "quote"`, `"embedded \"quote\""`},
		{`back\slash`, `"back\\slash"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := Quote(tt.token); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.token, got, tt.want)
		}
	}
}

func TestJoinCommand_RoundTrip(t *testing.T) {
	tokens := []string{"qmake", "-o", "My Makefile", `TARGET="x"`, "app.pro"}
	joined := JoinCommand(tokens)
	got, err := SplitCommand(joined)
	if err != nil {
		t.Fatalf("SplitCommand(%q) failed: %v", joined, err)
	}
	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("round trip = %#v, want %#v", got, tokens)
	}
}
