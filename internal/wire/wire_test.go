package wire

import "testing"

func TestIdent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"qmprobe", "qmprobe"},
		{"qmprobe-1a2b", "qmprobe_1a2b"},
		{"a.b/c d", "a_b_c_d"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Ident(tt.raw); got != tt.want {
			t.Errorf("Ident(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSentinelsAreNamespaced(t *testing.T) {
	for _, s := range []string{BeginSentinel, EndSentinel, VariableMarker, TestMarker, MagicExitToken} {
		if len(s) <= len(Namespace) || s[:len(Namespace)] != Namespace {
			t.Errorf("%q is not under the %q namespace", s, Namespace)
		}
	}
}
