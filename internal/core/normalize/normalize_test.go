package normalize

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	n := New()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Closing MY Account", "closing my account"},
		{"collapses whitespace", "too   many\t\tfees \n here", "too many fees here"},
		{"fullwidth folds", "ｆｅｅｓ", "fees"},
		{"strips zero width", "fe​es", "fees"},
		{"trims", "  rate went up  ", "rate went up"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean passthrough", "hello", "hello"},
		{"drops nul", "a\x00b", "ab"},
		{"keeps newline and tab", "a\nb\tc", "a\nb\tc"},
		{"drops del", "a\x7fb", "ab"},
		{"drops invalid utf8", "a\xffb", "ab"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
