package scrub

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no pii", "considering closing due to high fees", "considering closing due to high fees"},
		{"email", "reach me at jane.doe@example.com please", "reach me at [email] please"},
		{"phone dashes", "call 555-123-4567 tomorrow", "call [phone] tomorrow"},
		{"phone spaces", "call 555 123 4567 tomorrow", "call [phone] tomorrow"},
		{"both", "a@b.org or 555-123-4567", "[email] or [phone]"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTextKeepsSurroundings(t *testing.T) {
	t.Parallel()

	got := Text("customer wrote to support@bank.example about fees")
	if strings.Contains(got, "@") {
		t.Fatalf("email survived scrub: %q", got)
	}
	if !strings.Contains(got, "about fees") {
		t.Fatalf("surrounding text damaged: %q", got)
	}
}
