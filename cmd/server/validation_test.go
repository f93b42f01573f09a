package server

import "testing"

func TestIsAllowedEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"foo@tezu.ac.in", true},
		{"bar@tezu.ernet.in", true},
		{"foo@gmail.com", false},
		{"foo@TEZU.AC.IN", false},
		{"foo@sub.tezu.ac.in", false},
		{"foo@tezu.ac.in.evil.com", false},
		{"no-at-sign", false},
		{"", false},
		{"foo@", false},
		// More than one "@" never matches.
		{"a@b@tezu.ac.in", false},
		{"a@tezu.ac.in@evil.com", false},
	}
	for _, tc := range tests {
		if got := isAllowedEmailDomain(tc.email); got != tc.want {
			t.Errorf("isAllowedEmailDomain(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	if got := emailDomain("x@y@z"); got != "y@z" {
		t.Fatalf("expected everything after the first @, got %q", got)
	}
	if got := emailDomain("plain"); got != "" {
		t.Fatalf("expected empty domain, got %q", got)
	}
}
