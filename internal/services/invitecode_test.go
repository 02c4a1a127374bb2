package services

import (
	"strings"
	"testing"
)

func TestNewInviteCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newInviteCode()
		if len(code) != inviteCodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteCodeAlphabet, r) {
				t.Fatalf("code %q contains %q", code, r)
			}
			if r >= 'a' && r <= 'z' {
				t.Fatalf("code %q is not uppercase", code)
			}
		}
	}
}

func TestNormalizeInviteCode(t *testing.T) {
	cases := map[string]string{
		"abc234":     "ABC234",
		"  ABC234 ":  "ABC234",
		"\tAbC234\n": "ABC234",
		"":           "",
	}
	for in, want := range cases {
		if got := normalizeInviteCode(in); got != want {
			t.Fatalf("normalizeInviteCode(%q) = %q, want %q", in, got, want)
		}
	}
}
