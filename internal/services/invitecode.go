package services

import (
	"crypto/rand"
	"strings"
)

// Invite codes are short enough to read over the phone. Ambiguous glyphs
// (I, L, O, 0, 1) are excluded from the alphabet.
const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

func newInviteCode() string {
	buf := make([]byte, inviteCodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf)
}

// normalizeInviteCode makes lookup case- and whitespace-insensitive.
func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
