// Package randid generates short random identifiers and OAuth state values.
package randid

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// StateLength is the length of values returned by State: 32 characters from
// a 36-symbol alphabet is a little over 165 bits.
const StateLength = 32

// Bytes at or above this bound are rejected so every symbol is equally likely.
const unbiasedLimit = 256 - 256%len(alphabet)

// Generate returns a random string of length n drawn from [a-z0-9].
func Generate(n int) string {
	s, err := generate(rand.Reader, n)
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms.
		panic("randid: " + err.Error())
	}
	return s
}

// State returns a value for the OAuth state parameter.
func State() string {
	return Generate(StateLength)
}

// Match compares an expected state with the one a callback presented,
// in time independent of where they differ. Empty values never match.
func Match(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func generate(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= unbiasedLimit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
