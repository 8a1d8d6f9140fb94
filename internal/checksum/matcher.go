package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Digest returns the hex sha256 of everything read from r. Uploaded documents
// are stored under their digest so re-uploading identical bytes reuses the
// same file.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matcher verifies that stored bytes still hash to the digest they were
// filed under.
type Matcher struct {
	expected string
}

func NewMatcher(expected string) *Matcher {
	return &Matcher{expected: expected}
}

func (m *Matcher) Match(r io.Reader) (bool, error) {
	got, err := Digest(r)
	if err != nil {
		return false, err
	}
	return got == m.expected, nil
}
