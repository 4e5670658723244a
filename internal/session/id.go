package session

import "crypto/rand"

// idAlphabet is every visible-ASCII character 0x21-0x7E, matching the
// source's filtering of string.ascii_letters+digits+punctuation down to
// the range that excludes space (0x20) and DEL (0x7F).
var idAlphabet = buildAlphabet()

func buildAlphabet() []byte {
	alphabet := make([]byte, 0, 0x7E-0x21+1)
	for c := byte(0x21); c <= 0x7E; c++ {
		alphabet = append(alphabet, c)
	}
	return alphabet
}

const idLength = 32

// generateID returns a cryptographically random 32-character string drawn
// from idAlphabet.
func generateID() (string, error) {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, idLength)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out), nil
}

// ValidCharset reports whether id consists only of visible ASCII
// characters in the range 0x21-0x7E, rejecting space and DEL.
func ValidCharset(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x21 || c > 0x7E {
			return false
		}
	}
	return true
}
