// Package nanoid generates entity primary keys.
package nanoid

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// PrimaryKeySize is the length of every entity id.
	PrimaryKeySize = 16

	// primaryKeyAlphabet excludes characters that are awkward in URLs.
	primaryKeyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// PrimaryKey generates a new entity id.
func PrimaryKey() string {
	return gonanoid.MustGenerate(primaryKeyAlphabet, PrimaryKeySize)
}

// Must generates a NanoID of the given length using the default alphabet.
func Must(l ...int) string {
	size := PrimaryKeySize
	if len(l) > 0 {
		size = l[0]
	}
	return gonanoid.Must(size)
}

// IsPrimaryKey verifies whether a string looks like a generated entity id.
func IsPrimaryKey(id string) bool {
	if len(id) != PrimaryKeySize {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune(primaryKeyAlphabet, c) {
			return false
		}
	}
	return true
}
