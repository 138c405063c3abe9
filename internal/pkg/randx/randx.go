/*
Package randx provides functions for generating cryptographically secure random identifiers.

It is primarily used to generate UUID entity identifiers and random suffixes for
blob-storage object keys.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// FileSuffixLength is the length of the random Base62 suffix appended to object keys.
	FileSuffixLength = 8
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidUserID reports whether the given string parses as a canonical UUID.
// User, message and notification identifiers are all UUIDs; rejecting malformed
// values here keeps garbage out of the durable store's uuid columns.
func IsValidUserID(id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return true
}

// FileSuffix generates a Base62 random suffix for blob object keys using crypto/rand.
func FileSuffix() (string, error) {
	result := make([]byte, FileSuffixLength)

	for i := 0; i < FileSuffixLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for file suffix: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}
