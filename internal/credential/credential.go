// Package credential provides the password hashing collaborator.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong is returned by Hash for secrets bcrypt cannot represent.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// Hasher turns secrets into digests and checks them.
type Hasher interface {
	Hash(secret string) (string, error)
	Matches(secret, digest string) bool
}

// Bcrypt is a Hasher backed by golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a bcrypt Hasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

func (b *Bcrypt) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

func (b *Bcrypt) Matches(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
