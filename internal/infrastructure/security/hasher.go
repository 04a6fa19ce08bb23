package security

import (
	"fmt"
	"strings"
)

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"
)

type hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// MultiHasher hashes with the configured algorithm and verifies any hash
// produced by a supported algorithm, dispatching on the encoded prefix.
type MultiHasher struct {
	primary hasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

type HasherConfig struct {
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Params
}

func NewPasswordHasher(cfg HasherConfig) (*MultiHasher, error) {
	m := &MultiHasher{
		bcrypt: NewBcryptHasher(cfg.BcryptCost),
		argon2: NewArgon2Hasher(cfg.Argon2),
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Algorithm)) {
	case "", AlgoBcrypt:
		m.primary = m.bcrypt
	case AlgoArgon2id:
		m.primary = m.argon2
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", cfg.Algorithm)
	}
	return m, nil
}

func (m *MultiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *MultiHasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, argon2Prefix):
		return m.argon2.Verify(password, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return m.bcrypt.Verify(password, hash)
	default:
		return false
	}
}
