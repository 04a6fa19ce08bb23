package security

import (
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/jiayou/auth-service/internal/domain"
)

// bcryptMaxPasswordBytes is the input limit of the bcrypt key schedule.
const bcryptMaxPasswordBytes = 72

// A stored hash may be up to bcryptCostMargin above the larger of the
// configured cost and bcrypt.DefaultCost. Each extra point doubles the work.
const bcryptCostMargin = 2

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects passwords bcrypt would otherwise refuse as a validation
// error rather than an internal failure.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > bcryptMaxPasswordBytes {
		return "", domain.ErrWeakPassword("longer than " + strconv.Itoa(bcryptMaxPasswordBytes) + " bytes")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrWeakPassword("longer than " + strconv.Itoa(bcryptMaxPasswordBytes) + " bytes")
	}
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Verify is false for a mismatch, for any malformed hash and for a hash whose
// cost is above maxCost.
func (h *BcryptHasher) Verify(password, hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost > h.maxCost() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *BcryptHasher) maxCost() int {
	return max(h.cost, bcrypt.DefaultCost) + bcryptCostMargin
}
