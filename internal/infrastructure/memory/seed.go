package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jiayou/auth-service/internal/domain"
)

// Hasher is the minimal surface we need for seeding.
type Hasher interface {
	Hash(password string) (string, error)
}

// Inserter is any credential store that can take a new identity.
type Inserter interface {
	Insert(ctx context.Context, id domain.Identity) (domain.Identity, error)
}

type SeedIdentity struct {
	Email    string
	Role     domain.Role
	Password string
	First    string
	Last     string
}

// DevSeeds are the local development accounts.
var DevSeeds = []SeedIdentity{
	{Email: "family@example.com", Role: domain.RoleFamily, Password: "FamilyPassword123!", First: "Lin", Last: "Chen"},
	{Email: "caregiver@example.com", Role: domain.RoleCaregiver, Password: "CaregiverPassword123!", First: "Mei", Last: "Wang"},
}

// SeedIdentities inserts seeds into store. Safe to call multiple times
// (duplicates ignored). Returns how many were created.
func SeedIdentities(ctx context.Context, store Inserter, hasher Hasher, seeds []SeedIdentity, log zerolog.Logger) int {
	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Password)
		if err != nil {
			log.Warn().Err(err).Str("email", s.Email).Msg("seed hash failed")
			continue
		}

		_, err = store.Insert(ctx, domain.Identity{
			ID:           uuid.NewString(),
			Email:        s.Email,
			PasswordHash: hash,
			Role:         s.Role,
			Language:     domain.DefaultLanguage,
			FirstName:    s.First,
			LastName:     s.Last,
			Active:       true,
		})
		if err != nil {
			// ignore duplicates / restart
			continue
		}
		created++
	}

	log.Info().Int("created", created).Msg("dev identities seeded")
	return created
}
