// Package users manages the account roster and credential checks. Accounts
// are created by seeding only; there is no self-registration.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"cinelog/internal/database"
	"cinelog/models"
)

// ErrUnknownUser is returned when a lookup targets a username that was never
// seeded.
var ErrUnknownUser = errors.New("unknown user")

const bcryptCost = 12

// Service owns account lookups and password verification.
type Service struct {
	db *database.DB
}

func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Check verifies a username/password pair. It satisfies the credential
// checker contract of the auth middleware: unknown users report ok=false,
// not an error.
func (s *Service) Check(username, pass string) (bool, error) {
	user, err := s.db.Users.GetByUsername(context.Background(), username)
	if err != nil {
		return false, fmt.Errorf("lookup %q: %w", username, err)
	}
	if user == nil {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(pass)) != nil {
		return false, nil
	}
	if err := s.db.Users.TouchLastLogin(context.Background(), user.ID); err != nil {
		log.Printf("[users] last login update for %q failed: %v", username, err)
	}
	return true, nil
}

// Get returns the account for a username.
func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.db.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}

// Seed ensures the given accounts exist. Passwords come from the provided
// map; an account without one gets a generated password that is logged once
// so the operator can record it. Existing accounts are left untouched.
func (s *Service) Seed(ctx context.Context, usernames []string, passwords map[string]string) error {
	for _, username := range usernames {
		existing, err := s.db.Users.GetByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("seed lookup %q: %w", username, err)
		}
		if existing != nil {
			continue
		}

		pass, provided := passwords[username]
		if !provided {
			pass, err = password.Generate(16, 4, 0, false, false)
			if err != nil {
				return fmt.Errorf("generate password for %q: %w", username, err)
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %q: %w", username, err)
		}

		if _, err := s.db.Users.Create(ctx, username, string(hash)); err != nil {
			return fmt.Errorf("create %q: %w", username, err)
		}
		if provided {
			log.Printf("[users] seeded account %q", username)
		} else {
			log.Printf("[users] seeded account %q with generated password: %s", username, pass)
		}
	}
	return nil
}
