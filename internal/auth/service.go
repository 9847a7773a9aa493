// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/sailmap/internal/database"
	"github.com/tomtom215/sailmap/internal/logging"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password; callers must not tell the two apart.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

// UserStore is the account storage the service needs.
// Satisfied by *database.DB.
type UserStore interface {
	CreateUser(ctx context.Context, username, displayName string, passwordHash []byte) (*database.User, error)
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
	GetUserByID(ctx context.Context, id string) (*database.User, error)
}

// Service registers and authenticates accounts.
type Service struct {
	users UserStore
	cost  int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService creates a Service hashing with the given bcrypt cost.
func NewService(users UserStore, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{users: users, cost: bcryptCost}
}

// Register creates an account. An empty displayName defaults to the
// username. A duplicate name returns database.ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*database.User, error) {
	if displayName == "" {
		displayName = username
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, displayName, hash)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("account registered")
	return user, nil
}

// Login verifies a username and password.
func (s *Service) Login(ctx context.Context, username, password string) (*database.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		// Spend the same bcrypt time as a real check.
		CheckPassword(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		logging.Ctx(ctx).Info().Str("username", username).Msg("login failed")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User returns the account for id, or database.ErrNotFound.
func (s *Service) User(ctx context.Context, id string) (*database.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		//nolint:errcheck // a nil hash still costs a compare
		s.dummyHash, _ = HashPassword("sailmap-dummy-password", s.cost)
	})
	return s.dummyHash
}
