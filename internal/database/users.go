// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "username:"
)

func usernameKey(username string) string {
	return usernameKeyPrefix + strings.ToLower(username)
}

// CreateUser stores a new account. Usernames are unique ignoring case.
func (d *DB) CreateUser(ctx context.Context, username, displayName string, passwordHash []byte) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    d.now().UTC(),
	}

	err := d.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(usernameKey(username))
		_, err := txn.Get(nameKey)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username: %w", err)
		}

		if err := txn.Set(nameKey, []byte(user.ID)); err != nil {
			return fmt.Errorf("set username index: %w", err)
		}
		return setJSON(txn, userKeyPrefix+user.ID, user, 0)
	})
	// A concurrent registration of the same name loses on commit.
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID returns the user with id.
func (d *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user User
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername looks a user up by name, ignoring case.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user User
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(usernameKey(username)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get username index: %w", err)
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+string(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
