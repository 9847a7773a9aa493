// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// CreateSession starts a session for userID that expires after ttl.
func (d *DB) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	now := d.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	err := d.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, sessionKeyPrefix+session.ID, session, ttl)
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// GetSession returns a live session. Expired sessions read as ErrNotFound.
func (d *DB) GetSession(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session Session
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, sessionKeyPrefix+id, &session)
	})
	if err != nil {
		return nil, err
	}
	// badger TTL has one second granularity.
	if !d.now().Before(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// DeleteSession ends a session. Deleting an unknown session is not an error.
func (d *DB) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKeyPrefix + id))
	})
}
