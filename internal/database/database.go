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
	"github.com/goccy/go-json"

	"github.com/tomtom215/sailmap/internal/logging"
)

var (
	// ErrNotFound is returned when a user, session or route does not exist.
	ErrNotFound = errors.New("database: not found")

	// ErrUsernameTaken is returned by CreateUser for a duplicate username.
	ErrUsernameTaken = errors.New("database: username already exists")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("database: closed")
)

// DefaultGCInterval is how often value log garbage collection runs.
const DefaultGCInterval = 10 * time.Minute

// Config configures the store.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM (tests, demos).
	InMemory bool

	// GCInterval defaults to DefaultGCInterval.
	GCInterval time.Duration
}

// DB is the BadgerDB-backed store.
//
// Thread Safety: all methods are safe for concurrent use; badger provides
// serializable transactions.
type DB struct {
	db  *badger.DB
	cfg Config
	now func() time.Time
}

// Open opens (or creates) the store.
func Open(cfg Config) (*DB, error) {
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("database path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // badger's own logger is noisy

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("database opened")

	return &DB{db: db, cfg: cfg, now: time.Now}, nil
}

// Close flushes and closes the store.
func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	return d.db.Close()
}

// Ping reports whether the store can serve reads.
func (d *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.db.IsClosed() {
		return ErrClosed
	}
	return d.db.View(func(*badger.Txn) error { return nil })
}

// RunWithContext runs value log GC every GCInterval until ctx is cancelled.
func (d *DB) RunWithContext(ctx context.Context) error {
	if d.cfg.InMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(d.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.collectGarbage()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (d *DB) String() string {
	return "database-gc"
}

func (d *DB) collectGarbage() {
	rewrites := 0
	for {
		err := d.db.RunValueLogGC(0.5)
		if err == nil {
			rewrites++
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			logging.Warn().Err(err).Msg("value log GC failed")
		}
		break
	}
	if rewrites > 0 {
		logging.Debug().Int("rewrites", rewrites).Msg("value log GC complete")
	}
}

// getJSON loads key into v, mapping a missing key to ErrNotFound.
func getJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// setJSON stores v under key, with a TTL when ttl > 0.
func setJSON(txn *badger.Txn, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	e := badger.NewEntry([]byte(key), data)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return txn.SetEntry(e)
}
