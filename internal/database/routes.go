// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	routeKeyPrefix        = "route:"
	routeOwnerKeyPrefix   = "route_owner:"
	legacyRoutesKeyPrefix = "legacy_routes:"
)

func routeOwnerKey(ownerID, routeID string) string {
	return routeOwnerKeyPrefix + ownerID + ":" + routeID
}

// CreateRoute saves a route and returns its id.
func (d *DB) CreateRoute(ctx context.Context, in NewRoute) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate route id: %w", err)
	}

	route := Route{
		ID:         id.String(),
		OwnerID:    in.OwnerID,
		Name:       in.Name,
		DistanceKm: in.DistanceKm,
		Color:      in.Color,
		GeoJSON:    in.GeoJSON,
		CreatedAt:  d.now().UTC(),
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, routeKeyPrefix+route.ID, route, 0); err != nil {
			return err
		}
		if route.OwnerID == "" {
			return nil
		}
		return txn.Set([]byte(routeOwnerKey(route.OwnerID, route.ID)), nil)
	})
	if err != nil {
		return "", fmt.Errorf("create route: %w", err)
	}
	return route.ID, nil
}

// ListRoutes returns the routes of ownerID, or every route when ownerID is
// empty, oldest first.
func (d *DB) ListRoutes(ctx context.Context, ownerID string) ([]Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	routes := []Route{}
	err := d.db.View(func(txn *badger.Txn) error {
		if ownerID == "" {
			return scanRoutes(txn, &routes)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(routeOwnerKeyPrefix + ownerID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			routeID := string(it.Item().Key()[len(prefix):])
			var r Route
			err := getJSON(txn, routeKeyPrefix+routeID, &r)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			routes = append(routes, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

func scanRoutes(txn *badger.Txn, out *[]Route) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(routeKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var r Route
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		}); err != nil {
			return err
		}
		*out = append(*out, r)
	}
	return nil
}

// DeleteRoute deletes route id if it belongs to ownerID. It reports whether
// anything was deleted; a route owned by someone else is left alone.
func (d *DB) DeleteRoute(ctx context.Context, id, ownerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted := false
	err := d.db.Update(func(txn *badger.Txn) error {
		var r Route
		err := getJSON(txn, routeKeyPrefix+id, &r)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if r.OwnerID == "" || r.OwnerID != ownerID {
			return nil
		}

		if err := txn.Delete([]byte(routeKeyPrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(routeOwnerKey(ownerID, id))); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete route: %w", err)
	}
	return deleted, nil
}

// SaveLegacyRoutes stores one payload from the old batch endpoint.
func (d *DB) SaveLegacyRoutes(ctx context.Context, data json.RawMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate batch id: %w", err)
	}
	batch := LegacyRouteBatch{ID: id.String(), Data: data, CreatedAt: d.now().UTC()}

	err = d.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, legacyRoutesKeyPrefix+batch.ID, batch, 0)
	})
	if err != nil {
		return "", fmt.Errorf("save legacy routes: %w", err)
	}
	return batch.ID, nil
}

// LoadLegacyRoutes returns every stored batch payload, oldest first.
func (d *DB) LoadLegacyRoutes(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []json.RawMessage{}
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(legacyRoutesKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var batch LegacyRouteBatch
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &batch)
			}); err != nil {
				return err
			}
			out = append(out, batch.Data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load legacy routes: %w", err)
	}
	return out, nil
}
