// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

/*
Package cache provides a thread-safe in-memory cache with TTL support.

It sits in front of slow or rate-limited upstream lookups, currently the
OpenWeatherMap conditions client, so that repeated requests for the same
area inside the TTL never leave the process.

# Usage

	c := cache.New[weather.Conditions]("weather", 10*time.Minute)
	defer c.Close()

	key := cache.GenerateKey("conditions", coords)
	if v, ok := c.Get(key); ok {
	    return v, nil
	}
	v, err := fetch()
	if err == nil {
	    c.Set(key, v)
	}

# Expiration

Expired entries are dropped lazily on Get and by a background sweep every
cleanup interval. Close stops the sweep.

# Metrics

Every lookup is counted in cache_hits_total / cache_misses_total, labeled
with the cache name.
*/
package cache
