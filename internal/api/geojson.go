// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package api

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sailmap/internal/ais"
)

var errNoLineGeometry = errors.New("geojson contains no LineString geometry")

// geoObject is the union of the GeoJSON object shapes a drawn route can
// arrive as.
type geoObject struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometry    *geoObject      `json:"geometry"`
	Features    []geoObject     `json:"features"`
	Geometries  []geoObject     `json:"geometries"`
}

// routeLengthKm sums the great-circle length of every LineString and
// MultiLineString in a GeoJSON geometry, Feature or FeatureCollection.
// Positions are [lon, lat] as GeoJSON specifies.
func routeLengthKm(raw json.RawMessage) (float64, error) {
	var obj geoObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("parse geojson: %w", err)
	}

	total, found, err := obj.lengthKm()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errNoLineGeometry
	}
	return total, nil
}

func (g *geoObject) lengthKm() (float64, bool, error) {
	switch g.Type {
	case "LineString":
		var line [][]float64
		if err := json.Unmarshal(g.Coordinates, &line); err != nil {
			return 0, false, fmt.Errorf("parse LineString: %w", err)
		}
		path, err := toPath(line)
		return ais.PathLengthKm(path), true, err

	case "MultiLineString":
		var lines [][][]float64
		if err := json.Unmarshal(g.Coordinates, &lines); err != nil {
			return 0, false, fmt.Errorf("parse MultiLineString: %w", err)
		}
		var total float64
		for _, line := range lines {
			path, err := toPath(line)
			if err != nil {
				return 0, false, err
			}
			total += ais.PathLengthKm(path)
		}
		return total, true, nil

	case "Feature":
		if g.Geometry == nil {
			return 0, false, nil
		}
		return g.Geometry.lengthKm()

	case "FeatureCollection":
		return sumLengths(g.Features)

	case "GeometryCollection":
		return sumLengths(g.Geometries)
	}
	return 0, false, nil
}

func sumLengths(objs []geoObject) (float64, bool, error) {
	var total float64
	var found bool
	for i := range objs {
		km, ok, err := objs[i].lengthKm()
		if err != nil {
			return 0, false, err
		}
		total += km
		found = found || ok
	}
	return total, found, nil
}

func toPath(positions [][]float64) ([]ais.LatLon, error) {
	path := make([]ais.LatLon, 0, len(positions))
	for _, p := range positions {
		if len(p) < 2 {
			return nil, fmt.Errorf("position has %d values, want at least 2", len(p))
		}
		path = append(path, ais.LatLon{Lat: p[1], Lon: p[0]})
	}
	return path, nil
}
