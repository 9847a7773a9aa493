// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package ais

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	// ErrNotPositionReport marks frames whose MessageType is not a position
	// report subtype. Callers skip these silently.
	ErrNotPositionReport = errors.New("ais: not a position report")

	// ErrMalformedFrame marks frames that claim to be position reports but
	// cannot be decoded into one.
	ErrMalformedFrame = errors.New("ais: malformed frame")
)

// envelope is the outer aisstream.io frame. Unknown fields are ignored.
type envelope struct {
	MessageType string                     `json:"MessageType"`
	MetaData    metaData                   `json:"MetaData"`
	Message     map[string]json.RawMessage `json:"Message"`
}

type metaData struct {
	MMSI      int64   `json:"MMSI"`
	ShipName  string  `json:"ShipName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// positionBody covers the fields shared by all three position report subtypes.
// Sog and Cog are pointers so a missing value defaults to zero explicitly.
type positionBody struct {
	UserID    int64    `json:"UserID"`
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
	Sog       *float64 `json:"Sog"`
	Cog       *float64 `json:"Cog"`
}

// DecodePositionReport decodes one raw frame. It returns ErrNotPositionReport
// for frames of any other type and an error wrapping ErrMalformedFrame for
// position frames that are unusable.
func DecodePositionReport(frame []byte, receivedAt time.Time) (PositionReport, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return PositionReport{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	if !IsPositionMessageType(env.MessageType) {
		return PositionReport{}, ErrNotPositionReport
	}

	raw, ok := env.Message[env.MessageType]
	if !ok {
		return PositionReport{}, fmt.Errorf("%w: missing %s body", ErrMalformedFrame, env.MessageType)
	}

	var body positionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return PositionReport{}, fmt.Errorf("%w: %s body: %v", ErrMalformedFrame, env.MessageType, err)
	}

	vesselID := body.UserID
	if vesselID == 0 {
		vesselID = env.MetaData.MMSI
	}
	if vesselID <= 0 {
		return PositionReport{}, fmt.Errorf("%w: missing vessel identity", ErrMalformedFrame)
	}

	var lat, lon float64
	switch {
	case body.Latitude != nil && body.Longitude != nil:
		lat, lon = *body.Latitude, *body.Longitude
	case env.MetaData.Latitude != 0 || env.MetaData.Longitude != 0:
		lat, lon = env.MetaData.Latitude, env.MetaData.Longitude
	default:
		return PositionReport{}, fmt.Errorf("%w: vessel %d has no position", ErrMalformedFrame, vesselID)
	}
	// 91/181 is the AIS "not available" sentinel.
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return PositionReport{}, fmt.Errorf("%w: vessel %d position unavailable (%v, %v)", ErrMalformedFrame, vesselID, lat, lon)
	}

	var sog, cog float64
	if body.Sog != nil && *body.Sog > 0 {
		sog = *body.Sog
	}
	if body.Cog != nil {
		cog = NormalizeCourse(*body.Cog)
	}

	return PositionReport{
		VesselID:         vesselID,
		Lat:              lat,
		Lon:              lon,
		SpeedOverGround:  sog,
		CourseOverGround: cog,
		ShipName:         strings.TrimSpace(env.MetaData.ShipName),
		MessageType:      env.MessageType,
		ReceivedAt:       receivedAt,
	}, nil
}

// NormalizeCourse maps any course in degrees into [0, 360).
func NormalizeCourse(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	c := math.Mod(deg, 360)
	if c < 0 {
		c += 360
	}
	// -0.0 and float rounding at exactly 360
	if c >= 360 || c == 0 {
		return 0
	}
	return c
}
