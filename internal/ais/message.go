// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

// Package ais speaks the aisstream.io protocol: the subscription control
// message, the position report envelope, and a single upstream WebSocket
// connection that hands raw frames to its owner without interpreting them.
package ais

import (
	"time"
)

// Position report subtypes carried by the stream. Every other MessageType is ignored.
const (
	MessageTypePositionReport         = "PositionReport"
	MessageTypeStandardClassBPosition = "StandardClassBPositionReport"
	MessageTypeExtendedClassBPosition = "ExtendedClassBPositionReport"
)

// PositionMessageTypes is the default FilterMessageTypes allow-list.
var PositionMessageTypes = []string{
	MessageTypePositionReport,
	MessageTypeStandardClassBPosition,
	MessageTypeExtendedClassBPosition,
}

// IsPositionMessageType reports whether t is one of the three position report subtypes.
func IsPositionMessageType(t string) bool {
	switch t {
	case MessageTypePositionReport, MessageTypeStandardClassBPosition, MessageTypeExtendedClassBPosition:
		return true
	default:
		return false
	}
}

// BoundingBox is a rectangle given as two [lat, lon] corners.
type BoundingBox [2][2]float64

// Subscription is the control message sent once after the upstream connection opens.
//
//	{"APIKey":"...","BoundingBoxes":[[[-47,166],[-34,179]]],"FilterMessageTypes":["PositionReport",...]}
type Subscription struct {
	APIKey             string        `json:"APIKey"`
	BoundingBoxes      []BoundingBox `json:"BoundingBoxes"`
	FilterMessageTypes []string      `json:"FilterMessageTypes"`
}

// LatLon is a WGS84 coordinate in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PositionReport is the decoded, immutable view of one position frame.
type PositionReport struct {
	VesselID         int64     `json:"vesselId"`
	Lat              float64   `json:"lat"`
	Lon              float64   `json:"lon"`
	SpeedOverGround  float64   `json:"speedOverGround"`
	CourseOverGround float64   `json:"courseOverGround"` // [0, 360)
	ShipName         string    `json:"shipName,omitempty"`
	MessageType      string    `json:"messageType"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// Position returns the report's coordinate.
func (p PositionReport) Position() LatLon {
	return LatLon{Lat: p.Lat, Lon: p.Lon}
}
