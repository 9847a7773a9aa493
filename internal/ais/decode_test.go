// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package ais

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

const classAFrame = `{
  "Message": {
    "PositionReport": {
      "Cog": 308.2, "CommunicationState": 59916, "Latitude": -35.2871, "Longitude": 174.1226,
      "MessageID": 1, "NavigationalStatus": 0, "PositionAccuracy": true, "Raim": false,
      "RateOfTurn": 0, "RepeatIndicator": 0, "Sog": 6.3, "Spare": 0,
      "SpecialManoeuvreIndicator": 0, "Timestamp": 31, "TrueHeading": 305,
      "UserID": 512120000, "Valid": true
    }
  },
  "MessageType": "PositionReport",
  "MetaData": {
    "MMSI": 512120000, "MMSI_String": 512120000, "ShipName": "RTT                 ",
    "latitude": -35.2871, "longitude": 174.1226, "time_utc": "2026-03-01 04:05:06.123 +0000 UTC"
  },
  "SomeFutureField": {"nested": true}
}`

func TestDecodePositionReport_ClassA(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 4, 5, 6, 0, time.UTC)
	report, err := DecodePositionReport([]byte(classAFrame), now)
	if err != nil {
		t.Fatalf("DecodePositionReport() error = %v", err)
	}

	if report.VesselID != 512120000 {
		t.Errorf("VesselID = %d, want 512120000", report.VesselID)
	}
	if report.Lat != -35.2871 || report.Lon != 174.1226 {
		t.Errorf("position = (%v, %v)", report.Lat, report.Lon)
	}
	if report.SpeedOverGround != 6.3 {
		t.Errorf("SpeedOverGround = %v, want 6.3", report.SpeedOverGround)
	}
	if report.CourseOverGround != 308.2 {
		t.Errorf("CourseOverGround = %v, want 308.2", report.CourseOverGround)
	}
	if report.ShipName != "RTT" {
		t.Errorf("ShipName = %q, want trimmed RTT", report.ShipName)
	}
	if !report.ReceivedAt.Equal(now) {
		t.Errorf("ReceivedAt = %v, want %v", report.ReceivedAt, now)
	}
}

func TestDecodePositionReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		frame   string
		wantErr error
		check   func(t *testing.T, r PositionReport)
	}{
		{
			name:  "class B defaults missing sog and cog to zero",
			frame: `{"MessageType":"StandardClassBPositionReport","MetaData":{"MMSI":235000001},"Message":{"StandardClassBPositionReport":{"UserID":235000001,"Latitude":-36.8,"Longitude":174.7}}}`,
			check: func(t *testing.T, r PositionReport) {
				if r.SpeedOverGround != 0 || r.CourseOverGround != 0 {
					t.Errorf("sog/cog = %v/%v, want 0/0", r.SpeedOverGround, r.CourseOverGround)
				}
			},
		},
		{
			name:  "extended class B with course 360 normalizes to 0",
			frame: `{"MessageType":"ExtendedClassBPositionReport","Message":{"ExtendedClassBPositionReport":{"UserID":1,"Latitude":1,"Longitude":2,"Cog":360,"Sog":0.1}}}`,
			check: func(t *testing.T, r PositionReport) {
				if r.CourseOverGround != 0 {
					t.Errorf("CourseOverGround = %v, want 0", r.CourseOverGround)
				}
			},
		},
		{
			name:  "vessel id falls back to metadata MMSI",
			frame: `{"MessageType":"PositionReport","MetaData":{"MMSI":77},"Message":{"PositionReport":{"Latitude":1,"Longitude":2}}}`,
			check: func(t *testing.T, r PositionReport) {
				if r.VesselID != 77 {
					t.Errorf("VesselID = %d, want 77", r.VesselID)
				}
			},
		},
		{
			name:  "negative speed clamps to zero",
			frame: `{"MessageType":"PositionReport","Message":{"PositionReport":{"UserID":5,"Latitude":1,"Longitude":2,"Sog":-3}}}`,
			check: func(t *testing.T, r PositionReport) {
				if r.SpeedOverGround != 0 {
					t.Errorf("SpeedOverGround = %v, want 0", r.SpeedOverGround)
				}
			},
		},
		{
			name:    "unknown message type is skipped",
			frame:   `{"MessageType":"ShipStaticData","Message":{"ShipStaticData":{"UserID":5}}}`,
			wantErr: ErrNotPositionReport,
		},
		{
			name:    "missing message type is skipped",
			frame:   `{"hello":"world"}`,
			wantErr: ErrNotPositionReport,
		},
		{
			name:    "invalid json",
			frame:   `{"MessageType":`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "body missing",
			frame:   `{"MessageType":"PositionReport","Message":{}}`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "no vessel identity",
			frame:   `{"MessageType":"PositionReport","Message":{"PositionReport":{"Latitude":1,"Longitude":2}}}`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "position not available sentinel",
			frame:   `{"MessageType":"PositionReport","Message":{"PositionReport":{"UserID":9,"Latitude":91,"Longitude":181}}}`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "no position at all",
			frame:   `{"MessageType":"PositionReport","Message":{"PositionReport":{"UserID":9}}}`,
			wantErr: ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := DecodePositionReport([]byte(tt.frame), time.Now())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestNormalizeCourse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.9, 359.9},
		{360, 0},
		{725, 5},
		{-90, 270},
		{-360, 0},
	}
	for _, tt := range tests {
		if got := NormalizeCourse(tt.in); got != tt.want {
			t.Errorf("NormalizeCourse(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSubscription_WireFormat(t *testing.T) {
	t.Parallel()

	sub := Subscription{
		APIKey:             "key",
		BoundingBoxes:      []BoundingBox{{{-47.0, 166.0}, {-34.0, 179.0}}},
		FilterMessageTypes: PositionMessageTypes,
	}
	got, err := json.Marshal(sub)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"APIKey":"key","BoundingBoxes":[[[-47,166],[-34,179]]],"FilterMessageTypes":["PositionReport","StandardClassBPositionReport","ExtendedClassBPositionReport"]}`
	if string(got) != want {
		t.Errorf("subscription JSON =\n%s\nwant\n%s", got, want)
	}
}
