// Package sbs1 decodes the SBS-1 "BaseStation" text feed emitted by
// dump1090 and similar ADS-B decoders on TCP port 30003: one
// comma-separated message per line, streamed indefinitely.
package sbs1

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MessageType is the SBS-1 transmission type, the second CSV field.
type MessageType int

const (
	// TypeIdentification carries the callsign (field 10).
	TypeIdentification MessageType = 1
	// TypeSurfacePosition carries altitude, ground speed, track and
	// position in a single message.
	TypeSurfacePosition MessageType = 2
	// TypeAirbornePosition carries altitude and position.
	TypeAirbornePosition MessageType = 3
	// TypeAirborneVelocity carries ground speed, track and vertical
	// rate.
	TypeAirborneVelocity MessageType = 4
	// TypeSurveillanceAlt, TypeSurveillanceID and TypeAirToAir carry
	// altitude only.
	TypeSurveillanceAlt MessageType = 5
	TypeSurveillanceID  MessageType = 6
	TypeAirToAir        MessageType = 7
	// TypeAllCallReply carries no additional fields of interest here.
	TypeAllCallReply MessageType = 8
)

// Message is the decoded subset of an SBS-1 line relevant to aircraft
// tracking. Fields left at their zero value were absent on the wire;
// callers should only read fields documented as present for the
// message's Type.
type Message struct {
	Type MessageType
	ICAO string
	Time time.Time

	Callsign     string
	Altitude     float64
	GroundSpeed  float64
	Track        float64
	Latitude     float64
	Longitude    float64
	VerticalRate float64
	HasAltitude  bool
	HasPosition  bool
	HasVelocity  bool
	HasCallsign  bool
}

// ParseLine decodes a single SBS-1 "MSG" line. Non-MSG lines (STA,
// CLK, and other BaseStation transmission classes) return an error,
// since the aircraft tracker has no use for them.
func ParseLine(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ",")

	// 17 covers the highest field any message type here reads (vertical
	// rate, field 17 1-indexed / fields[16]); BaseStation feeds
	// routinely omit the trailing ground/squawk fields, so a short-but-
	// complete line like spec scenario 4's 21-field MSG,3 must parse.
	if len(fields) < 17 {
		return Message{}, fmt.Errorf("sbs1: expected at least 17 fields, got %d", len(fields))
	}
	if fields[0] != "MSG" {
		return Message{}, fmt.Errorf("sbs1: not a MSG line: %q", fields[0])
	}

	msgType, err := strconv.Atoi(fields[1])
	if err != nil {
		return Message{}, fmt.Errorf("sbs1: bad message type %q: %w", fields[1], err)
	}

	t, err := decodeDateTime(fields[6], fields[7])
	if err != nil {
		return Message{}, fmt.Errorf("sbs1: bad timestamp: %w", err)
	}

	m := Message{
		Type: MessageType(msgType),
		ICAO: fields[4],
		Time: t,
	}

	switch m.Type {
	case TypeIdentification:
		m.Callsign = strings.TrimSpace(fields[10])
		m.HasCallsign = m.Callsign != ""

	case TypeSurfacePosition, TypeAirbornePosition:
		if alt := toFloat(fields[11]); alt != nil {
			m.Altitude = *alt
			m.HasAltitude = true
		}
		lat := toFloat(fields[14])
		lon := toFloat(fields[15])
		if lat != nil && lon != nil {
			m.Latitude, m.Longitude = *lat, *lon
			m.HasPosition = true
		}
		if m.Type == TypeSurfacePosition {
			if gs := toFloat(fields[12]); gs != nil {
				m.GroundSpeed = *gs
			}
			if trk := toFloat(fields[13]); trk != nil {
				m.Track = *trk
			}
			m.HasVelocity = true
		}

	case TypeAirborneVelocity:
		if gs := toFloat(fields[12]); gs != nil {
			m.GroundSpeed = *gs
		}
		if trk := toFloat(fields[13]); trk != nil {
			m.Track = *trk
		}
		m.HasVelocity = true
		if vr := toFloat(fields[16]); vr != nil {
			m.VerticalRate = *vr
		}

	case TypeSurveillanceAlt, TypeSurveillanceID, TypeAirToAir:
		if alt := toFloat(fields[11]); alt != nil {
			m.Altitude = *alt
			m.HasAltitude = true
		}
	}

	return m, nil
}

// toFloat parses an SBS-1 numeric field, treating an empty string (a
// field BaseStation omitted) as absent rather than zero.
func toFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// decodeDateTime parses the BaseStation date/time pair
// ("2006/01/02", "15:04:05.000") as a local-zone timestamp.
func decodeDateTime(dateStr, timeStr string) (time.Time, error) {
	return time.ParseInLocation("2006/01/02T15:04:05.000", dateStr+"T"+timeStr, time.Local)
}
