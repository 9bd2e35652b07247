package sbs1

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/unklstewy/ads-bscope/pkg/adsb"
	"github.com/unklstewy/ads-bscope/pkg/coordinates"
)

// Source implements adsb.DataSource over a live SBS-1 TCP feed (the
// port dump1090 and compatible decoders expose at 30003). It
// accumulates partial MSG lines into complete Aircraft records the
// same way the upstream decoder does: velocity fields fill in from
// type 4 messages, position from types 2/3, callsign from type 1,
// merged by ICAO address as lines arrive.
type Source struct {
	addr string

	mu       sync.Mutex
	aircraft map[string]*adsb.Aircraft
	clear    bool

	conn   net.Conn
	reader *bufio.Reader
}

// NewSource creates an SBS-1 source that will dial addr (host:port,
// typically ":30003") on first use.
func NewSource(addr string) *Source {
	return &Source{addr: addr, aircraft: make(map[string]*adsb.Aircraft)}
}

// MessageLoop reads and applies a single SBS-1 line from the feed,
// dialing the connection if it isn't already open. It blocks until a
// line is read or the connection fails.
func (s *Source) MessageLoop() error {
	if s.conn == nil {
		conn, err := net.DialTimeout("tcp", s.addr, 5*time.Second)
		if err != nil {
			return fmt.Errorf("sbs1: dial %s: %w", s.addr, err)
		}
		s.conn = conn
		s.reader = bufio.NewReader(conn)
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		s.conn.Close()
		s.conn = nil
		s.reader = nil
		return fmt.Errorf("sbs1: read: %w", err)
	}

	msg, err := ParseLine(line)
	if err != nil {
		// Non-MSG lines (STA, CLK, ...) are routine; they and any
		// unparseable lines are skipped without logging.
		return nil
	}

	s.apply(msg)
	return nil
}

func (s *Source) apply(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clear {
		s.aircraft = make(map[string]*adsb.Aircraft)
		s.clear = false
	}

	plane, ok := s.aircraft[msg.ICAO]
	if !ok {
		plane = &adsb.Aircraft{ICAO: msg.ICAO}
		s.aircraft[msg.ICAO] = plane
	}

	if msg.HasCallsign {
		plane.Callsign = msg.Callsign
	}
	if msg.HasVelocity {
		plane.GroundSpeed = msg.GroundSpeed
		plane.Track = msg.Track
	}
	if msg.Type == TypeAirborneVelocity {
		plane.VerticalRate = msg.VerticalRate
	}
	if msg.HasAltitude {
		plane.Altitude = msg.Altitude
	}
	if msg.HasPosition {
		plane.Latitude = msg.Latitude
		plane.Longitude = msg.Longitude
		plane.LastSeen = msg.Time
	}

	log.Printf("sbs1: %s updated (type %d)", msg.ICAO, msg.Type)
}

// GetAircraft returns aircraft with a known position within radiusNM
// of the given center.
func (s *Source) GetAircraft(centerLat, centerLon, radiusNM float64) ([]adsb.Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	center := coordinates.Geographic{Latitude: centerLat, Longitude: centerLon}

	var out []adsb.Aircraft
	for _, plane := range s.aircraft {
		if plane.LastSeen.IsZero() {
			continue
		}
		pos := coordinates.Geographic{Latitude: plane.Latitude, Longitude: plane.Longitude}
		if coordinates.DistanceNauticalMiles(center, pos) <= radiusNM {
			out = append(out, *plane)
		}
	}
	return out, nil
}

// GetAircraftByICAO returns a single tracked aircraft, or nil if
// unknown.
func (s *Source) GetAircraftByICAO(icao string) (*adsb.Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plane, ok := s.aircraft[icao]
	if !ok {
		return nil, nil
	}
	cp := *plane
	return &cp, nil
}

// ClearAircraft drops all tracked aircraft on the next applied
// message; used when the manager resets its own table.
func (s *Source) ClearAircraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear = true
}

// Close closes the underlying TCP connection, if open.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		s.reader = nil
		return err
	}
	return nil
}
