package adsb

import (
	"context"
	"log"
	"sync"
	"time"
)

// ManagerConfig controls the Manager's two background loops.
type ManagerConfig struct {
	// CenterLat/CenterLon/RadiusNM define the search area passed to the
	// data source on every poll.
	CenterLat, CenterLon, RadiusNM float64

	// PollInterval is how often the data source is polled for new
	// reports (default: 1s, matching airplanes.live's rate limit).
	PollInterval time.Duration

	// MotionModelRate is how often tracked aircraft are dead-reckoned
	// forward between reports (default: 10ms).
	MotionModelRate time.Duration
}

// DefaultManagerConfig returns sensible polling defaults.
func DefaultManagerConfig(centerLat, centerLon, radiusNM float64) ManagerConfig {
	return ManagerConfig{
		CenterLat:       centerLat,
		CenterLon:       centerLon,
		RadiusNM:        radiusNM,
		PollInterval:    time.Second,
		MotionModelRate: 10 * time.Millisecond,
	}
}

// Manager polls a DataSource for aircraft reports and maintains a
// table of TrackedAircraft, dead-reckoning positions forward between
// reports. It runs two independent goroutines sharing a single mutex:
// one polls the source, one ticks the motion model. Both hold the
// lock only for the duration of a table scan; the poll itself happens
// outside the lock.
type Manager struct {
	source DataSource
	cfg    ManagerConfig

	mu       sync.Mutex
	aircraft map[string]*TrackedAircraft
}

// NewManager creates a Manager over the given data source.
func NewManager(source DataSource, cfg ManagerConfig) *Manager {
	return &Manager{
		source:   source,
		cfg:      cfg,
		aircraft: make(map[string]*TrackedAircraft),
	}
}

// Run starts the poll and motion-model loops and blocks until ctx is
// canceled.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		m.sourcePollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		m.motionModelLoop(ctx)
	}()

	wg.Wait()
}

func (m *Manager) sourcePollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reports, err := m.source.GetAircraft(m.cfg.CenterLat, m.cfg.CenterLon, m.cfg.RadiusNM)
			if err != nil {
				log.Printf("adsb: poll failed: %v", err)
				continue
			}

			now := time.Now()
			m.mu.Lock()
			for _, report := range reports {
				existing, ok := m.aircraft[report.ICAO]
				if !ok {
					if report.LastSeen.IsZero() {
						continue
					}
					tracked := fromReport(report)
					m.aircraft[report.ICAO] = &tracked
					log.Printf("adsb: new aircraft %s", report.ICAO)
					continue
				}
				existing.Merge(report, now)
			}
			m.mu.Unlock()
		}
	}
}

func (m *Manager) motionModelLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.MotionModelRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for _, plane := range m.aircraft {
				if plane.CanCalcUpdate() {
					plane.Update(now)
				}
			}
			m.mu.Unlock()
		}
	}
}

// GetPlane returns a deep copy of a single tracked aircraft, or nil if
// unknown.
func (m *Manager) GetPlane(icao string) *TrackedAircraft {
	m.mu.Lock()
	defer m.mu.Unlock()

	plane, ok := m.aircraft[icao]
	if !ok {
		return nil
	}
	cp := *plane
	return &cp
}

// GetPlanes returns a deep copy of the entire tracked aircraft table.
func (m *Manager) GetPlanes() map[string]*TrackedAircraft {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*TrackedAircraft, len(m.aircraft))
	for icao, plane := range m.aircraft {
		cp := *plane
		out[icao] = &cp
	}
	return out
}

// GetPlaneList returns the ICAO addresses currently tracked.
func (m *Manager) GetPlaneList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]string, 0, len(m.aircraft))
	for icao := range m.aircraft {
		list = append(list, icao)
	}
	return list
}

// ClearPlaneList drops all tracked aircraft.
func (m *Manager) ClearPlaneList() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aircraft = make(map[string]*TrackedAircraft)
}
