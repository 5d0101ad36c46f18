// Package wifi manages network association. Association mechanics live behind
// the Station capability interface; the manager owns the retry policy and
// state machine.
package wifi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/timeutil"
)

// State is the association state machine position.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Station is the platform capability for WiFi association.
type Station interface {
	// Connect initiates association with the given network. It may return
	// before association completes; poll IsConnected for the result.
	Connect(ssid, password string) error
	// IsConnected reports the current association status.
	IsConnected() bool
}

// Manager drives the Disconnected → Connecting → Connected state machine with
// bounded retries. Failure is non-fatal; callers retry on their next cycle.
type Manager struct {
	station  Station
	clock    timeutil.Clock
	logger   *zap.Logger
	ssid     string
	password string

	maxAttempts int
	interval    time.Duration

	state State
}

// Options tunes the retry policy. Zero values take the defaults (20 attempts
// at 500ms).
type Options struct {
	MaxAttempts int
	Interval    time.Duration
}

// NewManager creates a Manager for the given station and credentials.
func NewManager(station Station, ssid, password string, opts Options, clock timeutil.Clock, logger *zap.Logger) *Manager {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 20
	}
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	return &Manager{
		station:     station,
		clock:       clock,
		logger:      logger,
		ssid:        ssid,
		password:    password,
		maxAttempts: opts.MaxAttempts,
		interval:    opts.Interval,
		state:       Disconnected,
	}
}

// State returns the current state machine position.
func (m *Manager) State() State {
	return m.state
}

// EnsureConnected returns true once the station is associated. Idempotent: an
// already-associated station returns true with no new attempts. Otherwise it
// initiates association and polls for up to maxAttempts × interval, blocking
// the caller. A false return means "retry next cycle", never terminate.
func (m *Manager) EnsureConnected(ctx context.Context) bool {
	if m.station.IsConnected() {
		m.state = Connected
		return true
	}

	m.state = Connecting
	m.logger.Info("connecting to WiFi", zap.String("ssid", m.ssid))

	if err := m.station.Connect(m.ssid, m.password); err != nil {
		m.logger.Warn("WiFi association request failed", zap.Error(err))
		m.state = Disconnected
		return false
	}

	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			m.state = Disconnected
			return false
		}
		if m.station.IsConnected() {
			m.state = Connected
			m.logger.Info("WiFi connected", zap.String("ssid", m.ssid))
			return true
		}
		m.clock.Sleep(m.interval)
	}

	m.state = Disconnected
	m.logger.Warn("WiFi connection failed",
		zap.String("ssid", m.ssid),
		zap.Int("attempts", m.maxAttempts),
	)
	return false
}

// MockStation implements Station for testing. ConnectedAfter controls how
// many IsConnected polls return false before association "completes".
type MockStation struct {
	ConnectErr     error
	ConnectedAfter int
	ConnectCalls   int
	polls          int
}

// Connect records the attempt.
func (m *MockStation) Connect(ssid, password string) error {
	m.ConnectCalls++
	return m.ConnectErr
}

// IsConnected becomes true after ConnectedAfter polls. A negative value means
// never.
func (m *MockStation) IsConnected() bool {
	if m.ConnectedAfter < 0 {
		return false
	}
	m.polls++
	return m.polls > m.ConnectedAfter
}
