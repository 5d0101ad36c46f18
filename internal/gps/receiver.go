package gps

import (
	"bufio"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const lineBuffer = 64

// Receiver reads NMEA sentences from a serial port in a background routine
// and hands them out on demand. The receiver streams continuously; AcquireFix
// opens a bounded window onto that stream.
type Receiver struct {
	port   SerialPorter
	lines  chan string
	logger *zap.Logger
}

// NewReceiver creates a Receiver for the given port. Call Start before
// AcquireFix.
func NewReceiver(port SerialPorter, logger *zap.Logger) *Receiver {
	return &Receiver{
		port:   port,
		lines:  make(chan string, lineBuffer),
		logger: logger,
	}
}

// Start launches the serial reader routine. It returns when the context is
// cancelled or the port stops producing data. Lines are dropped rather than
// blocking the reader when no acquisition window is draining them.
func (r *Receiver) Start(ctx context.Context) error {
	scan := bufio.NewScanner(r.port)
	for scan.Scan() {
		select {
		case r.lines <- scan.Text():
		default:
			// buffer full, no active acquisition window; drop the line
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if err := scan.Err(); err != nil {
		return err
	}
	return nil
}

// AcquireFix polls the sentence stream for a GGA sentence with populated
// coordinate fields, for at most the given timeout. Stale sentences buffered
// before the call are drained first so the fix reflects the current position.
// Malformed sentences are skipped, never fatal. Returns false when the window
// elapses without a qualifying sentence.
func (r *Receiver) AcquireFix(ctx context.Context, timeout time.Duration) (Fix, bool) {
	r.drain()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case line := <-r.lines:
			if !strings.Contains(line, "GPGGA") {
				continue
			}
			fix, err := parseGGA(line)
			if err != nil {
				r.logger.Debug("skipping unparsable GGA sentence",
					zap.String("line", line),
					zap.Error(err),
				)
				continue
			}
			return fix, true

		case <-deadline.C:
			r.logger.Warn("no GPS fix within window", zap.Duration("timeout", timeout))
			return Fix{}, false

		case <-ctx.Done():
			return Fix{}, false
		}
	}
}

func (r *Receiver) drain() {
	for {
		select {
		case <-r.lines:
		default:
			return
		}
	}
}

// Close closes the underlying serial port.
func (r *Receiver) Close() error {
	return r.port.Close()
}
