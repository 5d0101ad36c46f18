// Package timesync derives a trusted wall-clock timestamp from the Date
// header of a well-known HTTP endpoint. The device has no battery-backed
// clock, so this is the only source of calendar time; it is opportunistic and
// every failure degrades to "no timestamp".
package timesync

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/httputil"
	"github.com/ridewatch/sentinel/internal/timeutil"
)

const (
	// DefaultEndpoint is any host that reliably answers with a Date header.
	DefaultEndpoint = "http://www.google.com"

	// ISTOffset shifts the parsed UTC time to local time (+05:30).
	ISTOffset = 19800 * time.Second

	// cooldown guards the shared external endpoint against rapid re-polls.
	cooldown = 2 * time.Second
)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// Source fetches trusted timestamps over HTTP. Callers must not invoke Fetch
// more than once per few seconds; a cooldown sleep after each request
// enforces the pacing.
type Source struct {
	client   httputil.HTTPClient
	clock    timeutil.Clock
	logger   *zap.Logger
	endpoint string
	offset   time.Duration
}

// NewSource creates a Source against the given endpoint. An empty endpoint
// uses DefaultEndpoint.
func NewSource(client httputil.HTTPClient, clock timeutil.Clock, logger *zap.Logger, endpoint string) *Source {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Source{
		client:   client,
		clock:    clock,
		logger:   logger,
		endpoint: endpoint,
		offset:   ISTOffset,
	}
}

// Fetch performs one request and returns the local-adjusted timestamp. Any
// network or parse failure returns ok=false; nothing propagates past this
// boundary.
func (s *Source) Fetch() (time.Time, bool) {
	resp, err := s.client.Get(s.endpoint)
	if err != nil {
		s.logger.Warn("time sync request failed", zap.Error(err))
		return time.Time{}, false
	}
	dateHeader := resp.Header.Get("Date")
	resp.Body.Close()

	s.clock.Sleep(cooldown)

	if dateHeader == "" {
		s.logger.Warn("time sync response missing Date header")
		return time.Time{}, false
	}

	ts, ok := parseDate(dateHeader)
	if !ok {
		s.logger.Warn("unparsable Date header", zap.String("date", dateHeader))
		return time.Time{}, false
	}
	return ts.Add(s.offset), true
}

// parseDate parses the fixed RFC-1123 layout positionally, e.g.
// "Thu, 15 May 2025 10:25:39 GMT". Anything with fewer than five
// whitespace-separated tokens, an unknown month name, or malformed numeric
// fields fails.
func parseDate(header string) (time.Time, bool) {
	parts := strings.Fields(header)
	if len(parts) < 5 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[parts[2]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[3])
	if err != nil {
		return time.Time{}, false
	}

	hms := strings.Split(parts[4], ":")
	if len(hms) != 3 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(hms[0])
	if err != nil {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(hms[1])
	if err != nil {
		return time.Time{}, false
	}
	second, err := strconv.Atoi(hms[2])
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(year, month, day, hour, minute, second, 0, time.UTC), true
}

// FormatTime renders a timestamp the way alert messages expect it.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
