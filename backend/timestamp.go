package backend

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp converts "H:MM:SS" into a duration. Anything after a comma
// in the seconds segment is dropped. Malformed input, negative segments and
// non-finite values yield zero.
func ParseTimestamp(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		slog.Debug("Unexpected timestamp format", slog.String("timestamp", s))
		return 0
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		slog.Debug("Failed to parse hours", slog.String("timestamp", s))
		return 0
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		slog.Debug("Failed to parse minutes", slog.String("timestamp", s))
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.Split(parts[2], ",")[0], 64)
	if err != nil {
		slog.Debug("Failed to parse seconds", slog.String("timestamp", s))
		return 0
	}

	for _, v := range []float64{hours, minutes, seconds} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			slog.Debug("Timestamp segment out of range", slog.String("timestamp", s))
			return 0
		}
	}

	total := hours*3600 + minutes*60 + seconds
	if total*float64(time.Second) >= math.MaxInt64 {
		slog.Debug("Timestamp too large", slog.String("timestamp", s))
		return 0
	}
	return time.Duration(total * float64(time.Second))
}
