package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration extends time.ParseDuration with a leading day component,
// e.g. "1d", "7d" or "1d12h".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	daysStr, rest, ok := strings.Cut(s, "d")
	if !ok {
		return time.ParseDuration(s)
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return 0, fmt.Errorf("invalid day value: %s", daysStr)
	}
	total := time.Duration(days) * 24 * time.Hour
	if rest == "" {
		return total, nil
	}
	extra, err := time.ParseDuration(rest)
	if err != nil {
		return 0, err
	}
	if days < 0 {
		return total - extra, nil
	}
	return total + extra, nil
}
