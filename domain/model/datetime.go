package model

import (
	"regexp"
	"strings"
	"time"
)

// datetimePattern pairs a cheap shape check with the layouts to try for it.
type datetimePattern struct {
	pattern *regexp.Regexp
	layouts []string
}

// datetimePatterns lists the accepted date/time shapes. Month-first layouts
// come before day-first ones so that 03/04/2024 reads as March 4th, while
// 25/12/2024 still parses through the day-first fallback.
var datetimePatterns = []datetimePattern{
	// ISO8601 with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})$`),
		[]string{time.RFC3339Nano, "2006-01-02T15:04Z07:00", "2006-01-02T15:04:05Z0700"},
	},
	// ISO8601 without timezone, T or space separated
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		[]string{"2006-01-02", "2006-1-2"},
	},
	{
		regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}( \d{1,2}:\d{2}(:\d{2})?)?$`),
		[]string{"2006/1/2", "2006/1/2 15:04:05", "2006/1/2 15:04"},
	},
	// US and European slash or dash formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}(:\d{2})?( ?(AM|PM|am|pm))?$`),
		[]string{
			"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "1/2/2006 15:04", "1/2/2006 3:04 PM",
			"2/1/2006 15:04:05", "2/1/2006 15:04",
		},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "2/1/2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
		[]string{"1-2-2006", "2-1-2006"},
	},
	// Dotted European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}( \d{1,2}:\d{2}(:\d{2})?)?$`),
		[]string{"2.1.2006", "2.1.2006 15:04:05", "2.1.2006 15:04"},
	},
	// Month names
	{
		regexp.MustCompile(`^[A-Za-z]{3,9}\.? \d{1,2},? \d{4}$`),
		[]string{"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006", "Jan. 2, 2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2} [A-Za-z]{3,9},? \d{4}$`),
		[]string{"2 Jan 2006", "2 January 2006", "2 Jan, 2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-\d{2}(\d{2})?$`),
		[]string{"2-Jan-2006", "2-Jan-06"},
	},
	// RFC 1123 style
	{
		regexp.MustCompile(`^[A-Za-z]{3}, \d{2} [A-Za-z]{3} \d{4} \d{2}:\d{2}:\d{2} `),
		[]string{time.RFC1123Z, time.RFC1123},
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}$`),
		[]string{"15:04"},
	},
}

// ParseTemporal parses a cell as a date and/or time.
func ParseTemporal(cell string) (time.Time, bool) {
	value := strings.TrimSpace(cell)
	if value == "" || !strings.ContainsAny(value, "0123456789") {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, layout := range dp.layouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FormatTemporal renders a temporal value so that ParseTemporal reads it back.
func FormatTemporal(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
