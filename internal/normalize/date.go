package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. European day-first layouts come after
// ISO so unambiguous input is never misread.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// Date parses a raw timestamp into a canonical UTC time. ok is false
// when no layout matches: the value has "unknown recency" and always
// loses timestamp-based conflict resolution.
func Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
