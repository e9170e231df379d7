package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Names lists the five daily prayers in the order they are scanned.
var Names = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	"Fajr":    "F",
	"Dhuhr":   "D",
	"Asr":     "A",
	"Maghrib": "M",
	"Isha":    "I",
}

// MissingTime is used for any prayer the remote API did not return.
const MissingTime = "00:00"

// UnknownCountdown is shown when the next prayer time cannot be parsed.
const UnknownCountdown = "--"

// Times holds one day's prayer times as HH:MM strings.
// Field names match the cache file and the remote API exactly.
type Times struct {
	Fajr    string `json:"Fajr" yaml:"Fajr"`
	Dhuhr   string `json:"Dhuhr" yaml:"Dhuhr"`
	Asr     string `json:"Asr" yaml:"Asr"`
	Maghrib string `json:"Maghrib" yaml:"Maghrib"`
	Isha    string `json:"Isha" yaml:"Isha"`
}

// TimesFromMap picks the five prayers out of an API timings mapping.
// Missing names default to MissingTime.
func TimesFromMap(m map[string]string) Times {
	get := func(name string) string {
		if v, ok := m[name]; ok {
			return v
		}
		return MissingTime
	}
	return Times{
		Fajr:    get("Fajr"),
		Dhuhr:   get("Dhuhr"),
		Asr:     get("Asr"),
		Maghrib: get("Maghrib"),
		Isha:    get("Isha"),
	}
}

// Get returns the raw time string for a prayer name.
func (t Times) Get(name string) (string, bool) {
	switch name {
	case "Fajr":
		return t.Fajr, true
	case "Dhuhr":
		return t.Dhuhr, true
	case "Asr":
		return t.Asr, true
	case "Maghrib":
		return t.Maghrib, true
	case "Isha":
		return t.Isha, true
	}
	return "", false
}

// CanonicalName matches name case-insensitively against Names.
func CanonicalName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, n := range Names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string
	Raw  string
	Time time.Time
}

// Upcoming describes the next prayer relative to some instant.
// Time is the normalized "HH:MM" clock time. When the time could not be
// parsed, Time is the raw value and At is zero.
type Upcoming struct {
	Name      string
	Time      string
	Countdown string
	At        time.Time
}

// Parse converts times into Prayer values on the given date.
// Entries that fail to parse are skipped.
func Parse(t Times, date time.Time) []Prayer {
	var prayers []Prayer
	for _, name := range Names {
		raw, _ := t.Get(name)
		at, err := parseTimeStr(raw, date, date.Location())
		if err != nil {
			continue
		}
		prayers = append(prayers, Prayer{Name: name, Raw: raw, Time: at})
	}
	return prayers
}

// Next finds the first prayer strictly after now. When every prayer today
// has passed it wraps to tomorrow's Fajr.
func Next(t Times, now time.Time) Upcoming {
	for _, p := range Parse(t, now) {
		if p.Time.After(now) {
			return Upcoming{
				Name:      p.Name,
				Time:      p.Time.Format("15:04"),
				Countdown: FormatRemaining(p.Time.Sub(now)),
				At:        p.Time,
			}
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	at, err := parseTimeStr(t.Fajr, tomorrow, now.Location())
	if err != nil {
		return Upcoming{Name: "Fajr", Time: t.Fajr, Countdown: UnknownCountdown}
	}
	return Upcoming{
		Name:      "Fajr",
		Time:      at.Format("15:04"),
		Countdown: FormatRemaining(at.Sub(now)),
		At:        at,
	}
}

// Current returns the name of the latest prayer that has already started
// today, or "" before Fajr.
func Current(t Times, now time.Time) string {
	current := ""
	for _, p := range Parse(t, now) {
		if p.Time.After(now) {
			break
		}
		current = p.Name
	}
	return current
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
// Seconds are dropped, not rounded.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	secs := int64(d / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into a time.Time
// on the given date in the given location. A trailing zone suffix and a
// one-digit hour are accepted; signs and other non-digits are not.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 ||
		!digits(parts[0]) || !digits(parts[1]) {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %q", raw)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
