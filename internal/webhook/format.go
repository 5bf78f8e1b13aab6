package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCost is the estimated cost for haircut types missing from the table.
const DefaultCost = 6.0

// haircutCosts holds the estimated supply cost per haircut type.
var haircutCosts = map[string]float64{
	"Burst Fade": 8,
	"Buzz Cut":   5,
	"Mullet":     10,
	"Undercut":   7,
	"Line Up":    6,
	"Fade":       8,
	"Taper":      7,
	"Crew Cut":   5,
	"Trim":       4,
}

// EstimateCost looks up the cost of a haircut type.
func EstimateCost(haircutType string) float64 {
	if cost, ok := haircutCosts[haircutType]; ok {
		return cost
	}
	return DefaultCost
}

// FormatPhoneNumber formats a digit string as (XXX) XXX-XXXX. A leading
// country code 1 on an 11 digit number is dropped. Any other length is
// returned unchanged.
func FormatPhoneNumber(digits string) string {
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return digits
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

// phoneDigits renders a raw phone value (number or string) as its digits.
func phoneDigits(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if !present(v) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return onlyDigits(s)
	}
	n, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return onlyDigits(string(v))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ErrInvalidDateTime is returned when no known layout matches.
var ErrInvalidDateTime = errors.New("invalid date/time")

var dateTimeLayouts = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04PM",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
}

// ParseDateTime parses separate date ("6/26/2025") and time ("12:30 PM")
// strings in loc. An empty time parses the date at midnight.
func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.ToUpper(strings.Join(strings.Fields(timeStr), " "))

	if timeStr == "" {
		return ParseDate(dateStr, loc)
	}

	value := dateStr + " " + timeStr
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

// ParseDate parses a date-only string, also accepting RFC 3339 timestamps.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, dateStr, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, ErrInvalidDateTime
}

// numberFrom accepts a JSON number or a numeric string. NaN and
// infinities are rejected.
func numberFrom(raw json.RawMessage) (float64, bool) {
	v := bytes.TrimSpace(raw)
	if !present(v) {
		return 0, false
	}
	text := string(v)
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// stringFrom accepts a JSON string or number and returns its text.
func stringFrom(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if !present(v) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	}
	if _, err := strconv.ParseFloat(string(v), 64); err == nil {
		return string(v)
	}
	return ""
}

// completedFrom maps the upstream status flag. Only true means completed.
func completedFrom(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if bytes.Equal(v, []byte("true")) {
		return true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		return s == "true" || s == "completed"
	}
	return false
}
