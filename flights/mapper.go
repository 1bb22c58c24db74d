package flights

import (
	"strconv"
	"strings"
)

// Key identifies one aggregation group: a calendar year and a market.
type Key struct {
	Year   int    `json:"year"`
	Market string `json:"market"`
}

// FlightTimes holds the three duration measurements of one flight, in
// minutes. A nil field is a measurement missing from the source record,
// which is not the same thing as a zero-minute measurement.
type FlightTimes struct {
	Scheduled *float64 `json:"scheduled"`
	Actual    *float64 `json:"actual"`
	Air       *float64 `json:"air"`
}

const headerYear = "Year"

// MarketMapper keys each usable flight record by year and market. Header
// rows, cancelled flights and diverted flights yield no emission; every
// surviving record emits exactly one pair, even when all three time
// measurements are missing.
type MarketMapper struct{}

func (MarketMapper) Map(rec Record) (Key, FlightTimes, bool) {
	if rec.Year == headerYear {
		return Key{}, FlightTimes{}, false
	}
	if !zeroFlag(rec.Cancelled) || !zeroFlag(rec.Diverted) {
		return Key{}, FlightTimes{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(rec.Year))
	if err != nil {
		return Key{}, FlightTimes{}, false
	}
	return Key{Year: year, Market: Market(rec.Origin, rec.Dest)}, FlightTimes{
		Scheduled: minutes(rec.CRSElapsedTime),
		Actual:    minutes(rec.ActualElapsedTime),
		Air:       minutes(rec.AirTime),
	}, true
}

// Market names the unordered airport pair of a flight: both codes joined
// by "-" in lexicographic order, so JFK->LAX and LAX->JFK share a market.
func Market(origin, dest string) string {
	a := strings.TrimSpace(origin)
	b := strings.TrimSpace(dest)
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

func minutes(field string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return nil
	}
	return &v
}

// zeroFlag reports whether a 0/1 indicator column is exactly zero. A value
// that does not parse counts as set.
func zeroFlag(field string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return false
	}
	return v == 0
}
