package engine_test

import (
	"sort"
	"strings"
	"time"

	"github.com/warp/dvc-dashboard/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}

// stubCharts prices every night at a flat rate per resort/room pair.
// Unknown pairs are unresolvable.
type stubCharts struct {
	nightly map[string]int // "resort/room_key" -> flat nightly rate
}

func (s stubCharts) StayCost(resort, roomKey string, checkIn, checkOut engine.Date) (engine.StayCost, error) {
	rate, ok := s.nightly[resort+"/"+roomKey]
	if !ok {
		return engine.StayCost{}, engine.ErrChartUnavailable
	}

	var nights []engine.NightCost
	for night := checkIn; night.Before(checkOut); night = night.AddDays(1) {
		nights = append(nights, engine.NightCost{Date: night, Season: "Test", Points: rate})
	}
	return engine.StayCost{
		Resort:      resort,
		RoomKey:     roomKey,
		TotalPoints: rate * len(nights),
		NumNights:   len(nights),
		Nights:      nights,
	}, nil
}

func (s stubCharts) HasChart(resort string, year int) bool {
	for key := range s.nightly {
		if strings.HasPrefix(key, resort+"/") {
			return true
		}
	}
	return false
}

func (s stubCharts) RoomKeys(resort string, year int) []string {
	var keys []string
	for key := range s.nightly {
		if strings.HasPrefix(key, resort+"/") {
			keys = append(keys, strings.TrimPrefix(key, resort+"/"))
		}
	}
	sort.Strings(keys)
	return keys
}
