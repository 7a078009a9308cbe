/*
Package chart implements the point chart lookup collaborator.

PURPOSE:
  Loads per-resort, per-year point charts from embedded JSON and resolves
  stay costs from them. A chart divides the year into named seasons, each a
  set of date ranges with weekday/weekend nightly rates per room key.

COST CALCULATION:
  A stay is priced per calendar night at the season rate applicable to that
  night's date. Friday and Saturday nights take the weekend rate. Stays
  spanning seasons split naturally because each night is resolved
  independently. If any night of a stay falls outside every season range,
  or the resort/room has no chart, the whole stay is unresolvable.

The Library type implements engine.ChartSource.
*/
package chart

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/warp/dvc-dashboard/engine"
)

//go:embed data/*.json
var chartFS embed.FS

// =============================================================================
// CHART DATA MODEL
// =============================================================================

// RoomRate is the nightly cost of one room key within a season.
type RoomRate struct {
	Weekday int `json:"weekday"`
	Weekend int `json:"weekend"`
}

// Season is a named rate period: one or more date ranges sharing rates.
type Season struct {
	Name       string              `json:"name"`
	DateRanges [][]string          `json:"date_ranges"` // [start, end] ISO pairs, inclusive
	Rooms      map[string]RoomRate `json:"rooms"`

	ranges []dateRange
}

type dateRange struct {
	start engine.Date
	end   engine.Date
}

// Chart is one resort's point chart for one calendar year.
type Chart struct {
	Resort  string   `json:"resort"`
	Year    int      `json:"year"`
	Seasons []Season `json:"seasons"`
}

// Summary identifies an available chart.
type Summary struct {
	Resort string `json:"resort"`
	Year   int    `json:"year"`
}

// =============================================================================
// LIBRARY - All embedded charts
// =============================================================================

type chartKey struct {
	resort string
	year   int
}

// Library holds every loaded chart and implements engine.ChartSource.
type Library struct {
	charts map[chartKey]*Chart
}

// Load parses all embedded chart files.
func Load() (*Library, error) {
	entries, err := chartFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading chart data: %w", err)
	}

	lib := &Library{charts: make(map[chartKey]*Chart)}
	for _, entry := range entries {
		raw, err := chartFS.ReadFile("data/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var c Chart
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		if err := c.parseRanges(); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		lib.charts[chartKey{resort: c.Resort, year: c.Year}] = &c
	}
	return lib, nil
}

func (c *Chart) parseRanges() error {
	for i := range c.Seasons {
		s := &c.Seasons[i]
		for _, pair := range s.DateRanges {
			if len(pair) != 2 {
				return fmt.Errorf("season %q: date range must be a [start, end] pair", s.Name)
			}
			start, err := engine.ParseDate(pair[0])
			if err != nil {
				return fmt.Errorf("season %q: %w", s.Name, err)
			}
			end, err := engine.ParseDate(pair[1])
			if err != nil {
				return fmt.Errorf("season %q: %w", s.Name, err)
			}
			if end.Before(start) {
				return fmt.Errorf("season %q: range end before start", s.Name)
			}
			s.ranges = append(s.ranges, dateRange{start: start, end: end})
		}
	}
	return nil
}

// Available lists all charts, sorted by resort then year.
func (l *Library) Available() []Summary {
	out := make([]Summary, 0, len(l.charts))
	for k := range l.charts {
		out = append(out, Summary{Resort: k.resort, Year: k.year})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resort != out[j].Resort {
			return out[i].Resort < out[j].Resort
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// Get returns the chart for a resort and year.
func (l *Library) Get(resort string, year int) (*Chart, bool) {
	c, ok := l.charts[chartKey{resort: resort, year: year}]
	return c, ok
}

// HasChart reports whether chart data exists for a resort and year.
func (l *Library) HasChart(resort string, year int) bool {
	_, ok := l.Get(resort, year)
	return ok
}

// RoomKeys lists the distinct room keys across all seasons of a chart,
// sorted. Empty if no chart exists.
func (l *Library) RoomKeys(resort string, year int) []string {
	c, ok := l.Get(resort, year)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	for _, s := range c.Seasons {
		for key := range s.Rooms {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// STAY COST
// =============================================================================

// isWeekendNight reports whether a night takes the weekend rate.
// DVC charges weekend rates for Friday and Saturday nights.
func isWeekendNight(d engine.Date) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// seasonFor finds the season containing a date.
func (c *Chart) seasonFor(d engine.Date) (*Season, bool) {
	for i := range c.Seasons {
		for _, r := range c.Seasons[i].ranges {
			if d.AfterOrEqual(r.start) && d.BeforeOrEqual(r.end) {
				return &c.Seasons[i], true
			}
		}
	}
	return nil, false
}

// StayCost prices a stay night by night. Returns engine.ErrChartUnavailable
// when the resort has no chart for the check-in year, the room key is
// unknown, or any night is outside season coverage.
func (l *Library) StayCost(resort, roomKey string, checkIn, checkOut engine.Date) (engine.StayCost, error) {
	c, ok := l.Get(resort, checkIn.Year())
	if !ok {
		return engine.StayCost{}, engine.ErrChartUnavailable
	}

	var nights []engine.NightCost
	total := 0
	for night := checkIn; night.Before(checkOut); night = night.AddDays(1) {
		// A night past the chart year may be covered by the next year's chart.
		nightChart := c
		if night.Year() != c.Year {
			nightChart, ok = l.Get(resort, night.Year())
			if !ok {
				return engine.StayCost{}, engine.ErrChartUnavailable
			}
		}

		season, ok := nightChart.seasonFor(night)
		if !ok {
			return engine.StayCost{}, engine.ErrChartUnavailable
		}
		rate, ok := season.Rooms[roomKey]
		if !ok {
			return engine.StayCost{}, engine.ErrChartUnavailable
		}

		points := rate.Weekday
		weekend := isWeekendNight(night)
		if weekend {
			points = rate.Weekend
		}
		nights = append(nights, engine.NightCost{
			Date:      night,
			Season:    season.Name,
			IsWeekend: weekend,
			Points:    points,
		})
		total += points
	}

	return engine.StayCost{
		Resort:      resort,
		RoomKey:     roomKey,
		TotalPoints: total,
		NumNights:   len(nights),
		Nights:      nights,
	}, nil
}
