package engine

import "errors"

// =============================================================================
// POINT CHART LOOKUP - External collaborator contract
// =============================================================================

// ErrChartUnavailable is returned when no point chart covers the requested
// resort, room, or date range. Distinct from a not-found resort: the resort
// may be valid but outside chart coverage.
var ErrChartUnavailable = errors.New("point chart data not available")

// NightCost is the cost of a single night of a stay.
type NightCost struct {
	Date      Date   `json:"date"`
	Season    string `json:"season"`
	IsWeekend bool   `json:"is_weekend"`
	Points    int    `json:"points"`
}

// StayCost is a resolved stay cost with its nightly breakdown. Multi-season
// stays are split per calendar night at each night's applicable season rate.
type StayCost struct {
	Resort      string      `json:"resort"`
	RoomKey     string      `json:"room"`
	TotalPoints int         `json:"total_points"`
	NumNights   int         `json:"num_nights"`
	Nights      []NightCost `json:"nightly_breakdown"`
}

// ChartSource resolves stay costs from point chart data. The chart package
// provides the production implementation backed by embedded chart files;
// engine tests substitute fakes.
type ChartSource interface {
	// StayCost computes the cost of a stay. Returns ErrChartUnavailable if
	// the resort, room, or any night of the stay has no chart coverage.
	StayCost(resort, roomKey string, checkIn, checkOut Date) (StayCost, error)

	// HasChart reports whether chart data exists for a resort and year.
	HasChart(resort string, year int) bool

	// RoomKeys lists the distinct room keys in a resort's chart for a year,
	// sorted. Empty if no chart exists.
	RoomKeys(resort string, year int) []string
}
