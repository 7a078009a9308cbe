/*
explorer.go - Trip explorer (affordability search)

PURPOSE:
  Answers "what can I afford?" for a fixed date range by exhaustively
  searching contracts x eligible resorts x room types for options whose
  total cost fits within current availability.

DELIBERATE CHOICE:
  Availability is evaluated as of the CHECK-IN date, not the query date.
  Affordability is a property of the stay's use year.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ResortDirectory extends the eligibility catalog with display names.
type ResortDirectory interface {
	ResortCatalog

	// ResortName returns the display name for a slug, or the slug itself
	// when unknown.
	ResortName(slug string) string
}

// TripOption is one affordable resort/room combination for one contract.
type TripOption struct {
	ContractID      string `json:"contract_id"`
	ContractName    string `json:"contract_name"`
	AvailablePoints int    `json:"available_points"`
	Resort          string `json:"resort"`
	ResortName      string `json:"resort_name"`
	RoomKey         string `json:"room_key"`
	TotalPoints     int    `json:"total_points"`
	NumNights       int    `json:"num_nights"`
	PointsRemaining int    `json:"points_remaining"`
	NightlyAvg      int    `json:"nightly_avg"`
}

// TripOptions is the full affordability search result.
type TripOptions struct {
	CheckIn        Date         `json:"check_in"`
	CheckOut       Date         `json:"check_out"`
	NumNights      int          `json:"num_nights"`
	Options        []TripOption `json:"options"`
	ResortsChecked []string     `json:"resorts_checked"`
	ResortsSkipped []string     `json:"resorts_skipped"`
	TotalOptions   int          `json:"total_options"`
}

// FindAffordableOptions searches every contract with points available on the
// check-in date, every eligible resort with chart data for the check-in
// year, and every room key in that chart. Options are sorted cheapest
// first; there is no result cap. Resorts without chart coverage are
// reported in ResortsSkipped for diagnostics.
func FindAffordableOptions(
	charts ChartSource,
	resorts ResortDirectory,
	contracts []Contract,
	balances []PointBalance,
	reservations []Reservation,
	checkIn, checkOut Date,
) TripOptions {
	options := []TripOption{}
	checked := map[string]bool{}
	skipped := map[string]bool{}

	for _, c := range contracts {
		availability := ContractAvailabilityAt(c, balances, reservations, checkIn)
		if availability.AvailablePoints <= 0 {
			continue
		}

		for _, slug := range EligibleResorts(resorts, c.HomeResort, c.PurchaseType) {
			if !charts.HasChart(slug, checkIn.Year()) {
				skipped[slug] = true
				continue
			}
			checked[slug] = true

			for _, roomKey := range charts.RoomKeys(slug, checkIn.Year()) {
				cost, err := charts.StayCost(slug, roomKey, checkIn, checkOut)
				if err != nil || cost.TotalPoints > availability.AvailablePoints {
					continue
				}
				options = append(options, TripOption{
					ContractID:      c.ID,
					ContractName:    c.DisplayName(),
					AvailablePoints: availability.AvailablePoints,
					Resort:          slug,
					ResortName:      resorts.ResortName(slug),
					RoomKey:         roomKey,
					TotalPoints:     cost.TotalPoints,
					NumNights:       cost.NumNights,
					PointsRemaining: availability.AvailablePoints - cost.TotalPoints,
					NightlyAvg:      nightlyAverage(cost.TotalPoints, cost.NumNights),
				})
			}
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalPoints < options[j].TotalPoints
	})

	return TripOptions{
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		NumNights:      DaysBetween(checkIn, checkOut),
		Options:        options,
		ResortsChecked: sortedKeys(checked),
		ResortsSkipped: sortedKeys(skipped),
		TotalOptions:   len(options),
	}
}

// nightlyAverage rounds total/nights half-up to the nearest point.
func nightlyAverage(totalPoints, numNights int) int {
	if numNights == 0 {
		return 0
	}
	avg := decimal.NewFromInt(int64(totalPoints)).
		Div(decimal.NewFromInt(int64(numNights))).
		Round(0)
	return int(avg.IntPart())
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
