/*
scenario.go - What-if scenario evaluation

PURPOSE:
  Computes baseline-vs-scenario availability across multiple contracts under
  a batch of hypothetical bookings. One unresolvable booking must not block
  the rest: failures are isolated into an error list and the remaining
  hypotheticals still count.
*/
package engine

import "errors"

// HypotheticalBooking is a proposed stay that exists only for evaluation.
type HypotheticalBooking struct {
	ContractID string `json:"contract_id"`
	Resort     string `json:"resort"`
	RoomKey    string `json:"room_key"`
	CheckIn    Date   `json:"check_in"`
	CheckOut   Date   `json:"check_out"`
}

// ResolvedBooking is a hypothetical booking with its chart-resolved cost.
type ResolvedBooking struct {
	HypotheticalBooking
	PointsCost int `json:"points_cost"`
	NumNights  int `json:"num_nights"`
}

// BookingError records why one hypothetical booking could not be resolved.
type BookingError struct {
	Resort  string `json:"resort"`
	RoomKey string `json:"room_key"`
	Reason  string `json:"error"`
}

// ContractScenario is one contract's baseline and scenario snapshots.
type ContractScenario struct {
	ContractID   string               `json:"contract_id"`
	ContractName string               `json:"contract_name"`
	HomeResort   string               `json:"home_resort"`
	Baseline     ContractAvailability `json:"baseline"`
	Scenario     ContractAvailability `json:"scenario"`
	Bookings     []ResolvedBooking    `json:"hypothetical_bookings"`
}

// ScenarioSummary is the cross-contract totals of a scenario evaluation.
type ScenarioSummary struct {
	BaselineAvailable       int `json:"baseline_available"`
	ScenarioAvailable       int `json:"scenario_available"`
	TotalImpact             int `json:"total_impact"`
	NumHypotheticalBookings int `json:"num_hypothetical_bookings"`
}

// ScenarioImpact is the full result of a scenario evaluation.
type ScenarioImpact struct {
	TargetDate       Date               `json:"target_date"`
	Contracts        []ContractScenario `json:"contracts"`
	Summary          ScenarioSummary    `json:"summary"`
	ResolvedBookings []ResolvedBooking  `json:"resolved_bookings"`
	Errors           []BookingError     `json:"errors"`
}

// ComputeScenarioImpact evaluates a batch of hypothetical bookings against
// every contract's availability on the target date. Resolved hypotheticals
// are injected as synthetic confirmed reservations at their check-in dates;
// unresolvable ones land in Errors and are excluded. An empty contract list
// short-circuits to an all-zero result.
func ComputeScenarioImpact(
	charts ChartSource,
	contracts []Contract,
	balances []PointBalance,
	reservations []Reservation,
	hypotheticals []HypotheticalBooking,
	target Date,
) ScenarioImpact {
	resolved := make([]ResolvedBooking, 0, len(hypotheticals))
	bookingErrors := []BookingError{}

	for _, hb := range hypotheticals {
		cost, err := charts.StayCost(hb.Resort, hb.RoomKey, hb.CheckIn, hb.CheckOut)
		if err != nil {
			reason := "Point chart data not available"
			if !errors.Is(err, ErrChartUnavailable) {
				reason = err.Error()
			}
			bookingErrors = append(bookingErrors, BookingError{
				Resort:  hb.Resort,
				RoomKey: hb.RoomKey,
				Reason:  reason,
			})
			continue
		}
		resolved = append(resolved, ResolvedBooking{
			HypotheticalBooking: hb,
			PointsCost:          cost.TotalPoints,
			NumNights:           cost.NumNights,
		})
	}

	results := make([]ContractScenario, 0, len(contracts))
	summary := ScenarioSummary{NumHypotheticalBookings: len(resolved)}

	for _, c := range contracts {
		baseline := ContractAvailabilityAt(c, balances, reservations, target)

		var contractBookings []ResolvedBooking
		scenarioReservations := append([]Reservation{}, reservations...)
		for _, rb := range resolved {
			if rb.ContractID != c.ID {
				continue
			}
			contractBookings = append(contractBookings, rb)
			scenarioReservations = append(scenarioReservations, Reservation{
				ContractID: c.ID,
				Resort:     rb.Resort,
				RoomKey:    rb.RoomKey,
				CheckIn:    rb.CheckIn,
				CheckOut:   rb.CheckOut,
				PointsCost: rb.PointsCost,
				Status:     StatusConfirmed,
			})
		}

		scenario := ContractAvailabilityAt(c, balances, scenarioReservations, target)

		results = append(results, ContractScenario{
			ContractID:   c.ID,
			ContractName: c.DisplayName(),
			HomeResort:   c.HomeResort,
			Baseline:     baseline,
			Scenario:     scenario,
			Bookings:     contractBookings,
		})
		summary.BaselineAvailable += baseline.AvailablePoints
		summary.ScenarioAvailable += scenario.AvailablePoints
	}

	summary.TotalImpact = summary.BaselineAvailable - summary.ScenarioAvailable

	return ScenarioImpact{
		TargetDate:       target,
		Contracts:        results,
		Summary:          summary,
		ResolvedBookings: resolved,
		Errors:           bookingErrors,
	}
}
