/*
impact.go - Booking impact and banking warning

PURPOSE:
  Answers "what would this booking cost, and what would remain?" by
  computing before/after availability snapshots around one proposed stay,
  plus a conservative warning when the booking would consume points that
  could still be banked.
*/
package engine

import "fmt"

// BookingImpact is the before/after effect of one proposed booking.
type BookingImpact struct {
	Before      ContractAvailability `json:"before"`
	After       ContractAvailability `json:"after"`
	StayCost    StayCost             `json:"stay_cost"`
	PointsDelta int                  `json:"points_delta"`
}

// ComputeBookingImpact resolves the proposed stay's cost, then computes
// availability with and without a synthetic confirmed reservation for it.
// Both snapshots use the proposed check-in as the target date. Returns
// ErrChartUnavailable (wrapped) when the cost cannot be resolved; the
// caller should treat that as a rejectable request.
func ComputeBookingImpact(
	charts ChartSource,
	contract Contract,
	balances []PointBalance,
	reservations []Reservation,
	resort, roomKey string,
	checkIn, checkOut Date,
) (BookingImpact, error) {
	before := ContractAvailabilityAt(contract, balances, reservations, checkIn)

	cost, err := charts.StayCost(resort, roomKey, checkIn, checkOut)
	if err != nil {
		return BookingImpact{}, fmt.Errorf("stay cost for %s/%s: %w", resort, roomKey, err)
	}

	proposed := Reservation{
		ContractID: contract.ID,
		Resort:     resort,
		RoomKey:    roomKey,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		PointsCost: cost.TotalPoints,
		Status:     StatusConfirmed,
	}
	after := ContractAvailabilityAt(contract, balances, append(append([]Reservation{}, reservations...), proposed), checkIn)

	return BookingImpact{
		Before:      before,
		After:       after,
		StayCost:    cost,
		PointsDelta: cost.TotalPoints,
	}, nil
}

// =============================================================================
// BANKING WARNING
// =============================================================================

// BankingWarning flags a booking that must dip into still-bankable points.
type BankingWarning struct {
	BankablePoints     int    `json:"bankable_points"`
	BankingDeadline    Date   `json:"banking_deadline"`
	DaysUntilDeadline  int    `json:"days_until_deadline"`
	Message            string `json:"message"`
}

// ComputeBankingWarning returns a warning when the proposed cost cannot be
// covered by non-bankable balances alone, nil otherwise. Suppressed entirely
// once the banking deadline has passed or when there are no current-year
// points to protect.
func ComputeBankingWarning(before ContractAvailability, pointsCost int) *BankingWarning {
	if before.BankingDeadlinePassed {
		return nil
	}
	bankable := before.BankablePoints()
	if bankable == 0 {
		return nil
	}

	nonBankable := before.AvailablePoints - bankable
	if pointsCost <= nonBankable {
		return nil
	}

	return &BankingWarning{
		BankablePoints:    bankable,
		BankingDeadline:   before.BankingDeadline,
		DaysUntilDeadline: before.DaysUntilBankingDeadline,
		Message: fmt.Sprintf(
			"This booking could use points that are still eligible for banking. "+
				"Banking deadline: %s (%d days away). Up to %d points could still be banked.",
			before.BankingDeadline, before.DaysUntilBankingDeadline, bankable),
	}
}
