/*
availability.go - Point availability aggregation

PURPOSE:
  Aggregates point balances and committed reservations into an availability
  snapshot for a target date. This is the central calculation that answers
  "how many points can I spend?".

SCOPING RULE (load-bearing):
  Everything is scoped to the ONE use year active on the target date.
  Balances tagged with any other use year contribute nothing; there is no
  carry-forward beyond the explicit banked/borrowed rows already present.
  A reservation commits points against the use year containing its check-in
  date, boundaries inclusive.

AVAILABILITY:
  available = max(0, total - committed)
  Never negative, even when a contract is overcommitted.
*/
package engine

// =============================================================================
// AVAILABILITY SNAPSHOT
// =============================================================================

// ContractAvailability is the availability snapshot for one contract on one
// target date.
type ContractAvailability struct {
	ContractID   string `json:"contract_id"`
	ContractName string `json:"contract_name,omitempty"`
	HomeResort   string `json:"home_resort,omitempty"`
	AnnualPoints int    `json:"annual_points,omitempty"`

	UseYear       int           `json:"use_year"`
	UseYearStart  Date          `json:"use_year_start"`
	UseYearEnd    Date          `json:"use_year_end"`
	UseYearStatus UseYearStatus `json:"use_year_status"`

	BankingDeadline          Date `json:"banking_deadline"`
	BankingDeadlinePassed    bool `json:"banking_deadline_passed"`
	DaysUntilBankingDeadline int  `json:"days_until_banking_deadline"`
	DaysUntilExpiration      int  `json:"days_until_expiration"`

	Balances                  map[AllocationType]int `json:"balances"`
	TotalPoints               int                    `json:"total_points"`
	CommittedPoints           int                    `json:"committed_points"`
	CommittedReservationCount int                    `json:"committed_reservation_count"`
	AvailablePoints           int                    `json:"available_points"`
}

// ContractAvailabilityAt computes the availability snapshot for one contract.
// Balances and reservations may include rows for other contracts; only rows
// matching the contract's ID are considered.
func ContractAvailabilityAt(c Contract, balances []PointBalance, reservations []Reservation, target Date) ContractAvailability {
	useYear := CurrentUseYear(c.UseYearMonth, target)
	start := UseYearStart(c.UseYearMonth, useYear)
	end := UseYearEnd(c.UseYearMonth, useYear)
	deadline := BankingDeadline(c.UseYearMonth, useYear)

	byType := make(map[AllocationType]int)
	total := 0
	for _, b := range balances {
		if b.ContractID != c.ID || b.UseYear != useYear {
			continue
		}
		byType[b.Allocation] += b.Points
		total += b.Points
	}

	committed := 0
	committedCount := 0
	for _, r := range reservations {
		if r.ContractID != c.ID || r.Status == StatusCancelled {
			continue
		}
		if r.CheckIn.AfterOrEqual(start) && r.CheckIn.BeforeOrEqual(end) {
			committed += r.PointsCost
			committedCount++
		}
	}

	available := total - committed
	if available < 0 {
		available = 0
	}

	return ContractAvailability{
		ContractID:   c.ID,
		ContractName: c.DisplayName(),
		HomeResort:   c.HomeResort,
		AnnualPoints: c.AnnualPoints,

		UseYear:       useYear,
		UseYearStart:  start,
		UseYearEnd:    end,
		UseYearStatus: StatusOfUseYear(c.UseYearMonth, useYear, target),

		BankingDeadline:          deadline,
		BankingDeadlinePassed:    target.After(deadline),
		DaysUntilBankingDeadline: DaysBetween(target, deadline),
		DaysUntilExpiration:      DaysBetween(target, end),

		Balances:                  byType,
		TotalPoints:               total,
		CommittedPoints:           committed,
		CommittedReservationCount: committedCount,
		AvailablePoints:           available,
	}
}

// BankablePoints returns the portion of the snapshot's balances still
// eligible for banking (the "current" allocation).
func (a ContractAvailability) BankablePoints() int {
	return a.Balances[AllocationCurrent]
}

// =============================================================================
// PORTFOLIO AVAILABILITY - All contracts
// =============================================================================

// AvailabilitySummary is the cross-contract total.
type AvailabilitySummary struct {
	TotalContracts int `json:"total_contracts"`
	TotalPoints    int `json:"total_points"`
	TotalCommitted int `json:"total_committed"`
	TotalAvailable int `json:"total_available"`
}

// PortfolioAvailability is availability across every contract on one date.
type PortfolioAvailability struct {
	TargetDate Date                   `json:"target_date"`
	Contracts  []ContractAvailability `json:"contracts"`
	Summary    AvailabilitySummary    `json:"summary"`
}

// AllContractsAvailability computes per-contract snapshots plus a grand
// total. An empty contract list yields an all-zero summary.
func AllContractsAvailability(contracts []Contract, balances []PointBalance, reservations []Reservation, target Date) PortfolioAvailability {
	results := make([]ContractAvailability, 0, len(contracts))
	summary := AvailabilitySummary{TotalContracts: len(contracts)}

	for _, c := range contracts {
		snap := ContractAvailabilityAt(c, balances, reservations, target)
		results = append(results, snap)
		summary.TotalPoints += snap.TotalPoints
		summary.TotalCommitted += snap.CommittedPoints
		summary.TotalAvailable += snap.AvailablePoints
	}

	return PortfolioAvailability{
		TargetDate: target,
		Contracts:  results,
		Summary:    summary,
	}
}
