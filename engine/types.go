/*
Package engine implements the DVC points calculation core.

PURPOSE:
  Pure functions over immutable snapshots of contracts, point balances, and
  reservations. The engine answers questions like "which use year is active
  on this date?", "how many points are available?", "when does the booking
  window open?", and "what could I afford?" without touching storage.

KEY CONCEPTS IN THIS FILE (types.go):
  - Contract: a points contract with a home resort and use-year anniversary
  - PointBalance: points for one (contract, use year, allocation type)
  - Reservation: a stay that consumes points from the use year containing
    its check-in date

DESIGN PRINCIPLES:
  1. Purity: every exported function takes snapshots and returns new values;
     caller data is never mutated.
  2. Explicit time: functions that depend on "today" take it as a parameter.
  3. Explicit failure: batch operations collect per-item errors instead of
     aborting.

The HTTP layer (api package) loads rows from storage, converts them to these
snapshot types, and calls into the engine.

SEE ALSO:
  - useyear.go: use-year calendar arithmetic
  - availability.go: balance + reservation aggregation
  - scenario.go, explorer.go: what-if composition
*/
package engine

import "time"

// =============================================================================
// ENUMS
// =============================================================================

// PurchaseType determines booking eligibility tiers.
type PurchaseType string

const (
	PurchaseDirect PurchaseType = "direct"
	PurchaseResale PurchaseType = "resale"
)

// AllocationType tags where a point balance came from.
type AllocationType string

const (
	AllocationCurrent  AllocationType = "current"  // this use year's allocation
	AllocationBanked   AllocationType = "banked"   // banked from the prior use year
	AllocationBorrowed AllocationType = "borrowed" // borrowed from the next use year
	AllocationHolding  AllocationType = "holding"  // holding account (late cancellation)
)

// AllocationTypes lists all valid allocation types in display order.
var AllocationTypes = []AllocationType{
	AllocationCurrent, AllocationBanked, AllocationBorrowed, AllocationHolding,
}

// ValidAllocationType reports whether s is a known allocation type.
func ValidAllocationType(s string) bool {
	for _, a := range AllocationTypes {
		if string(a) == s {
			return true
		}
	}
	return false
}

// ReservationStatus is the lifecycle state of a reservation. Cancelled
// reservations never count toward committed points.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusPending   ReservationStatus = "pending"
	StatusCancelled ReservationStatus = "cancelled"
)

// =============================================================================
// SNAPSHOT TYPES - Immutable inputs passed from the storage layer
// =============================================================================

// Contract is a points contract snapshot.
type Contract struct {
	ID           string
	Name         string
	HomeResort   string // resort slug, e.g. "polynesian"
	UseYearMonth time.Month
	AnnualPoints int
	PurchaseType PurchaseType
}

// DisplayName returns the contract name, falling back to the home resort.
func (c Contract) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.HomeResort
}

// PointBalance is one (contract, use year, allocation type) balance row.
type PointBalance struct {
	ContractID string
	UseYear    int // calendar year the use year begins in, e.g. 2026
	Allocation AllocationType
	Points     int
}

// Reservation is a stay snapshot. PointsCost is precomputed at creation time
// from the point chart.
type Reservation struct {
	ContractID string
	Resort     string // resort slug
	RoomKey    string // composite key, e.g. "deluxe_studio_lake"
	CheckIn    Date
	CheckOut   Date
	PointsCost int
	Status     ReservationStatus
}

// MaxStayNights is DVC's per-reservation stay length cap.
const MaxStayNights = 14
