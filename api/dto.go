/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API. Engine result types already carry json tags
  and are returned directly where the wire shape matches; the DTOs here cover
  requests, persisted-entity responses, and the few places the wire shape
  flattens or regroups engine output.

CONVENTIONS:
  - Dates are ISO strings (YYYY-MM-DD) in requests; engine.Date marshals to
    the same format in responses.
  - Update requests use pointers: nil means "leave unchanged".

SEE ALSO:
  - handlers.go, reservations.go, analysis.go: the handlers using these
*/
package api

import (
	"time"

	"github.com/warp/dvc-dashboard/engine"
	"github.com/warp/dvc-dashboard/store/sqlite"
)

// =============================================================================
// CONTRACTS
// =============================================================================

// ContractResponse is a persisted contract.
type ContractResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	HomeResort   string `json:"home_resort"`
	UseYearMonth int    `json:"use_year_month"`
	AnnualPoints int    `json:"annual_points"`
	PurchaseType string `json:"purchase_type"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func contractResponse(c *sqlite.ContractRecord) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		Name:         c.Name,
		HomeResort:   c.HomeResort,
		UseYearMonth: c.UseYearMonth,
		AnnualPoints: c.AnnualPoints,
		PurchaseType: c.PurchaseType,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

// ContractDetailResponse enriches a contract with balances, eligibility, and
// the current use-year timeline.
type ContractDetailResponse struct {
	ContractResponse
	PointBalances   []PointBalanceResponse `json:"point_balances"`
	EligibleResorts []string               `json:"eligible_resorts"`
	UseYearTimeline engine.UseYearTimeline `json:"use_year_timeline"`
}

// CreateContractRequest creates a contract.
type CreateContractRequest struct {
	Name         string `json:"name"`
	HomeResort   string `json:"home_resort"`
	UseYearMonth int    `json:"use_year_month"`
	AnnualPoints int    `json:"annual_points"`
	PurchaseType string `json:"purchase_type"`
}

// UpdateContractRequest partially updates a contract.
type UpdateContractRequest struct {
	Name         *string `json:"name"`
	HomeResort   *string `json:"home_resort"`
	UseYearMonth *int    `json:"use_year_month"`
	AnnualPoints *int    `json:"annual_points"`
	PurchaseType *string `json:"purchase_type"`
}

// =============================================================================
// POINT BALANCES
// =============================================================================

// PointBalanceResponse is a persisted balance row.
type PointBalanceResponse struct {
	ID             string `json:"id"`
	ContractID     string `json:"contract_id"`
	UseYear        int    `json:"use_year"`
	AllocationType string `json:"allocation_type"`
	Points         int    `json:"points"`
}

func balanceResponse(b *sqlite.PointBalanceRecord) PointBalanceResponse {
	return PointBalanceResponse{
		ID:             b.ID,
		ContractID:     b.ContractID,
		UseYear:        b.UseYear,
		AllocationType: b.AllocationType,
		Points:         b.Points,
	}
}

// CreateBalanceRequest adds a balance row to a contract.
type CreateBalanceRequest struct {
	UseYear        int    `json:"use_year"`
	AllocationType string `json:"allocation_type"`
	Points         int    `json:"points"`
}

// UpdateBalanceRequest sets the point count of a balance row.
type UpdateBalanceRequest struct {
	Points int `json:"points"`
}

// YearBalances groups one use year's points by allocation type.
type YearBalances struct {
	Current  int `json:"current"`
	Banked   int `json:"banked"`
	Borrowed int `json:"borrowed"`
	Holding  int `json:"holding"`
	Total    int `json:"total"`
}

// ContractPointsResponse is the balances-grouped-by-use-year view.
type ContractPointsResponse struct {
	ContractID     string                   `json:"contract_id"`
	ContractName   string                   `json:"contract_name"`
	AnnualPoints   int                      `json:"annual_points"`
	BalancesByYear map[string]*YearBalances `json:"balances_by_year"`
	GrandTotal     int                      `json:"grand_total"`
}

// TimelineResponse carries the current and next use-year timelines.
type TimelineResponse struct {
	ContractID   string                   `json:"contract_id"`
	UseYearMonth int                      `json:"use_year_month"`
	Timelines    []engine.UseYearTimeline `json:"timelines"`
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// ReservationResponse is a persisted reservation.
type ReservationResponse struct {
	ID                 string `json:"id"`
	ContractID         string `json:"contract_id"`
	Resort             string `json:"resort"`
	RoomKey            string `json:"room_key"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	PointsCost         int    `json:"points_cost"`
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`
	Notes              string `json:"notes,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func reservationResponse(r *sqlite.ReservationRecord) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID,
		ContractID:         r.ContractID,
		Resort:             r.Resort,
		RoomKey:            r.RoomKey,
		CheckIn:            r.CheckIn.String(),
		CheckOut:           r.CheckOut.String(),
		PointsCost:         r.PointsCost,
		Status:             r.Status,
		ConfirmationNumber: r.ConfirmationNumber,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateReservationRequest creates a reservation for a contract.
type CreateReservationRequest struct {
	Resort             string `json:"resort"`
	RoomKey            string `json:"room_key"`
	CheckIn            string `json:"check_in"`
	CheckOut           string `json:"check_out"`
	PointsCost         int    `json:"points_cost"`
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmation_number"`
	Notes              string `json:"notes"`
}

// UpdateReservationRequest partially updates a reservation.
type UpdateReservationRequest struct {
	Resort             *string `json:"resort"`
	RoomKey            *string `json:"room_key"`
	CheckIn            *string `json:"check_in"`
	CheckOut           *string `json:"check_out"`
	PointsCost         *int    `json:"points_cost"`
	Status             *string `json:"status"`
	ConfirmationNumber *string `json:"confirmation_number"`
	Notes              *string `json:"notes"`
}

// PreviewRequest asks for the impact of a proposed reservation.
type PreviewRequest struct {
	ContractID string `json:"contract_id"`
	Resort     string `json:"resort"`
	RoomKey    string `json:"room_key"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

// PreviewResponse is the impact of a proposed reservation.
type PreviewResponse struct {
	Before           engine.ContractAvailability `json:"before"`
	After            engine.ContractAvailability `json:"after"`
	PointsDelta      int                         `json:"points_delta"`
	NightlyBreakdown []engine.NightCost          `json:"nightly_breakdown"`
	TotalPoints      int                         `json:"total_points"`
	NumNights        int                         `json:"num_nights"`
	BookingWindows   engine.BookingWindows       `json:"booking_windows"`
	BankingWarning   *engine.BankingWarning      `json:"banking_warning"`
}

// WindowAlert is one upcoming booking-window opening.
type WindowAlert struct {
	ContractName  string      `json:"contract_name"`
	Resort        string      `json:"resort"`
	ResortName    string      `json:"resort_name"`
	CheckIn       string      `json:"check_in"`
	WindowType    string      `json:"window_type"` // "home_resort" | "any_resort"
	WindowDate    engine.Date `json:"window_date"`
	DaysUntilOpen int         `json:"days_until_open"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// HypotheticalBookingRequest is one proposed stay in a scenario.
type HypotheticalBookingRequest struct {
	ContractID string `json:"contract_id"`
	Resort     string `json:"resort"`
	RoomKey    string `json:"room_key"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

// ScenarioEvaluateRequest is a batch of hypothetical bookings.
type ScenarioEvaluateRequest struct {
	HypotheticalBookings []HypotheticalBookingRequest `json:"hypothetical_bookings"`
}

// ScenarioContractResult flattens one contract's baseline vs scenario.
type ScenarioContractResult struct {
	ContractID        string `json:"contract_id"`
	ContractName      string `json:"contract_name"`
	HomeResort        string `json:"home_resort"`
	BaselineAvailable int    `json:"baseline_available"`
	BaselineTotal     int    `json:"baseline_total"`
	BaselineCommitted int    `json:"baseline_committed"`
	ScenarioAvailable int    `json:"scenario_available"`
	ScenarioTotal     int    `json:"scenario_total"`
	ScenarioCommitted int    `json:"scenario_committed"`
	Impact            int    `json:"impact"`
}

// ScenarioEvaluateResponse is the full scenario evaluation result.
type ScenarioEvaluateResponse struct {
	Contracts        []ScenarioContractResult `json:"contracts"`
	Summary          engine.ScenarioSummary   `json:"summary"`
	ResolvedBookings []engine.ResolvedBooking `json:"resolved_bookings"`
	Errors           []engine.BookingError    `json:"errors"`
}

// =============================================================================
// POINT CHARTS
// =============================================================================

// CalculateCostRequest prices a stay from the point chart.
type CalculateCostRequest struct {
	Resort   string `json:"resort"`
	RoomKey  string `json:"room_key"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// RoomInfo is a room key parsed into its type and view components.
type RoomInfo struct {
	Key      string `json:"key"`
	RoomType string `json:"room_type"`
	View     string `json:"view"`
}

// ChartRoomsResponse lists the parsed room types of one chart.
type ChartRoomsResponse struct {
	Resort string     `json:"resort"`
	Year   int        `json:"year"`
	Rooms  []RoomInfo `json:"rooms"`
}

// SeasonInfo is a season's name and date ranges without room costs.
type SeasonInfo struct {
	Name       string     `json:"name"`
	DateRanges [][]string `json:"date_ranges"`
}

// ChartSeasonsResponse lists the season structure of one chart.
type ChartSeasonsResponse struct {
	Resort  string       `json:"resort"`
	Year    int          `json:"year"`
	Seasons []SeasonInfo `json:"seasons"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// AppSettingResponse is one key/value setting.
type AppSettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpdateSettingRequest sets a setting value.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
