package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/dvc-dashboard/chart"
	"github.com/warp/dvc-dashboard/engine"
	"github.com/warp/dvc-dashboard/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	charts, err := chart.Load()
	require.NoError(t, err)

	handler := NewHandler(store, charts)
	require.NoError(t, handler.SeedDefaults(context.Background()))

	server := httptest.NewServer(NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

// do issues a request and decodes the JSON response into out (if non-nil).
func do(t *testing.T, server *httptest.Server, method, path string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createContract(t *testing.T, server *httptest.Server, req CreateContractRequest) ContractResponse {
	t.Helper()
	var created ContractResponse
	status := do(t, server, http.MethodPost, "/api/contracts", req, &created)
	require.Equal(t, http.StatusCreated, status)
	return created
}

var polyDirect = CreateContractRequest{
	Name:         "Poly Main",
	HomeResort:   "polynesian",
	UseYearMonth: 6,
	AnnualPoints: 160,
	PurchaseType: "direct",
}

// =============================================================================
// HEALTH AND METADATA
// =============================================================================

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	var health HealthResponse
	status := do(t, server, http.MethodGet, "/api/health", nil, &health)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)
}

func TestListResorts(t *testing.T) {
	server := newTestServer(t)

	var out []map[string]any
	status := do(t, server, http.MethodGet, "/api/resorts", nil, &out)

	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, out, 17)
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestContractLifecycle(t *testing.T) {
	server := newTestServer(t)

	created := createContract(t, server, polyDirect)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Poly Main", created.Name)

	// GET by id enriches with balances, eligibility, and timeline
	var detail ContractDetailResponse
	status := do(t, server, http.MethodGet, "/api/contracts/"+created.ID, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, detail.ID)
	assert.Len(t, detail.EligibleResorts, 17)
	assert.Empty(t, detail.PointBalances)
	assert.Equal(t, engine.UseYearActive, detail.UseYearTimeline.Status)

	// Partial update
	newName := "Renamed"
	var updated ContractResponse
	status = do(t, server, http.MethodPut, "/api/contracts/"+created.ID,
		UpdateContractRequest{Name: &newName}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 160, updated.AnnualPoints)

	// List includes it
	var all []ContractDetailResponse
	status = do(t, server, http.MethodGet, "/api/contracts", nil, &all)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, all, 1)

	// Delete, then 404
	status = do(t, server, http.MethodDelete, "/api/contracts/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/contracts/"+created.ID, nil, &envelope)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Type)
	assert.Equal(t, "Contract not found", envelope.Error.Message)
}

func TestCreateContractCollectsAllFieldErrors(t *testing.T) {
	server := newTestServer(t)

	var envelope errorEnvelope
	status := do(t, server, http.MethodPost, "/api/contracts", CreateContractRequest{
		Name:         "Bad",
		HomeResort:   "atlantis",
		UseYearMonth: 5,
		AnnualPoints: 0,
		PurchaseType: "rental",
	}, &envelope)

	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Type)
	assert.Equal(t, "Validation failed", envelope.Error.Message)

	// Every invalid field is reported at once
	require.Len(t, envelope.Error.Fields, 4)
	got := map[string]bool{}
	for _, f := range envelope.Error.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"home_resort", "use_year_month", "annual_points", "purchase_type"} {
		assert.True(t, got[field], "missing field error for %s", field)
	}
}

// =============================================================================
// POINT BALANCES
// =============================================================================

func TestBalanceRules(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)
	pointsPath := "/api/contracts/" + contract.ID + "/points"

	// Create current-year balance
	var balance PointBalanceResponse
	status := do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, &balance)
	require.Equal(t, http.StatusCreated, status)

	// Duplicate (contract, use_year, allocation) conflicts
	var envelope errorEnvelope
	status = do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 10}, &envelope)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", envelope.Error.Type)
	assert.Contains(t, envelope.Error.Message, "Use PUT to update it.")

	// Banked cannot exceed the annual allocation
	status = do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "banked", Points: 200}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "cannot exceed annual points (160)")

	// Borrowing is capped at 100% by default
	status = do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "borrowed", Points: 170}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "(100% of 160 = 160 points)")

	// Lowering the limit to 50% tightens the cap to 80
	status = do(t, server, http.MethodPut, "/api/settings/borrowing_limit_pct",
		UpdateSettingRequest{Value: "50"}, nil)
	require.Equal(t, http.StatusOK, status)

	status = do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "borrowed", Points: 90}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "(50% of 160 = 80 points)")

	var borrowed PointBalanceResponse
	status = do(t, server, http.MethodPost, pointsPath,
		CreateBalanceRequest{UseYear: 2025, AllocationType: "borrowed", Points: 80}, &borrowed)
	require.Equal(t, http.StatusCreated, status)

	// Grouped view sums per year and overall
	var grouped ContractPointsResponse
	status = do(t, server, http.MethodGet, pointsPath, nil, &grouped)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 240, grouped.GrandTotal)
	year := grouped.BalancesByYear["2025"]
	require.NotNil(t, year)
	assert.Equal(t, 160, year.Current)
	assert.Equal(t, 80, year.Borrowed)
	assert.Equal(t, 240, year.Total)

	// Updating the borrowed row re-checks the cap
	status = do(t, server, http.MethodPut, "/api/points/"+borrowed.ID,
		UpdateBalanceRequest{Points: 81}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var updated PointBalanceResponse
	status = do(t, server, http.MethodPut, "/api/points/"+borrowed.ID,
		UpdateBalanceRequest{Points: 40}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 40, updated.Points)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func TestCreateReservationValidation(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, CreateContractRequest{
		Name:         "Riviera Resale",
		HomeResort:   "riviera",
		UseYearMonth: 2,
		AnnualPoints: 100,
		PurchaseType: "resale",
	})
	path := "/api/contracts/" + contract.ID + "/reservations"

	// Restricted resale contract cannot book away from home
	var envelope errorEnvelope
	status := do(t, server, http.MethodPost, path, CreateReservationRequest{
		Resort: "polynesian", RoomKey: "deluxe_studio_standard",
		CheckIn: "2026-03-10", CheckOut: "2026-03-13", PointsCost: 42,
	}, &envelope)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Equal(t, "resort", envelope.Error.Fields[0].Field)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "not eligible for this resale contract at riviera")

	// Check-out must follow check-in, and stays cap at 14 nights
	status = do(t, server, http.MethodPost, path, CreateReservationRequest{
		Resort: "riviera", RoomKey: "tower_studio_standard",
		CheckIn: "2026-03-10", CheckOut: "2026-03-10", PointsCost: 0,
	}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Check-out must be after check-in.", envelope.Error.Fields[0].Issue)

	status = do(t, server, http.MethodPost, path, CreateReservationRequest{
		Resort: "riviera", RoomKey: "tower_studio_standard",
		CheckIn: "2026-03-01", CheckOut: "2026-03-20", PointsCost: 100,
	}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Maximum stay is 14 nights.", envelope.Error.Fields[0].Issue)

	// A valid stay gets a generated confirmation number
	var created ReservationResponse
	status = do(t, server, http.MethodPost, path, CreateReservationRequest{
		Resort: "riviera", RoomKey: "tower_studio_standard",
		CheckIn: "2026-03-10", CheckOut: "2026-03-13", PointsCost: 30,
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "confirmed", created.Status)
	assert.True(t, strings.HasPrefix(created.ConfirmationNumber, "DVC-"))
	assert.Len(t, created.ConfirmationNumber, 12)
}

func TestReservationLifecycle(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)
	path := "/api/contracts/" + contract.ID + "/reservations"

	var created ReservationResponse
	status := do(t, server, http.MethodPost, path, CreateReservationRequest{
		Resort: "polynesian", RoomKey: "deluxe_studio_standard",
		CheckIn: "2026-03-15", CheckOut: "2026-03-20", PointsCost: 85,
		Notes: "spring break",
	}, &created)
	require.Equal(t, http.StatusCreated, status)

	// Cancel it via partial update
	cancelled := "cancelled"
	var updated ReservationResponse
	status = do(t, server, http.MethodPut, "/api/reservations/"+created.ID,
		UpdateReservationRequest{Status: &cancelled}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", updated.Status)
	assert.Equal(t, "spring break", updated.Notes)

	// Status filter finds it; the contract listing includes it too
	var list []ReservationResponse
	status = do(t, server, http.MethodGet, "/api/reservations?status=cancelled", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	status = do(t, server, http.MethodGet, path, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)

	status = do(t, server, http.MethodDelete, "/api/reservations/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/reservations/"+created.ID, nil, &envelope)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Reservation not found", envelope.Error.Message)
}

// =============================================================================
// PREVIEW
// =============================================================================

func TestPreviewReservation(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, CreateContractRequest{
		Name:         "Poly Feb",
		HomeResort:   "polynesian",
		UseYearMonth: 2,
		AnnualPoints: 160,
		PurchaseType: "direct",
	})

	// 160 points in the February 2025 use year (2025-02-01 .. 2026-01-31)
	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/points",
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, nil)
	require.Equal(t, http.StatusCreated, status)

	// Preview a 3-night January 2026 stay: 3 Adventure weekday nights at 14
	var preview PreviewResponse
	status = do(t, server, http.MethodPost, "/api/reservations/preview", PreviewRequest{
		ContractID: contract.ID,
		Resort:     "polynesian",
		RoomKey:    "deluxe_studio_standard",
		CheckIn:    "2026-01-12",
		CheckOut:   "2026-01-15",
	}, &preview)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 42, preview.TotalPoints)
	assert.Equal(t, 42, preview.PointsDelta)
	assert.Equal(t, 3, preview.NumNights)
	require.Len(t, preview.NightlyBreakdown, 3)
	assert.Equal(t, "Adventure", preview.NightlyBreakdown[0].Season)

	assert.Equal(t, 160, preview.Before.AvailablePoints)
	assert.Equal(t, 118, preview.After.AvailablePoints)
	assert.Equal(t, 1, preview.After.CommittedReservationCount)

	// The Sep 30 2025 banking deadline has passed by check-in, so no warning
	assert.Nil(t, preview.BankingWarning)

	// Home-resort stay: 11-month window opened 2025-02-12, 7-month 2025-06-12
	assert.True(t, preview.BookingWindows.IsHomeResort)
	assert.Equal(t, "2025-02-12", preview.BookingWindows.HomeResortWindow.String())
	assert.Equal(t, "2025-06-12", preview.BookingWindows.AnyResortWindow.String())
}

func TestPreviewUnresolvableChart(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)

	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/points",
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, nil)
	require.Equal(t, http.StatusCreated, status)

	// Beach Club is eligible for a direct contract but carries no chart data
	var envelope errorEnvelope
	status = do(t, server, http.MethodPost, "/api/reservations/preview", PreviewRequest{
		ContractID: contract.ID,
		Resort:     "beach_club",
		RoomKey:    "deluxe_studio_standard",
		CheckIn:    "2026-01-12",
		CheckOut:   "2026-01-15",
	}, &envelope)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Point chart data not available for this resort/room/date range", envelope.Error.Message)
}

// =============================================================================
// BOOKING WINDOW ALERTS
// =============================================================================

func TestUpcomingBookingWindows(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)

	// A non-home stay whose 7-month window opens in about two weeks. The
	// check-in is placed 7 months after a near-future date so the alert
	// falls inside the default 30-day horizon regardless of when this runs.
	open := engine.Today().AddDays(15)
	if open.Day() > 28 {
		open = open.AddDays(-7)
	}
	checkIn := engine.NewDate(open.Year(), open.Month()+7, open.Day())

	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/reservations",
		CreateReservationRequest{
			Resort: "riviera", RoomKey: "tower_studio_standard",
			CheckIn: checkIn.String(), CheckOut: checkIn.AddDays(3).String(), PointsCost: 30,
		}, nil)
	require.Equal(t, http.StatusCreated, status)

	var alerts []WindowAlert
	status = do(t, server, http.MethodGet, "/api/booking-windows/upcoming", nil, &alerts)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, alerts, 1)
	assert.Equal(t, "any_resort", alerts[0].WindowType)
	assert.Equal(t, "riviera", alerts[0].Resort)
	assert.Equal(t, "Riviera Resort", alerts[0].ResortName)
	assert.Greater(t, alerts[0].DaysUntilOpen, 0)
	assert.LessOrEqual(t, alerts[0].DaysUntilOpen, 30)
}

func TestUpcomingBookingWindowsDaysValidation(t *testing.T) {
	server := newTestServer(t)

	var envelope errorEnvelope
	status := do(t, server, http.MethodGet, "/api/booking-windows/upcoming?days=200", nil, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Equal(t, "days", envelope.Error.Fields[0].Field)
}

// =============================================================================
// AVAILABILITY AND SCENARIOS
// =============================================================================

func TestGetAvailability(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)

	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/points",
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, nil)
	require.Equal(t, http.StatusCreated, status)

	// Pinned target date inside the June 2025 use year
	var result engine.PortfolioAvailability
	status = do(t, server, http.MethodGet, "/api/availability?target_date=2025-08-10", nil, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, result.Summary.TotalContracts)
	assert.Equal(t, 160, result.Summary.TotalAvailable)

	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/availability?target_date=nope", nil, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestEvaluateScenarioEmptyPortfolio(t *testing.T) {
	server := newTestServer(t)

	var result ScenarioEvaluateResponse
	status := do(t, server, http.MethodPost, "/api/scenarios/evaluate",
		ScenarioEvaluateRequest{}, &result)

	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, result.Contracts)
	assert.Empty(t, result.ResolvedBookings)
	assert.Empty(t, result.Errors)
	assert.Equal(t, engine.ScenarioSummary{}, result.Summary)
}

func TestEvaluateScenarioIsolatesChartErrors(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)

	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/points",
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, nil)
	require.Equal(t, http.StatusCreated, status)

	// Beach Club is eligible but has no chart; the Polynesian stay resolves
	var result ScenarioEvaluateResponse
	status = do(t, server, http.MethodPost, "/api/scenarios/evaluate", ScenarioEvaluateRequest{
		HypotheticalBookings: []HypotheticalBookingRequest{
			{ContractID: contract.ID, Resort: "beach_club", RoomKey: "deluxe_studio_standard",
				CheckIn: "2026-01-12", CheckOut: "2026-01-15"},
			{ContractID: contract.ID, Resort: "polynesian", RoomKey: "deluxe_studio_standard",
				CheckIn: "2026-01-12", CheckOut: "2026-01-15"},
		},
	}, &result)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "beach_club", result.Errors[0].Resort)
	assert.Equal(t, "Point chart data not available", result.Errors[0].Reason)
	require.Len(t, result.ResolvedBookings, 1)
	assert.Equal(t, 42, result.ResolvedBookings[0].PointsCost)
	require.Len(t, result.Contracts, 1)
}

func TestEvaluateScenarioRejectsBadInput(t *testing.T) {
	server := newTestServer(t)
	createContract(t, server, CreateContractRequest{
		Name:         "Riviera Resale",
		HomeResort:   "riviera",
		UseYearMonth: 2,
		AnnualPoints: 100,
		PurchaseType: "resale",
	})

	// Unknown contract
	var envelope errorEnvelope
	status := do(t, server, http.MethodPost, "/api/scenarios/evaluate", ScenarioEvaluateRequest{
		HypotheticalBookings: []HypotheticalBookingRequest{
			{ContractID: "ghost", Resort: "riviera", RoomKey: "tower_studio_standard",
				CheckIn: "2026-03-10", CheckOut: "2026-03-13"},
		},
	}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Contract ghost not found", envelope.Error.Message)
}

// =============================================================================
// TRIP EXPLORER
// =============================================================================

func TestTripExplorer(t *testing.T) {
	server := newTestServer(t)
	contract := createContract(t, server, polyDirect)

	status := do(t, server, http.MethodPost, "/api/contracts/"+contract.ID+"/points",
		CreateBalanceRequest{UseYear: 2025, AllocationType: "current", Points: 160}, nil)
	require.Equal(t, http.StatusCreated, status)

	// January 2026 falls inside the June 2025 use year, so 160 points apply
	var result engine.TripOptions
	status = do(t, server, http.MethodGet,
		"/api/trip-explorer?check_in=2026-01-12&check_out=2026-01-15", nil, &result)
	require.Equal(t, http.StatusOK, status)

	// Charts exist for 3 of the 17 eligible resorts
	assert.Len(t, result.ResortsChecked, 3)
	assert.Len(t, result.ResortsSkipped, 14)

	// Cheapest first: the 9-point Old Key West studio at 27 total
	require.NotEmpty(t, result.Options)
	assert.Equal(t, "old_key_west", result.Options[0].Resort)
	assert.Equal(t, "deluxe_studio_standard", result.Options[0].RoomKey)
	assert.Equal(t, 27, result.Options[0].TotalPoints)
	assert.Equal(t, 133, result.Options[0].PointsRemaining)
	assert.Equal(t, 9, result.Options[0].NightlyAvg)

	// Nothing on offer costs more than the contract can cover
	for _, opt := range result.Options {
		assert.LessOrEqual(t, opt.TotalPoints, 160)
	}
}

func TestTripExplorerValidation(t *testing.T) {
	server := newTestServer(t)

	var envelope errorEnvelope
	status := do(t, server, http.MethodGet, "/api/trip-explorer?check_in=soon&check_out=later", nil, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, envelope.Error.Fields, 2)
}

// =============================================================================
// POINT CHARTS
// =============================================================================

func TestListCharts(t *testing.T) {
	server := newTestServer(t)

	var charts []chart.Summary
	status := do(t, server, http.MethodGet, "/api/point-charts", nil, &charts)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, charts, 3)
	assert.Equal(t, chart.Summary{Resort: "old_key_west", Year: 2026}, charts[0])
}

func TestCalculateCost(t *testing.T) {
	server := newTestServer(t)

	var cost engine.StayCost
	status := do(t, server, http.MethodPost, "/api/point-charts/calculate", CalculateCostRequest{
		Resort: "polynesian", RoomKey: "deluxe_studio_standard",
		CheckIn: "2026-01-12", CheckOut: "2026-01-15",
	}, &cost)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 42, cost.TotalPoints)
	assert.Equal(t, 3, cost.NumNights)

	// No chart for the check-in year
	var envelope errorEnvelope
	status = do(t, server, http.MethodPost, "/api/point-charts/calculate", CalculateCostRequest{
		Resort: "polynesian", RoomKey: "deluxe_studio_standard",
		CheckIn: "2025-01-12", CheckOut: "2025-01-15",
	}, &envelope)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Point chart not found for this resort/year.", envelope.Error.Message)

	// Unknown room key lists the valid ones
	status = do(t, server, http.MethodPost, "/api/point-charts/calculate", CalculateCostRequest{
		Resort: "polynesian", RoomKey: "grand_villa_standard",
		CheckIn: "2026-01-12", CheckOut: "2026-01-15",
	}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "Invalid room key 'grand_villa_standard'")
	assert.Contains(t, envelope.Error.Fields[0].Issue, "deluxe_studio_standard")
}

func TestGetChartRooms(t *testing.T) {
	server := newTestServer(t)

	var rooms ChartRoomsResponse
	status := do(t, server, http.MethodGet, "/api/point-charts/polynesian/2026/rooms", nil, &rooms)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rooms.Rooms, 3)

	byKey := map[string]RoomInfo{}
	for _, r := range rooms.Rooms {
		byKey[r.Key] = r
	}
	assert.Equal(t, RoomInfo{Key: "deluxe_studio_standard", RoomType: "Deluxe Studio", View: "Standard"},
		byKey["deluxe_studio_standard"])
	assert.Equal(t, RoomInfo{Key: "deluxe_studio_lake", RoomType: "Deluxe Studio", View: "Lake"},
		byKey["deluxe_studio_lake"])
	assert.Equal(t, RoomInfo{Key: "bungalow_lake", RoomType: "Bungalow", View: "Lake"},
		byKey["bungalow_lake"])

	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/point-charts/polynesian/2031/rooms", nil, &envelope)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetChartSeasons(t *testing.T) {
	server := newTestServer(t)

	var seasons ChartSeasonsResponse
	status := do(t, server, http.MethodGet, "/api/point-charts/polynesian/2026/seasons", nil, &seasons)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "polynesian", seasons.Resort)
	require.Len(t, seasons.Seasons, 6)
	assert.Equal(t, "Adventure", seasons.Seasons[0].Name)

	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/point-charts/polynesian/twenty/seasons", nil, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings(t *testing.T) {
	server := newTestServer(t)

	// Seeded default
	var settings []AppSettingResponse
	status := do(t, server, http.MethodGet, "/api/settings", nil, &settings)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, settings, 1)
	assert.Equal(t, AppSettingResponse{Key: "borrowing_limit_pct", Value: "100"}, settings[0])

	// Unknown key
	var envelope errorEnvelope
	status = do(t, server, http.MethodGet, "/api/settings/theme", nil, &envelope)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Setting 'theme' not found", envelope.Error.Message)

	status = do(t, server, http.MethodPut, "/api/settings/theme",
		UpdateSettingRequest{Value: "dark"}, &envelope)
	assert.Equal(t, http.StatusNotFound, status)

	// Disallowed value
	status = do(t, server, http.MethodPut, "/api/settings/borrowing_limit_pct",
		UpdateSettingRequest{Value: "75"}, &envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.Len(t, envelope.Error.Fields, 1)
	assert.Contains(t, envelope.Error.Fields[0].Issue, "Invalid value '75'")

	// Allowed value round-trips
	status = do(t, server, http.MethodPut, "/api/settings/borrowing_limit_pct",
		UpdateSettingRequest{Value: "50"}, nil)
	require.Equal(t, http.StatusOK, status)

	var setting AppSettingResponse
	status = do(t, server, http.MethodGet, "/api/settings/borrowing_limit_pct", nil, &setting)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "50", setting.Value)
}

// Guard against accidental route renames.
func TestUnknownRouteIs404(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + fmt.Sprintf("/api/%s", "nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
