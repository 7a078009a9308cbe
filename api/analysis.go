/*
analysis.go - Availability, scenarios, trip explorer, and point charts

PURPOSE:
  The read-only analysis surface: portfolio availability snapshots, what-if
  scenario evaluation, the affordability search, and the point chart
  browsing/calculation endpoints.

SEE ALSO:
  - engine/availability.go, engine/scenario.go, engine/explorer.go
  - chart/chart.go: the embedded chart library
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warp/dvc-dashboard/engine"
)

// =============================================================================
// AVAILABILITY
// =============================================================================

// GetAvailability returns every contract's availability snapshot for a
// target date (default today).
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	target := engine.Today()
	if raw := r.URL.Query().Get("target_date"); raw != "" {
		parsed, err := engine.ParseDate(raw)
		if err != nil {
			writeValidationError(w, FieldError{Field: "target_date", Issue: "Invalid date format. Use ISO format (YYYY-MM-DD)."})
			return
		}
		target = parsed
	}

	contracts, balances, reservations, err := h.loadPortfolio(r.Context())
	if err != nil {
		writeServerError(w, "load portfolio", err)
		return
	}

	writeJSON(w, http.StatusOK, engine.AllContractsAvailability(contracts, balances, reservations, target))
}

// =============================================================================
// SCENARIOS
// =============================================================================

// EvaluateScenario evaluates a batch of hypothetical bookings against
// current availability.
func (h *Handler) EvaluateScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	contracts, balances, reservations, err := h.loadPortfolio(r.Context())
	if err != nil {
		writeServerError(w, "load portfolio", err)
		return
	}

	// No contracts means nothing to evaluate.
	if len(contracts) == 0 {
		writeJSON(w, http.StatusOK, ScenarioEvaluateResponse{
			Contracts:        []ScenarioContractResult{},
			Summary:          engine.ScenarioSummary{},
			ResolvedBookings: []engine.ResolvedBooking{},
			Errors:           []engine.BookingError{},
		})
		return
	}

	contractsByID := make(map[string]engine.Contract, len(contracts))
	for _, c := range contracts {
		contractsByID[c.ID] = c
	}

	hypotheticals := make([]engine.HypotheticalBooking, 0, len(req.HypotheticalBookings))
	for _, hb := range req.HypotheticalBookings {
		contract, ok := contractsByID[hb.ContractID]
		if !ok {
			writeValidationMessage(w, fmt.Sprintf("Contract %s not found", hb.ContractID))
			return
		}
		if !engine.ResortEligible(h.Resorts, contract.HomeResort, contract.PurchaseType, hb.Resort) {
			eligible := engine.EligibleResorts(h.Resorts, contract.HomeResort, contract.PurchaseType)
			writeValidationMessage(w, fmt.Sprintf(
				"Resort '%s' is not eligible for contract %s (%s at %s). Eligible resorts: %v",
				hb.Resort, hb.ContractID, contract.PurchaseType, contract.HomeResort, eligible))
			return
		}

		checkIn, checkOut, fields := validateStayDates(hb.CheckIn, hb.CheckOut)
		if len(fields) > 0 {
			writeValidationError(w, fields...)
			return
		}
		hypotheticals = append(hypotheticals, engine.HypotheticalBooking{
			ContractID: hb.ContractID,
			Resort:     hb.Resort,
			RoomKey:    hb.RoomKey,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
		})
	}

	impact := engine.ComputeScenarioImpact(h.Charts, contracts, balances, reservations, hypotheticals, engine.Today())

	results := make([]ScenarioContractResult, len(impact.Contracts))
	for i, cs := range impact.Contracts {
		results[i] = ScenarioContractResult{
			ContractID:        cs.ContractID,
			ContractName:      cs.ContractName,
			HomeResort:        cs.HomeResort,
			BaselineAvailable: cs.Baseline.AvailablePoints,
			BaselineTotal:     cs.Baseline.TotalPoints,
			BaselineCommitted: cs.Baseline.CommittedPoints,
			ScenarioAvailable: cs.Scenario.AvailablePoints,
			ScenarioTotal:     cs.Scenario.TotalPoints,
			ScenarioCommitted: cs.Scenario.CommittedPoints,
			Impact:            cs.Baseline.AvailablePoints - cs.Scenario.AvailablePoints,
		}
	}

	writeJSON(w, http.StatusOK, ScenarioEvaluateResponse{
		Contracts:        results,
		Summary:          impact.Summary,
		ResolvedBookings: impact.ResolvedBookings,
		Errors:           impact.Errors,
	})
}

// =============================================================================
// TRIP EXPLORER
// =============================================================================

// TripExplorer finds all affordable resort/room options for a date range.
func (h *Handler) TripExplorer(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, fields := validateStayDates(r.URL.Query().Get("check_in"), r.URL.Query().Get("check_out"))
	if len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	contracts, balances, reservations, err := h.loadPortfolio(r.Context())
	if err != nil {
		writeServerError(w, "load portfolio", err)
		return
	}

	writeJSON(w, http.StatusOK, engine.FindAffordableOptions(h.Charts, h.Resorts, contracts, balances, reservations, checkIn, checkOut))
}

// =============================================================================
// POINT CHARTS
// =============================================================================

// ListCharts returns the available resort/year chart summaries.
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Charts.Available())
}

func (h *Handler) chartFromURL(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	resort := chi.URLParam(r, "resort")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeValidationError(w, FieldError{Field: "year", Issue: "Year must be an integer"})
		return "", 0, false
	}
	return resort, year, true
}

// GetChart returns a resort's full chart for a year.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	resort, year, ok := h.chartFromURL(w, r)
	if !ok {
		return
	}
	c, ok := h.Charts.Get(resort, year)
	if !ok {
		writeNotFound(w, "Point chart not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// humanize converts an underscore slug to Title Case.
func humanize(slug string) string {
	words := strings.Split(slug, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// parseRoomKey splits a room key into room type and view, matching the
// longest view-category suffix first so "deluxe_studio_theme_park" resolves
// view "theme_park" rather than "park".
func parseRoomKey(roomKey string, viewCategories []string) RoomInfo {
	views := append([]string{}, viewCategories...)
	sort.Slice(views, func(i, j int) bool { return len(views[i]) > len(views[j]) })

	for _, view := range views {
		if strings.HasSuffix(roomKey, "_"+view) {
			return RoomInfo{
				Key:      roomKey,
				RoomType: humanize(strings.TrimSuffix(roomKey, "_"+view)),
				View:     humanize(view),
			}
		}
	}
	return RoomInfo{Key: roomKey, RoomType: humanize(roomKey), View: "Standard"}
}

// GetChartRooms returns the parsed room types of a chart.
func (h *Handler) GetChartRooms(w http.ResponseWriter, r *http.Request) {
	resort, year, ok := h.chartFromURL(w, r)
	if !ok {
		return
	}
	if !h.Charts.HasChart(resort, year) {
		writeNotFound(w, "Point chart not found")
		return
	}

	viewCategories := []string{"standard"}
	if meta, ok := h.Resorts.BySlug(resort); ok {
		viewCategories = meta.ViewCategories
	}

	keys := h.Charts.RoomKeys(resort, year)
	rooms := make([]RoomInfo, len(keys))
	for i, key := range keys {
		rooms[i] = parseRoomKey(key, viewCategories)
	}
	writeJSON(w, http.StatusOK, ChartRoomsResponse{Resort: resort, Year: year, Rooms: rooms})
}

// GetChartSeasons returns the season structure without room costs.
func (h *Handler) GetChartSeasons(w http.ResponseWriter, r *http.Request) {
	resort, year, ok := h.chartFromURL(w, r)
	if !ok {
		return
	}
	c, ok := h.Charts.Get(resort, year)
	if !ok {
		writeNotFound(w, "Point chart not found")
		return
	}

	seasons := make([]SeasonInfo, len(c.Seasons))
	for i, s := range c.Seasons {
		seasons[i] = SeasonInfo{Name: s.Name, DateRanges: s.DateRanges}
	}
	writeJSON(w, http.StatusOK, ChartSeasonsResponse{Resort: resort, Year: year, Seasons: seasons})
}

// CalculateCost prices a stay from the chart.
func (h *Handler) CalculateCost(w http.ResponseWriter, r *http.Request) {
	var req CalculateCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	checkIn, checkOut, fields := validateStayDates(req.CheckIn, req.CheckOut)
	if len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	if !h.Charts.HasChart(req.Resort, checkIn.Year()) {
		writeNotFound(w, "Point chart not found for this resort/year.")
		return
	}

	keys := h.Charts.RoomKeys(req.Resort, checkIn.Year())
	known := false
	for _, key := range keys {
		if key == req.RoomKey {
			known = true
			break
		}
	}
	if !known {
		writeValidationError(w, FieldError{Field: "room_key", Issue: fmt.Sprintf(
			"Invalid room key '%s'. Available: %v", req.RoomKey, keys)})
		return
	}

	cost, err := h.Charts.StayCost(req.Resort, req.RoomKey, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, engine.ErrChartUnavailable) {
			writeValidationMessage(w, "Could not calculate cost. Dates may be out of range.")
			return
		}
		writeServerError(w, "calculate stay cost", err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}
