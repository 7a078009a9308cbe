/*
reservations.go - Reservation CRUD, preview, and window alerts

PURPOSE:
  Reservation lifecycle endpoints plus the two derived views built on them:
  the pre-booking impact preview (before/after availability, nightly
  breakdown, banking warning, booking windows) and the upcoming
  booking-window alert feed.

SEE ALSO:
  - engine/impact.go: the impact and banking-warning calculations
  - engine/window.go: the 11-month/7-month window arithmetic
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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/dvc-dashboard/engine"
	"github.com/warp/dvc-dashboard/store/sqlite"
)

// maxWindowAlerts caps the upcoming-windows feed.
const maxWindowAlerts = 5

// newConfirmationNumber generates a short human-readable confirmation code.
func newConfirmationNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "DVC-" + strings.ToUpper(raw[:8])
}

func validStatus(s string) bool {
	switch engine.ReservationStatus(s) {
	case engine.StatusConfirmed, engine.StatusPending, engine.StatusCancelled:
		return true
	}
	return false
}

// validateStayDates parses and checks a check-in/check-out pair, collecting
// field errors.
func validateStayDates(checkIn, checkOut string) (engine.Date, engine.Date, []FieldError) {
	var fields []FieldError
	in, err := engine.ParseDate(checkIn)
	if err != nil {
		fields = append(fields, FieldError{Field: "check_in", Issue: "Invalid date format. Use ISO format (YYYY-MM-DD)."})
	}
	out, err := engine.ParseDate(checkOut)
	if err != nil {
		fields = append(fields, FieldError{Field: "check_out", Issue: "Invalid date format. Use ISO format (YYYY-MM-DD)."})
	}
	if len(fields) > 0 {
		return in, out, fields
	}
	if !out.After(in) {
		fields = append(fields, FieldError{Field: "check_out", Issue: "Check-out must be after check-in."})
	} else if engine.DaysBetween(in, out) > engine.MaxStayNights {
		fields = append(fields, FieldError{Field: "check_out", Issue: fmt.Sprintf("Maximum stay is %d nights.", engine.MaxStayNights)})
	}
	return in, out, fields
}

// =============================================================================
// RESERVATION CRUD
// =============================================================================

// ListReservations returns reservations with optional contract_id, status,
// and upcoming filters, ordered by check-in.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	filter := sqlite.ReservationFilter{
		ContractID: r.URL.Query().Get("contract_id"),
		Status:     r.URL.Query().Get("status"),
	}
	if upcoming, _ := strconv.ParseBool(r.URL.Query().Get("upcoming")); upcoming {
		today := engine.Today()
		filter.From = &today
	}

	records, err := h.Store.ListReservations(r.Context(), filter)
	if err != nil {
		writeServerError(w, "list reservations", err)
		return
	}

	out := make([]ReservationResponse, len(records))
	for i := range records {
		out[i] = reservationResponse(&records[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// ListContractReservations returns one contract's reservations.
func (h *Handler) ListContractReservations(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")
	if _, err := h.Store.GetContract(r.Context(), contractID); err != nil {
		if err == sqlite.ErrNotFound {
			writeNotFound(w, "Contract not found")
		} else {
			writeServerError(w, "get contract", err)
		}
		return
	}

	records, err := h.Store.ListReservations(r.Context(), sqlite.ReservationFilter{ContractID: contractID})
	if err != nil {
		writeServerError(w, "list reservations", err)
		return
	}

	out := make([]ReservationResponse, len(records))
	for i := range records {
		out[i] = reservationResponse(&records[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GetReservation returns a single reservation.
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetReservation(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Reservation not found")
		return
	}
	if err != nil {
		writeServerError(w, "get reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationResponse(record))
}

// CreateReservation creates a reservation for a contract, validating dates
// and resort eligibility.
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	checkIn, checkOut, fields := validateStayDates(req.CheckIn, req.CheckOut)
	if req.PointsCost < 0 {
		fields = append(fields, FieldError{Field: "points_cost", Issue: "Points cost cannot be negative"})
	}
	status := req.Status
	if status == "" {
		status = string(engine.StatusConfirmed)
	}
	if !validStatus(status) {
		fields = append(fields, FieldError{Field: "status", Issue: fmt.Sprintf("Unknown status '%s'", status)})
	}

	snap := contract.Snapshot()
	if !engine.ResortEligible(h.Resorts, snap.HomeResort, snap.PurchaseType, req.Resort) {
		eligible := engine.EligibleResorts(h.Resorts, snap.HomeResort, snap.PurchaseType)
		fields = append(fields, FieldError{Field: "resort", Issue: fmt.Sprintf(
			"Resort '%s' is not eligible for this %s contract at %s. Eligible resorts: %v",
			req.Resort, snap.PurchaseType, snap.HomeResort, eligible)})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	confirmation := req.ConfirmationNumber
	if confirmation == "" {
		confirmation = newConfirmationNumber()
	}

	now := time.Now().UTC()
	record := sqlite.ReservationRecord{
		ID:                 uuid.NewString(),
		ContractID:         contract.ID,
		Resort:             req.Resort,
		RoomKey:            req.RoomKey,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		PointsCost:         req.PointsCost,
		Status:             status,
		ConfirmationNumber: confirmation,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.Store.CreateReservation(r.Context(), record); err != nil {
		writeServerError(w, "create reservation", err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse(&record))
}

// UpdateReservation partially updates a reservation.
func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetReservation(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Reservation not found")
		return
	}
	if err != nil {
		writeServerError(w, "get reservation", err)
		return
	}

	var req UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	if req.Resort != nil {
		record.Resort = *req.Resort
	}
	if req.RoomKey != nil {
		record.RoomKey = *req.RoomKey
	}
	if req.PointsCost != nil {
		record.PointsCost = *req.PointsCost
	}
	if req.ConfirmationNumber != nil {
		record.ConfirmationNumber = *req.ConfirmationNumber
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			writeValidationError(w, FieldError{Field: "status", Issue: fmt.Sprintf("Unknown status '%s'", *req.Status)})
			return
		}
		record.Status = *req.Status
	}

	checkInStr := record.CheckIn.String()
	checkOutStr := record.CheckOut.String()
	if req.CheckIn != nil {
		checkInStr = *req.CheckIn
	}
	if req.CheckOut != nil {
		checkOutStr = *req.CheckOut
	}
	if req.CheckIn != nil || req.CheckOut != nil {
		checkIn, checkOut, fields := validateStayDates(checkInStr, checkOutStr)
		if len(fields) > 0 {
			writeValidationError(w, fields...)
			return
		}
		record.CheckIn = checkIn
		record.CheckOut = checkOut
	}

	if err := h.Store.UpdateReservation(r.Context(), *record); err != nil {
		writeServerError(w, "update reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationResponse(record))
}

// DeleteReservation removes a reservation.
func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteReservation(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Reservation not found")
		return
	}
	if err != nil {
		writeServerError(w, "delete reservation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PREVIEW
// =============================================================================

// PreviewReservation computes the impact of a proposed reservation without
// persisting anything.
func (h *Handler) PreviewReservation(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	checkIn, checkOut, fields := validateStayDates(req.CheckIn, req.CheckOut)
	if len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	contract, err := h.Store.GetContract(r.Context(), req.ContractID)
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	balanceRecords, err := h.Store.ListBalances(r.Context(), contract.ID)
	if err != nil {
		writeServerError(w, "list balances", err)
		return
	}
	reservationRecords, err := h.Store.ListReservations(r.Context(), sqlite.ReservationFilter{ContractID: contract.ID})
	if err != nil {
		writeServerError(w, "list reservations", err)
		return
	}

	balances := make([]engine.PointBalance, len(balanceRecords))
	for i, b := range balanceRecords {
		balances[i] = b.Snapshot()
	}
	reservations := make([]engine.Reservation, len(reservationRecords))
	for i, rr := range reservationRecords {
		reservations[i] = rr.Snapshot()
	}

	snap := contract.Snapshot()
	impact, err := engine.ComputeBookingImpact(h.Charts, snap, balances, reservations, req.Resort, req.RoomKey, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, engine.ErrChartUnavailable) {
			writeValidationMessage(w, "Point chart data not available for this resort/room/date range")
			return
		}
		writeServerError(w, "compute booking impact", err)
		return
	}

	warning := engine.ComputeBankingWarning(impact.Before, impact.StayCost.TotalPoints)
	windows := engine.ComputeBookingWindows(checkIn, snap.HomeResort == req.Resort, engine.Today())

	writeJSON(w, http.StatusOK, PreviewResponse{
		Before:           impact.Before,
		After:            impact.After,
		PointsDelta:      impact.PointsDelta,
		NightlyBreakdown: impact.StayCost.Nights,
		TotalPoints:      impact.StayCost.TotalPoints,
		NumNights:        impact.StayCost.NumNights,
		BookingWindows:   windows,
		BankingWarning:   warning,
	})
}

// =============================================================================
// UPCOMING WINDOW ALERTS
// =============================================================================

// UpcomingBookingWindows returns booking windows opening within the next N
// days for future reservations, soonest first, capped at 5.
func (h *Handler) UpcomingBookingWindows(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			writeValidationError(w, FieldError{Field: "days", Issue: "days must be an integer between 1 and 90"})
			return
		}
		days = parsed
	}

	today := engine.Today()

	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeServerError(w, "list contracts", err)
		return
	}
	contractsByID := make(map[string]sqlite.ContractRecord, len(contracts))
	for _, c := range contracts {
		contractsByID[c.ID] = c
	}

	reservations, err := h.Store.ListReservations(r.Context(), sqlite.ReservationFilter{From: &today})
	if err != nil {
		writeServerError(w, "list reservations", err)
		return
	}

	alerts := []WindowAlert{}
	for _, res := range reservations {
		if res.Status == string(engine.StatusCancelled) {
			continue
		}
		contract, ok := contractsByID[res.ContractID]
		if !ok {
			continue
		}

		isHome := contract.HomeResort == res.Resort
		windows := engine.ComputeBookingWindows(res.CheckIn, isHome, today)
		contractName := contract.Name
		if contractName == "" {
			contractName = contract.HomeResort
		}

		if isHome && !windows.HomeResortWindowOpen &&
			windows.DaysUntilHomeWindow > 0 && windows.DaysUntilHomeWindow <= days {
			alerts = append(alerts, WindowAlert{
				ContractName:  contractName,
				Resort:        res.Resort,
				ResortName:    h.Resorts.ResortName(res.Resort),
				CheckIn:       res.CheckIn.String(),
				WindowType:    "home_resort",
				WindowDate:    windows.HomeResortWindow,
				DaysUntilOpen: windows.DaysUntilHomeWindow,
			})
		}
		if !windows.AnyResortWindowOpen &&
			windows.DaysUntilAnyWindow > 0 && windows.DaysUntilAnyWindow <= days {
			alerts = append(alerts, WindowAlert{
				ContractName:  contractName,
				Resort:        res.Resort,
				ResortName:    h.Resorts.ResortName(res.Resort),
				CheckIn:       res.CheckIn.String(),
				WindowType:    "any_resort",
				WindowDate:    windows.AnyResortWindow,
				DaysUntilOpen: windows.DaysUntilAnyWindow,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilOpen < alerts[j].DaysUntilOpen
	})
	if len(alerts) > maxWindowAlerts {
		alerts = alerts[:maxWindowAlerts]
	}
	writeJSON(w, http.StatusOK, alerts)
}
