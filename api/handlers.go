/*
handlers.go - Contract, points, settings, and metadata handlers

PURPOSE:
  HTTP handlers for the CRUD surface: contracts (with enriched details),
  point balances (with banking/borrowing validation), use-year timelines,
  app settings, resort metadata, and the health check.

ARCHITECTURE:
  Handler holds all dependencies:
  - Store:   SQLite persistence
  - Charts:  embedded point chart library
  - Resorts: static resort catalog

REQUEST FLOW:
  1. Parse and validate input (all field errors collected at once)
  2. Load rows, convert to engine snapshots
  3. Call the pure engine
  4. Serialize response via the error envelope helpers

SEE ALSO:
  - reservations.go: reservation CRUD, preview, window alerts
  - analysis.go: availability, scenarios, trip explorer, point charts
  - errors.go: response envelope
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/dvc-dashboard/chart"
	"github.com/warp/dvc-dashboard/engine"
	"github.com/warp/dvc-dashboard/resorts"
	"github.com/warp/dvc-dashboard/store/sqlite"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// settingsSchema maps valid setting keys to their allowed values and default.
var settingsSchema = map[string]struct {
	Allowed []string
	Default string
}{
	"borrowing_limit_pct": {Allowed: []string{"50", "100"}, Default: "100"},
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Charts  *chart.Library
	Resorts resorts.Catalog
}

// NewHandler creates a handler over the given store and chart library.
func NewHandler(store *sqlite.Store, charts *chart.Library) *Handler {
	return &Handler{Store: store, Charts: charts}
}

// SeedDefaults writes default values for any missing settings.
func (h *Handler) SeedDefaults(ctx context.Context) error {
	for key, schema := range settingsSchema {
		if _, err := h.Store.GetSetting(ctx, key); err == sqlite.ErrNotFound {
			if err := h.Store.SetSetting(ctx, key, schema.Default); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// borrowingLimitPct reads the borrowing limit percentage, defaulting to 100.
func (h *Handler) borrowingLimitPct(ctx context.Context) int {
	value, err := h.Store.GetSetting(ctx, "borrowing_limit_pct")
	if err != nil {
		return 100
	}
	pct, err := strconv.Atoi(value)
	if err != nil {
		return 100
	}
	return pct
}

// maxBorrowable computes the borrowing cap: pct% of the annual allocation,
// truncated to whole points.
func maxBorrowable(annualPoints, pct int) int {
	limit := decimal.NewFromInt(int64(annualPoints)).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100))
	return int(limit.IntPart())
}

// loadPortfolio loads every contract, balance, and non-cancelled reservation
// as engine snapshots.
func (h *Handler) loadPortfolio(ctx context.Context) ([]engine.Contract, []engine.PointBalance, []engine.Reservation, error) {
	contractRecords, err := h.Store.ListContracts(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	balanceRecords, err := h.Store.ListBalances(ctx, "")
	if err != nil {
		return nil, nil, nil, err
	}
	reservationRecords, err := h.Store.ListActiveReservations(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	contracts := make([]engine.Contract, len(contractRecords))
	for i, c := range contractRecords {
		contracts[i] = c.Snapshot()
	}
	balances := make([]engine.PointBalance, len(balanceRecords))
	for i, b := range balanceRecords {
		balances[i] = b.Snapshot()
	}
	reservations := make([]engine.Reservation, len(reservationRecords))
	for i, r := range reservationRecords {
		reservations[i] = r.Snapshot()
	}
	return contracts, balances, reservations, nil
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

func (h *Handler) contractDetail(ctx context.Context, c *sqlite.ContractRecord) (ContractDetailResponse, error) {
	balances, err := h.Store.ListBalances(ctx, c.ID)
	if err != nil {
		return ContractDetailResponse{}, err
	}

	balanceDTOs := make([]PointBalanceResponse, len(balances))
	for i := range balances {
		balanceDTOs[i] = balanceResponse(&balances[i])
	}

	snap := c.Snapshot()
	today := engine.Today()
	currentUY := engine.CurrentUseYear(snap.UseYearMonth, today)

	return ContractDetailResponse{
		ContractResponse: contractResponse(c),
		PointBalances:    balanceDTOs,
		EligibleResorts:  engine.EligibleResorts(h.Resorts, snap.HomeResort, snap.PurchaseType),
		UseYearTimeline:  engine.BuildTimeline(snap.UseYearMonth, currentUY, today),
	}, nil
}

// ListContracts returns all contracts with balances, eligibility, and
// timeline.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeServerError(w, "list contracts", err)
		return
	}

	out := make([]ContractDetailResponse, 0, len(records))
	for i := range records {
		detail, err := h.contractDetail(r.Context(), &records[i])
		if err != nil {
			writeServerError(w, "enrich contract", err)
			return
		}
		out = append(out, detail)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetContract returns a single contract with full details.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	detail, err := h.contractDetail(r.Context(), record)
	if err != nil {
		writeServerError(w, "enrich contract", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) validateContractFields(homeResort string, useYearMonth, annualPoints int, purchaseType string) []FieldError {
	var fields []FieldError
	if _, ok := h.Resorts.BySlug(homeResort); !ok {
		fields = append(fields, FieldError{Field: "home_resort", Issue: fmt.Sprintf("Unknown resort '%s'", homeResort)})
	}
	if !engine.ValidUseYearMonth(time.Month(useYearMonth)) {
		fields = append(fields, FieldError{Field: "use_year_month", Issue: fmt.Sprintf("Month %d is not a valid use-year month (valid: 2, 3, 4, 6, 8, 9, 10, 12)", useYearMonth)})
	}
	if annualPoints <= 0 {
		fields = append(fields, FieldError{Field: "annual_points", Issue: "Annual points must be positive"})
	}
	if purchaseType != string(engine.PurchaseDirect) && purchaseType != string(engine.PurchaseResale) {
		fields = append(fields, FieldError{Field: "purchase_type", Issue: "Purchase type must be 'direct' or 'resale'"})
	}
	return fields
}

// CreateContract creates a new contract.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	if fields := h.validateContractFields(req.HomeResort, req.UseYearMonth, req.AnnualPoints, req.PurchaseType); len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	now := time.Now().UTC()
	record := sqlite.ContractRecord{
		ID:           uuid.NewString(),
		Name:         req.Name,
		HomeResort:   req.HomeResort,
		UseYearMonth: req.UseYearMonth,
		AnnualPoints: req.AnnualPoints,
		PurchaseType: req.PurchaseType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Store.CreateContract(r.Context(), record); err != nil {
		writeServerError(w, "create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, contractResponse(&record))
}

// UpdateContract partially updates a contract.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	var req UpdateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	if req.Name != nil {
		record.Name = *req.Name
	}
	if req.HomeResort != nil {
		record.HomeResort = *req.HomeResort
	}
	if req.UseYearMonth != nil {
		record.UseYearMonth = *req.UseYearMonth
	}
	if req.AnnualPoints != nil {
		record.AnnualPoints = *req.AnnualPoints
	}
	if req.PurchaseType != nil {
		record.PurchaseType = *req.PurchaseType
	}

	if fields := h.validateContractFields(record.HomeResort, record.UseYearMonth, record.AnnualPoints, record.PurchaseType); len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	if err := h.Store.UpdateContract(r.Context(), *record); err != nil {
		writeServerError(w, "update contract", err)
		return
	}
	writeJSON(w, http.StatusOK, contractResponse(record))
}

// DeleteContract removes a contract; balances and reservations cascade.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "delete contract", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// POINT BALANCE HANDLERS
// =============================================================================

// GetContractPoints returns a contract's balances grouped by use year.
func (h *Handler) GetContractPoints(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	balances, err := h.Store.ListBalances(r.Context(), contract.ID)
	if err != nil {
		writeServerError(w, "list balances", err)
		return
	}

	byYear := make(map[string]*YearBalances)
	grandTotal := 0
	for _, b := range balances {
		key := strconv.Itoa(b.UseYear)
		year, ok := byYear[key]
		if !ok {
			year = &YearBalances{}
			byYear[key] = year
		}
		switch engine.AllocationType(b.AllocationType) {
		case engine.AllocationCurrent:
			year.Current = b.Points
		case engine.AllocationBanked:
			year.Banked = b.Points
		case engine.AllocationBorrowed:
			year.Borrowed = b.Points
		case engine.AllocationHolding:
			year.Holding = b.Points
		}
		year.Total = year.Current + year.Banked + year.Borrowed + year.Holding
		grandTotal += b.Points
	}

	writeJSON(w, http.StatusOK, ContractPointsResponse{
		ContractID:     contract.ID,
		ContractName:   contract.Name,
		AnnualPoints:   contract.AnnualPoints,
		BalancesByYear: byYear,
		GrandTotal:     grandTotal,
	})
}

// CreateBalance adds a point balance row to a contract.
func (h *Handler) CreateBalance(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	var req CreateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	var fields []FieldError
	if !engine.ValidAllocationType(req.AllocationType) {
		fields = append(fields, FieldError{Field: "allocation_type", Issue: fmt.Sprintf("Unknown allocation type '%s'", req.AllocationType)})
	}
	if req.Points < 0 {
		fields = append(fields, FieldError{Field: "points", Issue: "Points cannot be negative"})
	}
	if req.AllocationType == string(engine.AllocationBanked) && req.Points > contract.AnnualPoints {
		fields = append(fields, FieldError{Field: "points", Issue: fmt.Sprintf(
			"Banked points (%d) cannot exceed annual points (%d)", req.Points, contract.AnnualPoints)})
	}
	if req.AllocationType == string(engine.AllocationBorrowed) {
		pct := h.borrowingLimitPct(r.Context())
		if limit := maxBorrowable(contract.AnnualPoints, pct); req.Points > limit {
			fields = append(fields, FieldError{Field: "points", Issue: fmt.Sprintf(
				"Borrowed points (%d) exceed borrowing limit (%d%% of %d = %d points)",
				req.Points, pct, contract.AnnualPoints, limit)})
		}
	}
	if len(fields) > 0 {
		writeValidationError(w, fields...)
		return
	}

	record := sqlite.PointBalanceRecord{
		ID:             uuid.NewString(),
		ContractID:     contract.ID,
		UseYear:        req.UseYear,
		AllocationType: req.AllocationType,
		Points:         req.Points,
		UpdatedAt:      time.Now().UTC(),
	}
	err = h.Store.CreateBalance(r.Context(), record)
	if err == sqlite.ErrDuplicateBalance {
		writeConflict(w, fmt.Sprintf(
			"Point balance already exists for contract %s, use year %d, type '%s'. Use PUT to update it.",
			contract.ID, req.UseYear, req.AllocationType))
		return
	}
	if err != nil {
		writeServerError(w, "create balance", err)
		return
	}
	writeJSON(w, http.StatusCreated, balanceResponse(&record))
}

// UpdateBalance sets the point count of a balance row.
func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Store.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Point balance not found")
		return
	}
	if err != nil {
		writeServerError(w, "get balance", err)
		return
	}

	var req UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}
	if req.Points < 0 {
		writeValidationError(w, FieldError{Field: "points", Issue: "Points cannot be negative"})
		return
	}

	if balance.AllocationType == string(engine.AllocationBorrowed) {
		contract, err := h.Store.GetContract(r.Context(), balance.ContractID)
		if err == nil {
			pct := h.borrowingLimitPct(r.Context())
			if limit := maxBorrowable(contract.AnnualPoints, pct); req.Points > limit {
				writeValidationError(w, FieldError{Field: "points", Issue: fmt.Sprintf(
					"Borrowed points (%d) exceed borrowing limit (%d%% of %d = %d points)",
					req.Points, pct, contract.AnnualPoints, limit)})
				return
			}
		}
	}

	if err := h.Store.UpdateBalancePoints(r.Context(), balance.ID, req.Points); err != nil {
		writeServerError(w, "update balance", err)
		return
	}
	balance.Points = req.Points
	writeJSON(w, http.StatusOK, balanceResponse(balance))
}

// DeleteBalance removes a balance row.
func (h *Handler) DeleteBalance(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteBalance(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Point balance not found")
		return
	}
	if err != nil {
		writeServerError(w, "delete balance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIMELINE HANDLER
// =============================================================================

// GetContractTimeline returns the current and next use-year timelines.
func (h *Handler) GetContractTimeline(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err == sqlite.ErrNotFound {
		writeNotFound(w, "Contract not found")
		return
	}
	if err != nil {
		writeServerError(w, "get contract", err)
		return
	}

	month := time.Month(contract.UseYearMonth)
	today := engine.Today()
	currentUY := engine.CurrentUseYear(month, today)

	writeJSON(w, http.StatusOK, TimelineResponse{
		ContractID:   contract.ID,
		UseYearMonth: contract.UseYearMonth,
		Timelines: []engine.UseYearTimeline{
			engine.BuildTimeline(month, currentUY, today),
			engine.BuildTimeline(month, currentUY+1, today),
		},
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// ListSettings returns all app settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.ListSettings(r.Context())
	if err != nil {
		writeServerError(w, "list settings", err)
		return
	}
	out := make([]AppSettingResponse, len(settings))
	for i, s := range settings {
		out[i] = AppSettingResponse{Key: s.Key, Value: s.Value}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSetting returns one setting by key.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.Store.GetSetting(r.Context(), key)
	if err == sqlite.ErrNotFound {
		writeNotFound(w, fmt.Sprintf("Setting '%s' not found", key))
		return
	}
	if err != nil {
		writeServerError(w, "get setting", err)
		return
	}
	writeJSON(w, http.StatusOK, AppSettingResponse{Key: key, Value: value})
}

// UpdateSetting sets a setting value. Only known keys with allowed values
// are accepted.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	schema, ok := settingsSchema[key]
	if !ok {
		writeNotFound(w, fmt.Sprintf("Unknown setting '%s'", key))
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationMessage(w, "Invalid request body")
		return
	}

	allowed := false
	for _, v := range schema.Allowed {
		if req.Value == v {
			allowed = true
			break
		}
	}
	if !allowed {
		writeValidationError(w, FieldError{Field: "value", Issue: fmt.Sprintf(
			"Invalid value '%s' for '%s'. Allowed: %v", req.Value, key, schema.Allowed)})
		return
	}

	if err := h.Store.SetSetting(r.Context(), key, req.Value); err != nil {
		writeServerError(w, "update setting", err)
		return
	}
	writeJSON(w, http.StatusOK, AppSettingResponse{Key: key, Value: req.Value})
}

// =============================================================================
// METADATA HANDLERS
// =============================================================================

// ListResorts returns all resort metadata.
func (h *Handler) ListResorts(w http.ResponseWriter, r *http.Request) {
	all := h.Resorts.Resorts()
	sort.Slice(all, func(i, j int) bool { return all[i].Slug < all[j].Slug })
	writeJSON(w, http.StatusOK, all)
}

// Health is the health check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}
