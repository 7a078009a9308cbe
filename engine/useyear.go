/*
useyear.go - Use-year calendar arithmetic

PURPOSE:
  Maps calendar dates to DVC use years. A use year starts on the 1st of a
  contract's anniversary month and runs for twelve months; unused points may
  be banked into the next use year until 8 months in (the banking deadline).

KEY INSIGHT:
  Use years always start on day 1, so resolving "which use year is active on
  date d" only compares month numbers: if d.month >= anniversary month, the
  use year began this calendar year, otherwise it began last year.

SEE ALSO:
  - availability.go: scopes balances and reservations to the resolved use year
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// USE-YEAR MONTHS
// =============================================================================

// UseYearMonths are the anniversary months DVC actually sells.
// The other eight months are never used.
var UseYearMonths = []time.Month{
	time.February, time.March, time.April, time.June,
	time.August, time.September, time.October, time.December,
}

// ValidUseYearMonth reports whether m is a DVC use-year month.
func ValidUseYearMonth(m time.Month) bool {
	for _, valid := range UseYearMonths {
		if m == valid {
			return true
		}
	}
	return false
}

// =============================================================================
// USE-YEAR BOUNDARIES
// =============================================================================

// UseYearStart returns the first day of a use year: the 1st of the
// anniversary month in the given calendar year.
func UseYearStart(useYearMonth time.Month, useYear int) Date {
	return NewDate(useYear, useYearMonth, 1)
}

// UseYearEnd returns the last day of a use year, one day before the next
// use year starts.
func UseYearEnd(useYearMonth time.Month, useYear int) Date {
	return UseYearStart(useYearMonth, useYear+1).AddDays(-1)
}

// BankingDeadline returns the last day points can be banked: the end of the
// 8th month of the use year.
func BankingDeadline(useYearMonth time.Month, useYear int) Date {
	start := UseYearStart(useYearMonth, useYear)
	// Start is always day 1, so adding months never overflows.
	return NewDate(start.Year(), start.Month()+8, 1).AddDays(-1)
}

// CurrentUseYear resolves which use year is active on asOf. Day-of-month is
// irrelevant since use years start on day 1.
func CurrentUseYear(useYearMonth time.Month, asOf Date) int {
	if asOf.Month() >= useYearMonth {
		return asOf.Year()
	}
	return asOf.Year() - 1
}

// =============================================================================
// STATUS & TIMELINE
// =============================================================================

// UseYearStatus classifies a use year relative to a reference date.
type UseYearStatus string

const (
	UseYearUpcoming UseYearStatus = "upcoming"
	UseYearActive   UseYearStatus = "active"
	UseYearExpired  UseYearStatus = "expired"
)

// StatusOfUseYear returns expired/active/upcoming for a use year as of asOf.
func StatusOfUseYear(useYearMonth time.Month, useYear int, asOf Date) UseYearStatus {
	if asOf.After(UseYearEnd(useYearMonth, useYear)) {
		return UseYearExpired
	}
	if asOf.AfterOrEqual(UseYearStart(useYearMonth, useYear)) {
		return UseYearActive
	}
	return UseYearUpcoming
}

// UseYearTimeline bundles the key dates of one use year, evaluated against a
// reference date. Day counts are signed: negative means already passed, zero
// means today (the banking deadline counts as not-yet-passed on the day
// itself).
type UseYearTimeline struct {
	UseYear                  int           `json:"use_year"`
	Label                    string        `json:"label"`
	Start                    Date          `json:"start"`
	End                      Date          `json:"end"`
	BankingDeadline          Date          `json:"banking_deadline"`
	BankingDeadlinePassed    bool          `json:"banking_deadline_passed"`
	DaysUntilBankingDeadline int           `json:"days_until_banking_deadline"`
	PointExpiration          Date          `json:"point_expiration"`
	DaysUntilExpiration      int           `json:"days_until_expiration"`
	Status                   UseYearStatus `json:"status"`
}

// BuildTimeline constructs the timeline for one use year as of asOf.
func BuildTimeline(useYearMonth time.Month, useYear int, asOf Date) UseYearTimeline {
	start := UseYearStart(useYearMonth, useYear)
	end := UseYearEnd(useYearMonth, useYear)
	deadline := BankingDeadline(useYearMonth, useYear)

	return UseYearTimeline{
		UseYear:                  useYear,
		Label:                    fmt.Sprintf("%d Use Year", useYear),
		Start:                    start,
		End:                      end,
		BankingDeadline:          deadline,
		BankingDeadlinePassed:    asOf.After(deadline),
		DaysUntilBankingDeadline: DaysBetween(asOf, deadline),
		PointExpiration:          end,
		DaysUntilExpiration:      DaysBetween(asOf, end),
		Status:                   StatusOfUseYear(useYearMonth, useYear, asOf),
	}
}
