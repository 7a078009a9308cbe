/*
window.go - Booking window calculation

PURPOSE:
  Computes when DVC booking windows open for a check-in date: 11 months
  prior at the home resort, 7 months prior anywhere.

THE DVC DAY-CLIPPING RULE:
  The window opens on the same day-of-month, N months earlier. When that day
  does not exist in the target month (e.g. the 30th going back into
  February), DVC rolls FORWARD to the 1st of the following month, not
  backward to the target month's last day. Sep 30 minus 7 months is Mar 1,
  not Feb 28. This is the published rule and the opposite of what naive
  calendar subtraction gives.
*/
package engine

import "time"

// SubtractMonths subtracts n calendar months from d using the DVC rule:
// keep the day-of-month when it exists in the target month, otherwise roll
// forward to the 1st of the month after the target month.
func SubtractMonths(d Date, n int) Date {
	year, month := d.Year(), int(d.Month())-n
	for month < 1 {
		month += 12
		year--
	}

	target := time.Month(month)
	if d.Day() > DaysInMonth(year, target) {
		// Day doesn't exist in the target month; window opens on the 1st
		// of the next month.
		return NewDate(year, target+1, 1)
	}
	return NewDate(year, target, d.Day())
}

// BookingWindows describes the 11-month and 7-month window open dates for
// one check-in date, evaluated against a reference "today". Day counts are
// signed: negative means the window is already open.
type BookingWindows struct {
	HomeResortWindow     Date `json:"home_resort_window"`
	HomeResortWindowOpen bool `json:"home_resort_window_open"`
	DaysUntilHomeWindow  int  `json:"days_until_home_window"`
	AnyResortWindow      Date `json:"any_resort_window"`
	AnyResortWindowOpen  bool `json:"any_resort_window_open"`
	DaysUntilAnyWindow   int  `json:"days_until_any_window"`
	IsHomeResort         bool `json:"is_home_resort"`
}

// ComputeBookingWindows computes both windows for checkIn as of today.
// isHomeResort is passed through unchanged for the caller's convenience.
func ComputeBookingWindows(checkIn Date, isHomeResort bool, today Date) BookingWindows {
	home := SubtractMonths(checkIn, 11)
	any := SubtractMonths(checkIn, 7)

	return BookingWindows{
		HomeResortWindow:     home,
		HomeResortWindowOpen: today.AfterOrEqual(home),
		DaysUntilHomeWindow:  DaysBetween(today, home),
		AnyResortWindow:      any,
		AnyResortWindowOpen:  today.AfterOrEqual(any),
		DaysUntilAnyWindow:   DaysBetween(today, any),
		IsHomeResort:         isHomeResort,
	}
}
