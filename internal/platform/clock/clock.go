// Copyright (c) 2026 Bookworm. All rights reserved.
// Author: dev@bookwormhq.dev

// Package clock abstracts "today" for loan-period rule evaluation.
//
// # Why not time.Now?
//
// Loan periods validate against the current date (a loan may not start in
// the past, overdue is "today past the due date"). Reading the system clock
// inside those rules would make them non-deterministic in tests, so the
// domain layer only ever receives dates through this capability.
package clock

import "time"

// Clock supplies the current date to date-sensitive domain rules.
type Clock interface {
	// Today returns the current date truncated to midnight UTC.
	Today() time.Time
}

// System is the production [Clock] backed by the OS clock.
type System struct{}

// Today returns the current UTC date at midnight.
func (System) Today() time.Time {
	return Date(time.Now().UTC())
}

// Fixed is a deterministic [Clock] pinned to a single date, for tests and
// replayable batch jobs.
type Fixed struct {
	Day time.Time
}

// Today returns the pinned date.
func (f Fixed) Today() time.Time {
	return Date(f.Day)
}

// Date truncates an arbitrary instant to its UTC calendar date.
func Date(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
