package domain

import "errors"

var (
	// ErrSettingsNotFound is returned when no tax setting exists for the requested year.
	ErrSettingsNotFound = errors.New("tax settings not found")
	// ErrInvalidMethod is returned for an expense method other than lump_sum or actual.
	ErrInvalidMethod = errors.New("invalid expense method")
	// ErrInvalidDeduction is returned when a special deduction carries a negative amount.
	ErrInvalidDeduction = errors.New("invalid deduction")
	ErrInvalidSettings  = errors.New("invalid tax settings")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidStatus    = errors.New("invalid declaration status")
	ErrNotFound         = errors.New("not found")
)
