package domain

import "errors"

// ErrNoRecord is returned when a lookup or correction targets a player or
// record that has no history.
var ErrNoRecord = errors.New("no record found")

// ValidationError is a caller mistake with a stable code the front end maps
// to localized text.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}

func NewValidationError(code string) *ValidationError {
	return &ValidationError{Code: code}
}

// Validation codes shared with the localization files.
const (
	CodeInvalidDate     = "invaliddate"
	CodeInvalidDay      = "invalidday"
	CodeInvalidWeek     = "53weeks"
	CodeInvalidNumber   = "invalidnumber"
	CodeInvalidInput    = "invalidinput"
	CodeInvalidCategory = "invalidcategoryname"
)
