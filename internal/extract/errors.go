package extract

import (
	"errors"
	"fmt"
)

// ErrNoTransactions signals a structurally valid statement from which zero
// rows were recovered. Callers should surface it as a warning, not a hard
// failure: the statement period may simply have had no activity.
var ErrNoTransactions = errors.New("no transactions found in statement")

// FormatMismatchError is returned when the statement text does not look like
// the layout the selected extractor handles. Recoverable by the user
// (re-select the correct bank or re-upload the right file).
type FormatMismatchError struct {
	Bank   string
	Reason string
}

func (e *FormatMismatchError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("statement does not match the %s layout", e.Bank)
	}
	return fmt.Sprintf("statement does not match the %s layout: %s", e.Bank, e.Reason)
}

// SectionNotFoundError is returned when a required structural anchor (period
// header, movements table) is absent. The statement is likely a different
// layout version of the same bank; extraction aborts for the file.
type SectionNotFoundError struct {
	Bank    string
	Section string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("%s: required section %q not found", e.Bank, e.Section)
}

// IsFormatMismatch reports whether err is a layout/format rejection.
func IsFormatMismatch(err error) bool {
	var fm *FormatMismatchError
	return errors.As(err, &fm)
}

// IsSectionNotFound reports whether err is a missing-anchor failure.
func IsSectionNotFound(err error) bool {
	var sn *SectionNotFoundError
	return errors.As(err, &sn)
}
