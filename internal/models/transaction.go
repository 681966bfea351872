package models

// Transaction types. Value is always non-negative; the direction of the
// movement is carried exclusively by Type.
const (
	Credit = "credit"
	Debit  = "debit"
)

// Transaction represents a single statement movement.
type Transaction struct {
	Date        string  `json:"date"` // ISO YYYY-MM-DD
	Description string  `json:"description"`
	Value       float64 `json:"value"` // magnitude, >= 0
	Type        string  `json:"type"`  // credit or debit
	Balance     float64 `json:"balance"`
	Document    string  `json:"document,omitempty"` // bank-internal reference, when exposed
}

// SignedValue returns the value with the sign implied by Type.
func (t Transaction) SignedValue() float64 {
	if t.Type == Debit {
		return -t.Value
	}
	return t.Value
}

// TraceEvent records what an extractor did with one row of input text.
// One event is emitted per skipped, recovered, or excluded row so that
// extraction behavior can be asserted against captured events instead of
// console output.
type TraceEvent struct {
	Row    string `json:"row"`
	Action string `json:"action"` // "skipped", "recovered", "excluded"
	Reason string `json:"reason"`
}

// Statement is the result of running one extractor over one statement's text.
type Statement struct {
	BankID       string        `json:"bankId"`
	BankName     string        `json:"bankName"`
	Period       string        `json:"period,omitempty"` // as printed in the statement header
	Transactions []Transaction `json:"transactions"`
	Trace        []TraceEvent  `json:"trace,omitempty"`

	// Degraded is set when the movements section could not be located by its
	// anchor and extraction fell back to scanning the whole document.
	Degraded bool `json:"degraded,omitempty"`
}
