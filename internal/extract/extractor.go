package extract

import (
	"fmt"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Extractor is the contract every statement layout implements. Bank
// selection is explicit (the user picks from a list); ValidateFormat is a
// defensive check that rejects a mismatched file before parsing it.
//
// Variants of the same institution ("itau" and "itau2", "sicoob" through
// "sicoob3") are independent extractors: the bank emits structurally
// different PDFs across product lines and statement eras, and the layouts
// share no patterns worth unifying.
type Extractor interface {
	// BankID returns the registry identifier (e.g. "itau2").
	BankID() string
	// BankName returns the human-readable institution name.
	BankName() string
	// ValidateFormat reports whether the text plausibly belongs to this layout.
	ValidateFormat(text string) bool
	// Extract recovers the ordered transaction list from statement text.
	// It returns ErrNoTransactions (with a non-nil Statement) when the
	// statement is well formed but empty, and SectionNotFoundError or
	// FormatMismatchError for structural failures.
	Extract(text string) (*models.Statement, error)
	// Classify maps a transaction description to an OFX transaction type.
	// An empty result means the bank defines no description rules and the
	// serializer should fall back to the plain credit/debit mapping.
	Classify(description string) string
}

// BankInfo describes one registry entry.
type BankInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// New returns the extractor registered for the given bank id.
func New(bankID string) (Extractor, error) {
	switch bankID {
	case "sicoob":
		return newSicoobExtractor(), nil
	case "sicoob2":
		return &Sicoob2Extractor{}, nil
	case "sicoob3":
		return &Sicoob3Extractor{}, nil
	case "sicredi":
		return newSicrediExtractor(), nil
	case "sicredi2":
		return &Sicredi2Extractor{}, nil
	case "itau":
		return &ItauExtractor{}, nil
	case "itau2":
		return &Itau2Extractor{}, nil
	case "bb":
		return &BBExtractor{}, nil
	case "bb2":
		return &BB2Extractor{}, nil
	case "bradesco":
		return &BradescoExtractor{}, nil
	case "santander":
		return &SantanderExtractor{}, nil
	case "santander2":
		return &Santander2Extractor{}, nil
	case "santander3":
		return &Santander3Extractor{}, nil
	case "safra":
		return &SafraExtractor{}, nil
	case "safra2":
		return &Safra2Extractor{}, nil
	case "xp":
		return &XPExtractor{}, nil
	case "pagseguro":
		return &PagSeguroExtractor{}, nil
	case "stone":
		return &StoneExtractor{}, nil
	case "btg":
		return &BTGExtractor{}, nil
	case "nubank":
		return &NubankExtractor{}, nil
	case "sisprime":
		return &SisprimeExtractor{}, nil
	case "cora":
		return &CoraExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported bank id: %q", bankID)
	}
}

// Banks lists every registered extractor, in menu order.
func Banks() []BankInfo {
	ids := []string{
		"bb", "bb2", "bradesco", "btg", "cora", "itau", "itau2", "nubank",
		"pagseguro", "safra", "safra2", "santander", "santander2",
		"santander3", "sicoob", "sicoob2", "sicoob3", "sicredi", "sicredi2",
		"sisprime", "stone", "xp",
	}
	infos := make([]BankInfo, 0, len(ids))
	for _, id := range ids {
		e, err := New(id)
		if err != nil {
			continue
		}
		infos = append(infos, BankInfo{ID: e.BankID(), Name: e.BankName()})
	}
	return infos
}
