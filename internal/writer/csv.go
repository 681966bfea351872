package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// CSVWriter writes a statement to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes a statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, st *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, st)
}

// Write writes a statement in CSV format to the given writer. Amounts carry
// the sign implied by the transaction direction so the column sums to the
// period's net movement.
func (w *CSVWriter) Write(out io.Writer, st *models.Statement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	// Write metadata as comments (CSV header rows)
	if w.IncludeHeader {
		if st.BankName != "" {
			writer.Write([]string{"# Bank", st.BankName})
		}
		if st.Period != "" {
			writer.Write([]string{"# Statement Period", st.Period})
		}
	}

	// Write column headers
	header := []string{"Date", "Description", "Type", "Amount", "Balance"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write transaction rows
	for _, txn := range st.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			txn.Type,
			formatAmount(txn.SignedValue()),
			formatAmount(txn.Balance),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
