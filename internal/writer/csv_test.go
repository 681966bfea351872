package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestCSVWriter_Write(t *testing.T) {
	st := &models.Statement{
		BankID:   "sicoob",
		BankName: "Sicoob",
		Period:   "01/03/2024 a 31/03/2024",
		Transactions: []models.Transaction{
			{Date: "2024-03-01", Description: "PIX RECEBIDO JOAO", Type: models.Credit, Value: 150.00, Balance: 150.00},
			{Date: "2024-03-02", Description: "TARIFA MENSAL", Type: models.Debit, Value: 10.00, Balance: 140.00},
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	err := w.Write(&buf, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	// Check metadata headers
	if !strings.Contains(output, "# Bank") {
		t.Error("expected bank metadata header")
	}
	if !strings.Contains(output, "# Statement Period") {
		t.Error("expected statement period metadata")
	}

	// Check column headers
	if !strings.Contains(output, "Date,Description,Type,Amount,Balance") {
		t.Error("expected column headers")
	}

	// Check transaction data
	if !strings.Contains(output, "2024-03-01") {
		t.Error("expected first transaction date")
	}
	if !strings.Contains(output, "PIX RECEBIDO JOAO") {
		t.Error("expected first transaction description")
	}
	if !strings.Contains(output, "150.00") {
		t.Error("expected first transaction amount")
	}
	// debits are written signed
	if !strings.Contains(output, "-10.00") {
		t.Error("expected signed debit amount")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 2 metadata lines + 1 header + 2 transactions = 5
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteWithoutHeader(t *testing.T) {
	st := &models.Statement{
		BankName: "Nubank",
		Transactions: []models.Transaction{
			{Date: "2024-03-01", Description: "COMPRA MERCADO", Type: models.Debit, Value: 42.50, Balance: 57.50},
		},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Bank") {
		t.Error("did not expect metadata header")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 1 header + 1 transaction
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(lines))
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, ""},
		{150, "150.00"},
		{-10.5, "-10.50"},
		{0.009, "0.01"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
