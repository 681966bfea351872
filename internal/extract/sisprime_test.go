package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestSisprimeExtract(t *testing.T) {
	text := "Sisprime Extrato de Conta " +
		"05/03/2024 123456 Crédito PIX Recebido R$ 150,00 R$ 150,00 " +
		"06/03/2024 654321 Tarifa Manutencao R$ 140,00 R$ 10,00"

	e := &SisprimeExtractor{}
	if !e.ValidateFormat(text) {
		t.Fatal("expected format to validate")
	}

	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Date != "2024-03-05" || first.Document != "123456" ||
		first.Description != "Crédito PIX Recebido" || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	// balance column comes before the movement value
	if first.Balance != 150.00 || first.Value != 150.00 {
		t.Errorf("first amounts = %+v", first)
	}
	second := st.Transactions[1]
	if second.Document != "654321" || second.Type != models.Debit ||
		second.Balance != 140.00 || second.Value != 10.00 {
		t.Errorf("second = %+v", second)
	}

	if got := e.Classify("Crédito PIX Recebido"); got != "PIX" {
		t.Errorf("Classify = %q, want PIX", got)
	}
	if got := e.Classify("Tarifa Manutencao"); got != "SRVCHG" {
		t.Errorf("Classify = %q, want SRVCHG", got)
	}
}

func TestSisprimeSkipsHeaderRows(t *testing.T) {
	text := "Sisprime Extrato de Conta " +
		"01/03/2024 Saldo Anterior R$ 100,00 " +
		"05/03/2024 123456 Débito Tarifa R$ 90,00 R$ 10,00"

	e := &SisprimeExtractor{}
	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(st.Transactions))
	}
	if st.Transactions[0].Description != "Débito Tarifa" {
		t.Errorf("got %+v", st.Transactions[0])
	}
}
