package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestCoraExtract(t *testing.T) {
	text := "Cora SCFI Extrato do período 01/03/2024 a 31/03/2024 " +
		"Total de entradas + R$ 150,00 " +
		"Total de saídas - R$ 10,00 " +
		"01/03/2024 Saldo do dia R$ 140,00 " +
		"+ R$ 150,00 Pix recebido Joao Silva " +
		"- R$ 10,00 Tarifa de manutenção"

	e := &CoraExtractor{}
	if !e.ValidateFormat(text) {
		t.Fatal("expected format to validate")
	}

	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Period != "01/03/2024 a 31/03/2024" {
		t.Errorf("period = %q", st.Period)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Date != "2024-03-01" || first.Description != "Pix recebido Joao Silva" ||
		first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Description != "Tarifa de manutenção" || second.Value != 10.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	// every movement of the day carries that day's published balance
	if first.Balance != 140.00 || second.Balance != 140.00 {
		t.Errorf("balances = %v, %v", first.Balance, second.Balance)
	}

	// printed totals match the extraction, so no mismatch is recorded
	for _, ev := range st.Trace {
		t.Errorf("unexpected trace event: %+v", ev)
	}
}

func TestCoraMissingDailyBlocks(t *testing.T) {
	e := &CoraExtractor{}
	_, err := e.Extract("Cora SCFI Extrato do período 01/03/2024 a 31/03/2024")
	if !IsSectionNotFound(err) {
		t.Fatalf("expected section error, got %v", err)
	}
}
