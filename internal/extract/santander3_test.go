package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestSantander3Extract(t *testing.T) {
	text := "Santander Extrato " +
		"05/03/2024 PIX RECEBIDO JOAO R$150,00 " +
		"06/03/2024 TARIFA MENSALIDADE -R$10,00 " +
		"06/03/2024 SALDO DO DIA R$140,00"

	e := &Santander3Extractor{}
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
	if first.Date != "2024-03-05" || first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Date != "2024-03-06" || second.Value != 10.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	if first.Balance != 150.00 || second.Balance != 140.00 {
		t.Errorf("balances = %v, %v", first.Balance, second.Balance)
	}

	excluded := false
	for _, ev := range st.Trace {
		if ev.Reason == "balance marker" {
			excluded = true
		}
	}
	if !excluded {
		t.Error("expected the saldo row to be excluded with a trace event")
	}

	if got := e.Classify("PIX RECEBIDO JOAO"); got != "DEP" {
		t.Errorf("Classify = %q, want DEP", got)
	}
	if got := e.Classify("TARIFA MENSALIDADE"); got != "FEE" {
		t.Errorf("Classify = %q, want FEE", got)
	}
}
