package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestStoneExtract(t *testing.T) {
	text := "Stone Instituição de Pagamento Extrato " +
		"06/03/24 Saída TARIFA MANUTENCAO R$10,00 R$140,00 " +
		"05/03/24 Entrada PIX RECEBIDO JOAO R$150,00 R$150,00"

	e := &StoneExtractor{}
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

	// output is oldest first even though the statement prints newest first
	first := st.Transactions[0]
	if first.Date != "2024-03-05" || first.Type != models.Credit || first.Value != 150.00 {
		t.Errorf("first = %+v", first)
	}
	if first.Balance != 150.00 {
		t.Errorf("balance from statement column = %v", first.Balance)
	}
	second := st.Transactions[1]
	if second.Date != "2024-03-06" || second.Type != models.Debit || second.Value != 10.00 {
		t.Errorf("second = %+v", second)
	}

	if got := e.Classify("TARIFA MANUTENCAO"); got != "SRVCHG" {
		t.Errorf("Classify = %q, want SRVCHG", got)
	}
}
