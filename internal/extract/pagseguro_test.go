package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestPagSeguroExtract(t *testing.T) {
	text := "PagBank PagSeguro Extrato Descrição Data Valor " +
		"02/03/2024 PIX RECEBIDO JOAO R$150,00 " +
		"03/03/2024 PAGAMENTO DE CONTA -R$10,00 " +
		"04/03/2024 Saldo do dia R$140,00"

	e := &PagSeguroExtractor{}
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
	if first.Date != "2024-03-02" || first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Date != "2024-03-03" || second.Value != 10.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	if first.Balance != 150.00 || second.Balance != 140.00 {
		t.Errorf("balances = %v, %v", first.Balance, second.Balance)
	}

	if got := e.Classify("PIX RECEBIDO JOAO"); got != "XFER" {
		t.Errorf("Classify = %q, want XFER", got)
	}
	if got := e.Classify("PAGAMENTO DE CONTA DE LUZ"); got != "PAYMENT" {
		t.Errorf("Classify = %q, want PAYMENT", got)
	}
}

func TestPagSeguroNoTransactions(t *testing.T) {
	e := &PagSeguroExtractor{}
	st, err := e.Extract("PagBank Extrato Descrição Data Valor")
	if err != ErrNoTransactions {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
	if st == nil {
		t.Fatal("statement must be returned alongside ErrNoTransactions")
	}
}
