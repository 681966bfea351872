package extract

import (
	"strings"
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestItauExtractStrictRows(t *testing.T) {
	text := "Itaú Extrato Conta Corrente Agência 1234 CNPJ 11.111.111/0001-11 " +
		"Lançamentos do período: 01/03/2024 até 31/03/2024 " +
		"SALDO ANTERIOR 1.000,00 " +
		"02/03/2024 PIX RECEBIDO JOAO 12.345.678/0001-90 150,00 " +
		"03/03/2024 PAGAMENTO FORNECEDOR 98.765.432/0001-10 50,00 " +
		"Lançamentos futuros 04/03/2024 PAGAMENTO AGENDADO 10,00"

	e := &ItauExtractor{}
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

	// Two strict rows, then the loose sweep runs (fewer than ten rows) and
	// re-adds both: its spelling has no parentheses around the document, so
	// the duplicate check does not collapse them.
	if len(st.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Date != "2024-03-02" ||
		first.Description != "PIX RECEBIDO JOAO (12.345.678/0001-90)" ||
		first.Document != "12.345.678/0001-90" ||
		first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	// opening balance seeds the chain
	if first.Balance != 1150.00 {
		t.Errorf("first balance = %v, want 1150.00", first.Balance)
	}

	second := st.Transactions[1]
	if second.Type != models.Debit || second.Value != 50.00 || second.Balance != 1100.00 {
		t.Errorf("second = %+v", second)
	}

	// loose re-adds carry the undecorated description
	if st.Transactions[2].Description != "PIX RECEBIDO JOAO 12.345.678/0001-90" {
		t.Errorf("loose description = %q", st.Transactions[2].Description)
	}

	// the scheduled section after "Lançamentos futuros" never shows up
	for _, txn := range st.Transactions {
		if txn.Date == "2024-03-04" {
			t.Errorf("scheduled entry leaked into the statement: %+v", txn)
		}
	}
}

func TestItauExtractLooseFallback(t *testing.T) {
	// no document column anywhere: the strict pass finds nothing and the
	// loose sweep carries the whole statement
	text := "Itaú Extrato Conta Corrente Agência 1234 " +
		"Lançamentos do período: 01/03/2024 até 31/03/2024 " +
		"02/03/2024 TED RECEBIDA CLIENTE 200,00 " +
		"03/03/2024 PIX ENVIADO MARIA -80,00"

	e := &ItauExtractor{}
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
	if first.Date != "2024-03-02" || first.Description != "TED RECEBIDA CLIENTE" ||
		first.Value != 200.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	// the dash on the amount marks the debit in the loose shape
	second := st.Transactions[1]
	if second.Date != "2024-03-03" || second.Value != 80.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	if first.Balance != 200.00 || second.Balance != 120.00 {
		t.Errorf("balances = %v, %v", first.Balance, second.Balance)
	}

	// strict rows would carry the document in parentheses
	for _, txn := range st.Transactions {
		if strings.Contains(txn.Description, "(") {
			t.Errorf("unexpected strict-pass row: %+v", txn)
		}
	}
}

func TestItauNoTransactions(t *testing.T) {
	e := &ItauExtractor{}
	st, err := e.Extract("Itaú Conta Corrente Agência 1234 Lançamentos do período: 01/03/2024 até 31/03/2024")
	if err != ErrNoTransactions {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
	if st == nil {
		t.Fatal("statement must be returned alongside ErrNoTransactions")
	}
}
