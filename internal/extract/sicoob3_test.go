package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestSicoob3Extract(t *testing.T) {
	text := "SICOOB Extrato Conta Corrente " +
		"05/03/2024 123456 PIX RECEBIDO JOAO 150,00C " +
		"06/03/2024 654321 TARIFA PACOTE 10,00D SALDO DO DIA => 240,00C " +
		"07/03/2024 111222 BLOQUEIO JUDICIAL 70,00*"

	e := &Sicoob3Extractor{}
	if !e.ValidateFormat(text) {
		t.Fatal("expected format to validate")
	}

	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// no period header in this layout: the dated rows bound it
	if st.Period != "05/03/2024 a 07/03/2024" {
		t.Errorf("period = %q", st.Period)
	}
	if st.Degraded {
		t.Error("strict rows matched, should not be degraded")
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Date != "2024-03-05" || first.Description != "PIX RECEBIDO JOAO" ||
		first.Document != "123456" ||
		first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Date != "2024-03-06" || second.Description != "TARIFA PACOTE" ||
		second.Value != 10.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}

	// day without a published close keeps the running chain; the published
	// SALDO DO DIA rewrites its own day
	if first.Balance != 150.00 {
		t.Errorf("first balance = %v, want 150.00", first.Balance)
	}
	if second.Balance != 240.00 {
		t.Errorf("second balance = %v, want 240.00 (published)", second.Balance)
	}

	starred := false
	for _, ev := range st.Trace {
		if ev.Action == "excluded" && ev.Reason == "starred (blocked) entry" {
			starred = true
		}
	}
	if !starred {
		t.Error("expected a starred-entry trace event")
	}
}

func TestSicoob3LooseFallback(t *testing.T) {
	// amounts printed without thousands grouping defeat the strict row shape;
	// the loose pass recovers them and flags the statement
	text := "SICOOB Extrato " +
		"05/03/2024 123456 CRED TED CLIENTE 1234,56C " +
		"06/03/2024 654321 DEB BOLETO 1000,00D"

	e := &Sicoob3Extractor{}
	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Degraded {
		t.Error("expected degraded flag for the loose pass")
	}
	recovered := false
	for _, ev := range st.Trace {
		if ev.Action == "recovered" {
			recovered = true
		}
	}
	if !recovered {
		t.Error("expected a recovered trace event")
	}

	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(st.Transactions))
	}
	first := st.Transactions[0]
	if first.Description != "CRED TED CLIENTE" || first.Document != "123456" ||
		first.Value != 1234.56 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Value != 1000.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	if first.Balance != 1234.56 || second.Balance != 234.56 {
		t.Errorf("balances = %v, %v", first.Balance, second.Balance)
	}
}
