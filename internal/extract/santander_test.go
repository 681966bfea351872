package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestSantanderExtract(t *testing.T) {
	text := "Extrato de Conta Corrente\n" +
		"Santander março/2024\n" +
		"02/03\n" +
		"PIX RECEBIDO JOAO\n" +
		"123456\n" +
		"150,00\n" +
		"03/03\n" +
		"TARIFA MENSALIDADE\n" +
		"10,00-\n" +
		"SALDO TOTAL\n" +
		"999,99\n" +
		"RESGATE CONTAMAX 30,00\n" +
		"04/03\n" +
		"PIX ENVIADO\n" +
		"MARIA SILVA\n" +
		"50,00-\n"

	e := &SantanderExtractor{}
	if !e.ValidateFormat(text) {
		t.Fatal("expected format to validate")
	}

	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(st.Transactions))
	}

	// document cell lines join the pending description
	first := st.Transactions[0]
	if first.Date != "2024-03-02" || first.Description != "PIX RECEBIDO JOAO 123456" ||
		first.Value != 150.00 || first.Type != models.Credit {
		t.Errorf("first = %+v", first)
	}
	// trailing dash on the value line marks the debit
	second := st.Transactions[1]
	if second.Date != "2024-03-03" || second.Description != "TARIFA MENSALIDADE" ||
		second.Value != 10.00 || second.Type != models.Debit {
		t.Errorf("second = %+v", second)
	}
	// SALDO TOTAL resets the pending description, so the 999,99 that follows
	// it is swallowed instead of becoming a movement
	third := st.Transactions[2]
	if third.Description != "RESGATE CONTAMAX" || third.Value != 30.00 ||
		third.Type != models.Credit {
		t.Errorf("third = %+v", third)
	}
	// counterparty lines continue the pending description
	fourth := st.Transactions[3]
	if fourth.Date != "2024-03-04" || fourth.Description != "PIX ENVIADO MARIA SILVA" ||
		fourth.Value != 50.00 || fourth.Type != models.Debit {
		t.Errorf("fourth = %+v", fourth)
	}

	if third.Balance != 170.00 || fourth.Balance != 120.00 {
		t.Errorf("balances = %v, %v", third.Balance, fourth.Balance)
	}

	if got := e.Classify("PIX RECEBIDO JOAO 123456"); got != "DEP" {
		t.Errorf("Classify = %q, want DEP", got)
	}
	if got := e.Classify("RESGATE CONTAMAX"); got != "XFER" {
		t.Errorf("Classify = %q, want XFER", got)
	}
}

func TestSantanderNewEntryKeywordReplacesPending(t *testing.T) {
	text := "Santander março/2024\n" +
		"05/03\n" +
		"ALUGUEL ESCRITORIO\n" +
		"PAGAMENTO FORNECEDOR\n" +
		"80,00-\n"

	e := &SantanderExtractor{}
	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(st.Transactions))
	}
	// an operation keyword starts a fresh movement instead of continuing the
	// previous description
	if st.Transactions[0].Description != "PAGAMENTO FORNECEDOR" {
		t.Errorf("description = %q", st.Transactions[0].Description)
	}
	if st.Transactions[0].Type != models.Debit || st.Transactions[0].Value != 80.00 {
		t.Errorf("txn = %+v", st.Transactions[0])
	}
}

func TestSantanderMissingYearHeader(t *testing.T) {
	e := &SantanderExtractor{}
	_, err := e.Extract("Santander Extrato\n02/03\nPIX RECEBIDO\n150,00\n")
	if !IsSectionNotFound(err) {
		t.Fatalf("expected section error, got %v", err)
	}
}
