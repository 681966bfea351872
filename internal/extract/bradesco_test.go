package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestBradescoExtract(t *testing.T) {
	// The middle row carries a 4-digit document, which the description-led
	// pattern cannot bridge; the value-pairing pass recovers all three rows
	// and must therefore be the one that wins.
	text := "Bradesco Extrato de Conta Corrente Ag: 1234 | CC: 56789-0 " +
		"Entre 01/03/2024 e 31/03/2024 " +
		"Lançamento Crédito (R$) Débito (R$) Saldo (R$) " +
		"04/03/2024 SALDO ANTERIOR 1.000,00 " +
		"05/03/2024 Pix Recebido Joao 98765 150,00 1.150,00 " +
		"Pix Enviado 4321 -50,00 1.100,00 " +
		"Tarifa Mensalidade -10,00 1.090,00"

	e := &BradescoExtractor{}
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
	if len(st.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Date != "2024-03-05" || first.Description != "Pix Recebido Joao" ||
		first.Document != "98765" ||
		first.Value != 150.00 || first.Type != models.Credit || first.Balance != 1150.00 {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Description != "Pix Enviado 4321" || second.Value != 50.00 ||
		second.Type != models.Debit || second.Balance != 1100.00 {
		t.Errorf("second = %+v", second)
	}
	third := st.Transactions[2]
	if third.Description != "Tarifa Mensalidade" || third.Value != 10.00 ||
		third.Type != models.Debit || third.Balance != 1090.00 {
		t.Errorf("third = %+v", third)
	}
}

func TestBradescoValidateFormat(t *testing.T) {
	e := &BradescoExtractor{}
	if e.ValidateFormat("Banco XYZ Entre 01/03/2024 e 31/03/2024") {
		t.Error("expected rejection without a Bradesco marker")
	}
	if !e.ValidateFormat("Bradesco Ag: 1234 | CC: 56789-0") {
		t.Error("expected the account header to validate")
	}
}

func TestBradescoNoTransactions(t *testing.T) {
	e := &BradescoExtractor{}
	st, err := e.Extract("Bradesco Entre 01/03/2024 e 31/03/2024")
	if err != ErrNoTransactions {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
	if st == nil || st.Period == "" {
		t.Fatal("statement with the period must come back alongside ErrNoTransactions")
	}
}
