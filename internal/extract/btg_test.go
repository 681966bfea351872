package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestBTGNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0 1/1 0/2 5", "01/10/25"},
		{"6.3 4 3,4 7", "6.343,47"},
		{"- 1 0,0 0", "-10,00"},
		{"05/03/24", "05/03/24"},
	}
	for _, tt := range tests {
		if got := btgNormalize(tt.in); got != tt.want {
			t.Errorf("btgNormalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBTGDate(t *testing.T) {
	if got, ok := btgDate("05/03/24"); !ok || got != "2024-03-05" {
		t.Errorf("btgDate = %q, %v", got, ok)
	}
	// two-digit years pivot at 50
	if got, _ := btgDate("05/03/99"); got != "1999-03-05" {
		t.Errorf("btgDate pivot = %q", got)
	}
	if _, ok := btgDate("45/03/24"); ok {
		t.Error("expected invalid day to be rejected")
	}
}

func TestBTGExtract(t *testing.T) {
	text := "BTG Pactual banking Extrato " +
		"05/03/24 150,00 150,00 " +
		"06/03/24 -10,00 140,00 " +
		"06/03/24 -10,00 140,00" // repeated page fragment

	e := &BTGExtractor{}
	if !e.ValidateFormat(text) {
		t.Fatal("expected format to validate")
	}

	st, err := e.Extract(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("expected 2 transactions after dedup, got %d", len(st.Transactions))
	}

	first := st.Transactions[0]
	if first.Type != models.Credit || first.Description != "Crédito BTG" || first.Balance != 150.00 {
		t.Errorf("first = %+v", first)
	}
	second := st.Transactions[1]
	if second.Type != models.Debit || second.Description != "Débito BTG" || second.Value != 10.00 {
		t.Errorf("second = %+v", second)
	}

	deduped := false
	for _, ev := range st.Trace {
		if ev.Reason == "repeated page fragment" {
			deduped = true
		}
	}
	if !deduped {
		t.Error("expected a trace event for the repeated row")
	}
}
