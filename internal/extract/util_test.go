package extract

import (
	"testing"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.234,56", 1234.56, false},
		{"150,00", 150.00, false},
		{"-10,00", -10.00, false},
		{"R$ 150,00", 150.00, false},
		{"R$150,00", 150.00, false},
		{"-R$ 25.000,00", -25000.00, false},
		{"0,00", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidDayMonth(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"01/03", true},
		{"31/12", true},
		{"32/01", false},
		{"00/05", false},
		{"15/13", false},
		{"15/00", false},
		{"páge", false},
	}
	for _, tt := range tests {
		if got := validDayMonth(tt.in); got != tt.want {
			t.Errorf("validDayMonth(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsoFromFullDate(t *testing.T) {
	if got, ok := isoFromFullDate("05/01/2024"); !ok || got != "2024-01-05" {
		t.Errorf("isoFromFullDate = %q, %v", got, ok)
	}
	if _, ok := isoFromFullDate("45/01/2024"); ok {
		t.Error("expected invalid day to be rejected")
	}
	if _, ok := isoFromFullDate("05/01/0024"); ok {
		t.Error("expected pre-1900 year to be rejected")
	}
}

func TestPeriodInferYear(t *testing.T) {
	crossYear := period{
		startDay: 15, startMonth: 12, startYear: 2023,
		endDay: 10, endMonth: 1, endYear: 2024,
	}
	if y := crossYear.inferYear(1); y != 2024 {
		t.Errorf("january in cross-year period: got %d, want 2024", y)
	}
	if y := crossYear.inferYear(12); y != 2023 {
		t.Errorf("december in cross-year period: got %d, want 2023", y)
	}

	sameYear := period{
		startDay: 1, startMonth: 3, startYear: 2024,
		endDay: 31, endMonth: 3, endYear: 2024,
	}
	if y := sameYear.inferYear(3); y != 2024 {
		t.Errorf("same-year period: got %d, want 2024", y)
	}
}

func TestParsePeriodRange(t *testing.T) {
	p, ok := parsePeriodRange("Extrato Período de 01/03/2024 a 31/03/2024")
	if !ok {
		t.Fatal("expected period to parse")
	}
	if p.startDay != 1 || p.startMonth != 3 || p.startYear != 2024 {
		t.Errorf("unexpected start: %+v", p)
	}
	if p.endDay != 31 || p.endMonth != 3 || p.endYear != 2024 {
		t.Errorf("unexpected end: %+v", p)
	}

	if _, ok := parsePeriodRange("no header here"); ok {
		t.Error("expected missing header to fail")
	}
}

func TestSplitByDates(t *testing.T) {
	text := "01/03 PIX RECEBIDO 150,00C 02/03 TARIFA 10,00D"
	chunks := splitByDates(text, dayMonthPattern)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].date != "01/03" {
		t.Errorf("chunk 0 date = %q", chunks[0].date)
	}
	if chunks[0].text != "01/03 PIX RECEBIDO 150,00C" {
		t.Errorf("chunk 0 text = %q", chunks[0].text)
	}
	if chunks[1].date != "02/03" || chunks[1].text != "02/03 TARIFA 10,00D" {
		t.Errorf("chunk 1 = %+v", chunks[1])
	}
}

func TestDedupeTransactions(t *testing.T) {
	txns := []models.Transaction{
		{Date: "2024-03-01", Description: "PIX RECEBIDO", Value: 150.00},
		{Date: "2024-03-01", Description: "PIX RECEBIDO", Value: 150.005}, // within tolerance
		{Date: "2024-03-01", Description: "PIX RECEBIDO", Value: 151.00},
		{Date: "2024-03-02", Description: "PIX RECEBIDO", Value: 150.00},
	}
	out := dedupeTransactions(txns)
	if len(out) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(out))
	}
}

func TestSortByDateStable(t *testing.T) {
	txns := []models.Transaction{
		{Date: "2024-03-02", Description: "B"},
		{Date: "2024-03-01", Description: "C"},
		{Date: "2024-03-02", Description: "A"},
	}
	sortByDate(txns)
	if txns[0].Description != "C" {
		t.Errorf("oldest first: got %q", txns[0].Description)
	}
	// same-day rows keep extracted order
	if txns[1].Description != "B" || txns[2].Description != "A" {
		t.Errorf("stability broken: %q, %q", txns[1].Description, txns[2].Description)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
	// never split a rune
	if got := truncate("crédito", 3); got != "cr" {
		t.Errorf("truncate on rune boundary = %q", got)
	}
}

func TestClassifyRules(t *testing.T) {
	rules := []Rule{
		{Contains: []string{"PIX RECEBIDO"}, Type: "DEP"},
		{Contains: []string{"TARIFA"}, StartsWith: []string{"TAR "}, Type: "FEE"},
	}
	tests := []struct {
		desc string
		want string
	}{
		{"PIX RECEBIDO JOAO", "DEP"},
		{"pix recebido maria", "DEP"},
		{"TAR MANUTENCAO", "FEE"},
		{"TARIFA PACOTE", "FEE"},
		{"COMPRA MERCADO", "OTHER"},
	}
	for _, tt := range tests {
		if got := classifyRules(rules, tt.desc); got != tt.want {
			t.Errorf("classifyRules(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}
