package ofx

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func TestSerialize(t *testing.T) {
	now = fixedNow
	defer func() { now = time.Now }()

	txns := []models.Transaction{
		{Date: "2024-03-02", Description: "TARIFA MENSAL", Value: 10.00, Type: models.Debit, Balance: 140.00},
		{Date: "2024-03-01", Description: "PIX RECEBIDO JOAO", Value: 150.00, Type: models.Credit, Balance: 150.00},
	}

	out, err := Serialize(txns, "sicoob", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// fixed header literals
	for _, literal := range []string{
		"OFXHEADER:100", "DATA:OFXSGML", "VERSION:102", "SECURITY:NONE",
		"ENCODING:USASCII", "CHARSET:1252", "COMPRESSION:NONE",
		"OLDFILEUID:NONE", "NEWFILEUID:NONE",
	} {
		if !strings.Contains(out, literal) {
			t.Errorf("missing header literal %q", literal)
		}
	}

	if !strings.Contains(out, "<DTSERVER>20240315T103000</DTSERVER>") {
		t.Error("expected pinned DTSERVER")
	}
	if !strings.Contains(out, "<CURDEF>BRL</CURDEF>") {
		t.Error("expected BRL currency")
	}

	// the list is sorted before the range is derived
	if !strings.Contains(out, "<DTSTART>20240301</DTSTART>") {
		t.Error("expected DTSTART from oldest transaction")
	}
	if !strings.Contains(out, "<DTEND>20240302</DTEND>") {
		t.Error("expected DTEND from newest transaction")
	}

	// credit positive, debit negative, two decimals
	if !strings.Contains(out, "<TRNAMT>150.00</TRNAMT>") {
		t.Error("expected positive credit amount")
	}
	if !strings.Contains(out, "<TRNAMT>-10.00</TRNAMT>") {
		t.Error("expected negative debit amount")
	}

	// ledger balance comes from the last sorted transaction
	if !strings.Contains(out, "<BALAMT>140.00</BALAMT>") {
		t.Error("expected final balance from last transaction")
	}
	if !strings.Contains(out, "<DTASOF>20240302</DTASOF>") {
		t.Error("expected DTASOF equal to DTEND")
	}

	// default classification falls back to the transaction direction
	if !strings.Contains(out, "<TRNTYPE>CREDIT</TRNTYPE>") {
		t.Error("expected CREDIT fallback type")
	}
	if !strings.Contains(out, "<TRNTYPE>DEBIT</TRNTYPE>") {
		t.Error("expected DEBIT fallback type")
	}
}

func TestSerialize_Classify(t *testing.T) {
	txns := []models.Transaction{
		{Date: "2024-03-01", Description: "TARIFA MENSAL", Value: 10.00, Type: models.Debit},
		{Date: "2024-03-02", Description: "DEPOSITO CHEQUE", Value: 50.00, Type: models.Credit},
	}
	classify := func(description string) string {
		if strings.Contains(description, "TARIFA") {
			return "FEE"
		}
		return ""
	}

	out, err := Serialize(txns, "sicoob", classify)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<TRNTYPE>FEE</TRNTYPE>") {
		t.Error("expected classify result to win")
	}
	// empty classify result falls through to the direction
	if !strings.Contains(out, "<TRNTYPE>CREDIT</TRNTYPE>") {
		t.Error("expected CREDIT fallback when classify returns empty")
	}
}

func TestSerialize_Empty(t *testing.T) {
	if _, err := Serialize(nil, "sicoob", nil); err != ErrNoTransactions {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
}

func TestSerialize_FITIDUniqueness(t *testing.T) {
	// two byte-identical movements must still get distinct ids
	txns := []models.Transaction{
		{Date: "2024-03-01", Description: "TARIFA PACOTE", Value: 25.00, Type: models.Debit},
		{Date: "2024-03-01", Description: "TARIFA PACOTE", Value: 25.00, Type: models.Debit},
	}
	out, err := Serialize(txns, "nubank", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	re := regexp.MustCompile(`<FITID>([^<]+)</FITID>`)
	matches := re.FindAllStringSubmatch(out, -1)
	if len(matches) != 2 {
		t.Fatalf("expected 2 FITIDs, got %d", len(matches))
	}
	if matches[0][1] == matches[1][1] {
		t.Errorf("FITIDs must differ for identical transactions: %q", matches[0][1])
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	now = fixedNow
	defer func() { now = time.Now }()

	txns := []models.Transaction{
		{Date: "2024-01-10", Description: "PIX RECEBIDO MARIA", Value: 99.90, Type: models.Credit, Balance: 99.90},
	}
	a, err := Serialize(txns, "sicredi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Serialize(txns, "sicredi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Error("serialization must be deterministic for fixed input and clock")
	}
}

func TestFileName(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	got := FileName("sicoob", at)
	want := fmt.Sprintf("extrato_sicoob_%d.ofx", at.UnixMilli())
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}
