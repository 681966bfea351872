package ofx

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// ErrNoTransactions is returned when there is nothing to serialize. An empty
// document would carry no DTSTART/DTEND and no ledger balance.
var ErrNoTransactions = errors.New("ofx: no transactions to serialize")

// now is swapped out by tests to pin DTSERVER.
var now = time.Now

// Serialize renders a complete OFX 1.02 SGML document for the given
// transactions. classify maps a description to a bank-specific TRNTYPE; an
// empty result falls back to CREDIT/DEBIT from the transaction direction.
// The list is sorted oldest first before serialization; the ledger balance
// block carries the last transaction's balance as of the end date.
func Serialize(txns []models.Transaction, bankID string, classify func(string) string) (string, error) {
	if len(txns) == 0 {
		return "", ErrNoTransactions
	}

	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	// stable: same-day rows keep their extracted order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	timestamp := now().UTC().Format("20060102T150405")
	startDate := stripDashes(sorted[0].Date)
	endDate := stripDashes(sorted[len(sorted)-1].Date)
	finalBalance := sorted[len(sorted)-1].Balance

	var b strings.Builder
	fmt.Fprintf(&b, `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
  <SIGNONMSGSRSV1>
    <SONRS>
      <STATUS>
        <CODE>0</CODE>
        <SEVERITY>INFO</SEVERITY>
      </STATUS>
      <DTSERVER>%s</DTSERVER>
      <LANGUAGE>POR</LANGUAGE>
    </SONRS>
  </SIGNONMSGSRSV1>
  <BANKMSGSRSV1>
    <STMTTRNRS>
      <TRNUID>1</TRNUID>
      <STATUS>
        <CODE>0</CODE>
        <SEVERITY>INFO</SEVERITY>
      </STATUS>
      <STMTRS>
        <CURDEF>BRL</CURDEF>
        <BANKACCTFROM>
          <BANKID>756</BANKID>
          <ACCTID>XXXXXX</ACCTID>
          <ACCTTYPE>CHECKING</ACCTTYPE>
        </BANKACCTFROM>
        <BANKTRANLIST>
          <DTSTART>%s</DTSTART>
          <DTEND>%s</DTEND>`, timestamp, startDate, endDate)

	for i, txn := range sorted {
		trnType := ""
		if classify != nil {
			trnType = classify(txn.Description)
		}
		if trnType == "" {
			trnType = "CREDIT"
			if txn.Type == models.Debit {
				trnType = "DEBIT"
			}
		}

		amount := txn.SignedValue()
		fitid := fitID(txn.Date, amount, txn.Description, i)

		fmt.Fprintf(&b, `
          <STMTTRN>
            <TRNTYPE>%s</TRNTYPE>
            <DTPOSTED>%s</DTPOSTED>
            <TRNAMT>%.2f</TRNAMT>
            <FITID>%s</FITID>
            <MEMO>%s</MEMO>
          </STMTTRN>`, trnType, stripDashes(txn.Date), amount, fitid, txn.Description)
	}

	fmt.Fprintf(&b, `
        </BANKTRANLIST>
        <LEDGERBAL>
          <BALAMT>%.2f</BALAMT>
          <DTASOF>%s</DTASOF>
        </LEDGERBAL>
      </STMTRS>
    </STMTTRNRS>
  </BANKMSGSRSV1>
</OFX>`, finalBalance, endDate)

	return b.String(), nil
}

// FileName builds the suggested download name for a serialized statement.
func FileName(bankID string, at time.Time) string {
	return fmt.Sprintf("extrato_%s_%d.ofx", bankID, at.UnixMilli())
}

// fitID derives a deterministic per-file-unique transaction id from the
// date, signed amount, the first 20 characters of the description, and the
// ordinal index. The index guarantees uniqueness even for two identical
// movements on the same day.
func fitID(date string, amount float64, description string, index int) string {
	desc := utf16.Encode([]rune(description))
	if len(desc) > 20 {
		desc = desc[:20]
	}
	units := utf16.Encode([]rune(date + strconv.FormatFloat(amount, 'f', 2, 64)))
	units = append(units, desc...)
	units = append(units, utf16.Encode([]rune(strconv.Itoa(index)))...)

	var hash int32
	for _, cu := range units {
		hash = hash<<5 - hash + int32(cu)
	}
	s := strconv.FormatInt(int64(hash), 36)
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

func stripDashes(date string) string {
	return strings.ReplaceAll(date, "-", "")
}
