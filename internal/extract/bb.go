package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// BBExtractor handles the Banco do Brasil monthly statement: full-dated rows
// with agency and batch columns, a C/D indicator glued to the amount and an
// optional published balance column.
type BBExtractor struct{}

func (e *BBExtractor) BankID() string   { return "bb" }
func (e *BBExtractor) BankName() string { return "Banco do Brasil" }

var (
	// the month/year header is printed with unstable spacing, so the colon
	// and whitespace are both optional
	bbPeriod        = regexp.MustCompile(`(?i)per[íi]odo\s+do\s+extrato[:\s]*(\d{2})\s*/\s*(\d{4})`)
	bbSaldoAnterior = regexp.MustCompile(`(?i)Saldo Anterior\s+\|\s*\|\s*([\d.,]+)\s+([CD])`)
	bbRow           = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+(\d{4})\s+(\d{3,5})\s+(.+?)\s+([\d.]*)\s+([\d.,]+)\s+([CD])(?:\s+([\d.,]+)\s+([CD]))?`)
	bbTrailingRef   = regexp.MustCompile(`[\d.]+$`)
)

func (e *BBExtractor) ValidateFormat(text string) bool {
	folded := foldKey(text)
	markers := 0
	for _, m := range []string{"AGENCIA", "CONTA CORRENTE", "LANCAMENTOS", "PERIODO DO EXTRATO"} {
		if strings.Contains(folded, m) {
			markers++
		}
	}
	return markers >= 3
}

func (e *BBExtractor) Classify(string) string { return "" }

func (e *BBExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	pm := bbPeriod.FindStringSubmatch(text)
	if pm == nil {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "period header"}
	}
	st.Period = fmt.Sprintf("%s/%s", pm[1], pm[2])

	balance := 0.0
	if m := bbSaldoAnterior.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			balance = v
			if m[2] == "D" {
				balance = -balance
			}
		}
	}

	var txns []models.Transaction
	for _, m := range bbRow.FindAllStringSubmatch(text, -1) {
		historico := bbTrailingRef.ReplaceAllString(strings.TrimSpace(m[4]), "")
		historico = strings.TrimSpace(historico)
		if strings.Contains(strings.ToUpper(historico), "SALDO") ||
			strings.Contains(strings.ToUpper(historico), "S A L D O") {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "excluded", Reason: "balance marker",
			})
			continue
		}

		date, ok := isoFromFullDate(m[1])
		if !ok {
			continue
		}
		value, err := parseAmount(m[6])
		if err != nil {
			continue
		}

		txn := models.Transaction{
			Date:  date,
			Value: value,
			Type:  models.Credit,
		}
		if strings.EqualFold(m[7], "D") {
			txn.Type = models.Debit
		}

		// Prefer the published balance column; fall back to the running chain.
		if m[8] != "" {
			if bal, err := parseAmount(m[8]); err == nil {
				if strings.EqualFold(m[9], "D") {
					bal = -bal
				}
				balance = bal
			}
		} else {
			balance = round2(balance + txn.SignedValue())
		}
		txn.Balance = balance

		desc := historico
		if doc := strings.TrimSpace(m[5]); doc != "" {
			desc += " - DOC " + doc
			txn.Document = doc
		}
		desc += " - AG " + m[2]
		txn.Description = desc

		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	st.Transactions = txns
	return st, nil
}
