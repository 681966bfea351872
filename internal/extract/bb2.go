package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// BB2Extractor handles the "Extrato de conta corrente" Banco do Brasil
// export. Rows may arrive as pipe-delimited table cells or as plain lines;
// both shapes are tried per line, with a flat full-text sweep as the last
// resort.
type BB2Extractor struct{}

func (e *BB2Extractor) BankID() string   { return "bb2" }
func (e *BB2Extractor) BankName() string { return "Banco do Brasil 2" }

var (
	bb2Saldo    = regexp.MustCompile(`(?i)Saldo\s+Anterior\s+([\d.,]+)\s*([CD])`)
	bb2TableRow = regexp.MustCompile(`(?i)\|\s*(\d{2}/\d{2}/\d{4})\s*\|[^|]*\|\s*\d{4}\s*\|\s*\d{3,5}\s*\|\s*([^|]+)\|\s*([^|]*)\|\s*([\d.,]+)\s*\|\s*([CD*])\s*\|?`)
	bb2LineRow  = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+\d{4}\s+\d{3,5}\s+(.+?)\s+([\d.,]+)\s*([CD])\s*$`)
	bb2FlatRow  = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+\d{4}\s+\d{3,5}\s+(.+?)\s+([\d.,]+)\s+([CD])\b`)
	bb2DocTail  = regexp.MustCompile(`([\d.]+)\s*$`)
)

func (e *BB2Extractor) ValidateFormat(text string) bool {
	folded := foldKey(text)
	markers := 0
	for _, m := range []string{
		"EXTRATO DE CONTA CORRENTE", "AGENCIA", "CONTA CORRENTE",
		"LANCAMENTOS", "DT. BALANCETE",
	} {
		if strings.Contains(folded, m) {
			markers++
		}
	}
	if strings.Contains(folded, "DT BALANCETE") && !strings.Contains(folded, "DT. BALANCETE") {
		markers++
	}
	return markers >= 4
}

func (e *BB2Extractor) Classify(string) string { return "" }

func (e *BB2Extractor) Extract(text string) (*models.Statement, error) {
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	balance := 0.0
	if m := bb2Saldo.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			balance = v
			if strings.EqualFold(m[2], "D") {
				balance = -balance
			}
		}
	}

	// Row shapes are line-bound, so lines are normalized individually
	// instead of flattening the whole document.
	var txns []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if strings.Contains(line, "Dt. balancete") || strings.Contains(line, "Dt. movimento") ||
			strings.Contains(line, "OBSERVAÇÕES") || strings.Contains(line, "SAC") ||
			strings.Contains(line, "Ouvidoria") {
			continue
		}
		if strings.Contains(line, "S A L D O") || strings.Contains(line, "SALDO") {
			continue
		}

		if m := bb2TableRow.FindStringSubmatch(line); m != nil {
			historico := strings.TrimSpace(m[2])
			if strings.Contains(strings.ToLower(historico), "saldo anterior") {
				continue
			}
			if m[5] == "*" {
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: line, Action: "excluded", Reason: "starred (blocked) entry",
				})
				continue
			}
			txn, ok := bb2Row(m[1], historico, strings.TrimSpace(m[3]), m[4], m[5], &balance)
			if ok {
				txns = append(txns, txn)
			}
			continue
		}

		if m := bb2LineRow.FindStringSubmatch(line); m != nil {
			historico := strings.TrimSpace(m[2])
			lower := strings.ToLower(historico)
			if strings.Contains(lower, "saldo anterior") || strings.Contains(lower, "s a l d o") {
				continue
			}
			txn, ok := bb2Row(m[1], historico, "", m[3], m[4], &balance)
			if ok {
				txns = append(txns, txn)
			}
		}
	}

	if len(txns) == 0 {
		txns = e.parseFlat(text)
	}
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	st.Transactions = txns
	return st, nil
}

// parseFlat sweeps the flattened document with a loose row pattern, pulling
// the document reference off the end of the description.
func (e *BB2Extractor) parseFlat(text string) []models.Transaction {
	flat := NormalizeText(text)

	balance := 0.0
	if m := bb2Saldo.FindStringSubmatch(flat); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			balance = v
			if m[2] == "D" {
				balance = -balance
			}
		}
	}

	var txns []models.Transaction
	for _, m := range bb2FlatRow.FindAllStringSubmatch(flat, -1) {
		historico := strings.TrimSpace(m[2])
		lower := strings.ToLower(historico)
		if strings.Contains(lower, "saldo anterior") || strings.Contains(lower, "s a l d o") {
			continue
		}

		document := ""
		if dm := bb2DocTail.FindStringSubmatch(historico); dm != nil && strings.Contains(dm[1], ".") {
			document = dm[1]
			historico = strings.TrimSpace(strings.TrimSuffix(historico, dm[0]))
		}

		txn, ok := bb2Row(m[1], historico, document, m[3], strings.ToUpper(m[4]), &balance)
		if ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

func bb2Row(dateStr, historico, document, valueStr, dc string, balance *float64) (models.Transaction, bool) {
	date, ok := isoFromFullDate(dateStr)
	if !ok {
		return models.Transaction{}, false
	}
	value, err := parseAmount(valueStr)
	if err != nil {
		return models.Transaction{}, false
	}

	txn := models.Transaction{
		Date:  date,
		Value: value,
		Type:  models.Credit,
	}
	if strings.EqualFold(dc, "D") {
		txn.Type = models.Debit
	}
	*balance = round2(*balance + txn.SignedValue())
	txn.Balance = *balance

	desc := historico
	if document != "" {
		desc += " - DOC " + document
		txn.Document = document
	}
	txn.Description = desc
	return txn, true
}
