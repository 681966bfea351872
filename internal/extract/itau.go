package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// ItauExtractor handles the Itaú corporate statement whose rows carry the
// counterparty CPF/CNPJ between the description and the amount. A looser
// second pass covers exports where the document column was dropped.
type ItauExtractor struct{}

func (e *ItauExtractor) BankID() string   { return "itau" }
func (e *ItauExtractor) BankName() string { return "Itaú" }

var (
	itauPeriod        = regexp.MustCompile(`(?i)(?:lançamentos do per[íi]odo|per[íi]odo)[:\s]+(\d{2}/\d{2}/\d{4})\s+(?:até|a)\s+(\d{2}/\d{2}/\d{4})`)
	itauSaldoAnterior = regexp.MustCompile(`(?i)SALDO\s+ANTERIOR\s+([-\d.,]+)`)
	itauRow           = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+([A-ZÁÉÍÓÚÂÊÎÔÛÃÕÇ][^\d]*?)\s+((?:\d{2,3}\.){2,3}\d{3}(?:/\d{4})?-\d{2}|\d{3}\.\d{3}\.\d{3}-\d{2})\s+(-?[\d.,]+)`)
	itauLooseValue    = regexp.MustCompile(`-?R?\$? ?-?(?:\d{1,3}\.)*\d{1,3},\d{2}`)
)

// itauDebitKeywords flag debits in the primary pass, where the amount column
// has no sign of its own.
var itauDebitKeywords = []string{
	"PIX ENVIADO", "PAGAMENTO", "TARIFA", "DÉBITO", "DEB ", "TRANSFERIDO",
}

func (e *ItauExtractor) ValidateFormat(text string) bool {
	folded := foldKey(text)
	markers := 0
	for _, m := range []string{"CONTA", "AGENCIA", "LANCAMENTOS", "PERIODO", "CNPJ", "PIX", "SALDO"} {
		if strings.Contains(folded, m) {
			markers++
		}
	}
	return markers >= 4
}

func (e *ItauExtractor) Classify(string) string { return "" }

func (e *ItauExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	// Scheduled entries live after "lançamentos futuros"; everything from
	// there on is not part of the statement.
	if idx := strings.Index(strings.ToLower(text), "lançamentos futuros"); idx >= 0 {
		text = text[:idx]
	}

	if pm := itauPeriod.FindStringSubmatch(text); pm != nil {
		p := period{}
		parseDMY(pm[1], &p.startDay, &p.startMonth, &p.startYear)
		parseDMY(pm[2], &p.endDay, &p.endMonth, &p.endYear)
		st.Period = p.String()
	}

	opening := 0.0
	if m := itauSaldoAnterior.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			opening = v
		}
	}

	balance := opening
	var txns []models.Transaction
	for _, m := range itauRow.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[2])
		if strings.Contains(strings.ToUpper(desc), "SALDO") {
			continue
		}
		date, ok := isoFromFullDate(m[1])
		if !ok {
			continue
		}
		value, err := parseAmount(m[4])
		if err != nil || value == 0 {
			continue
		}
		if value < 0 {
			value = -value
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc + " (" + m[3] + ")",
			Value:       value,
			Type:        models.Credit,
			Document:    m[3],
		}
		if containsAny(strings.ToUpper(desc), itauDebitKeywords) {
			txn.Type = models.Debit
		}
		balance = round2(balance + txn.SignedValue())
		txn.Balance = balance
		txns = append(txns, txn)
	}

	// The document column is missing from some exports; when the strict pass
	// captured too little, sweep again with the plain date+amount shape and
	// merge what is new.
	if len(txns) < 10 {
		txns = e.parseSimple(text, txns, balance, st)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	st.Transactions = txns
	return st, nil
}

func (e *ItauExtractor) parseSimple(text string, txns []models.Transaction, balance float64, st *models.Statement) []models.Transaction {
	for _, c := range splitByDates(text, fullDatePattern) {
		upper := strings.ToUpper(c.text)
		if strings.Contains(upper, "SALDO ANTERIOR") || strings.Contains(upper, "SALDO TOTAL") {
			continue
		}
		date, ok := isoFromFullDate(c.date)
		if !ok {
			continue
		}

		loc := itauLooseValue.FindStringIndex(c.text[len(c.date):])
		if loc == nil {
			continue
		}
		raw := c.text[len(c.date)+loc[0] : len(c.date)+loc[1]]
		value, err := parseAmount(raw)
		if err != nil || value == 0 {
			continue
		}
		negative := strings.Contains(raw, "-")
		if value < 0 {
			value = -value
		}

		desc := strings.TrimSpace(c.text[len(c.date) : len(c.date)+loc[0]])
		if len(desc) < 3 {
			continue
		}

		dup := false
		for _, t := range txns {
			if t.Date == date && t.Description == desc && abs(t.Value-value) < dedupeTolerance {
				dup = true
				break
			}
		}
		if dup {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "skipped", Reason: "duplicate of strict pass",
			})
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       value,
			Type:        models.Credit,
		}
		if negative {
			txn.Type = models.Debit
		}
		balance = round2(balance + txn.SignedValue())
		txn.Balance = balance
		txns = append(txns, txn)
	}
	return txns
}
