package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// SafraExtractor handles the Safra current-account statement: a LANÇAMENTOS
// section of DD/MM rows whose signed amount is the last monetary token of
// each row.
type SafraExtractor struct{}

func (e *SafraExtractor) BankID() string   { return "safra" }
func (e *SafraExtractor) BankName() string { return "Safra" }

var safraPeriod = regexp.MustCompile(`(?i)per[ií]odo\s+de\s+(\d{2}/\d{2}/\d{4})\s+a\s+(\d{2}/\d{2}/\d{4})`)

// safraMoney is looser than the shared money pattern: this layout prints
// amounts without strict thousands grouping.
var safraMoney = regexp.MustCompile(`-?[\d.]+,\d{2}`)

func (e *SafraExtractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"BANCO SAFRA", "SAFRA"}) &&
		safraPeriod.MatchString(text) &&
		strings.Contains(NormalizeText(text), "LANÇAMENTOS")
}

var safraRules = []Rule{
	{Contains: []string{"PIX ENVIADO", "PIX QR"}, Type: "XFER"},
	{Contains: []string{"PIX RECEBIDO"}, Type: "DEP"},
	{Contains: []string{"PAGAMENTO", "TAR ", "TARIFA"}, Type: "PAYMENT"},
	{Contains: []string{"APLICACAO", "RESGATE"}, Type: "XFER"},
	{Contains: []string{"CREDITO COBRANCA", "LIBERACAO"}, Type: "CREDIT"},
	{Contains: []string{"LIQUIDACAO"}, Type: "DEBIT"},
}

func (e *SafraExtractor) Classify(description string) string {
	return classifyRules(safraRules, description)
}

func (e *SafraExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	pm := safraPeriod.FindStringSubmatch(text)
	if pm == nil {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "period header"}
	}
	p := period{}
	parseDMY(pm[1], &p.startDay, &p.startMonth, &p.startYear)
	parseDMY(pm[2], &p.endDay, &p.endMonth, &p.endYear)
	st.Period = p.String()

	movements, degraded := locateMovements(text, "LANÇAMENTOS")
	if degraded {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "LANÇAMENTOS"}
	}

	var txns []models.Transaction
	for _, c := range splitByDates(movements, dayMonthPattern) {
		if !validDayMonth(c.date) {
			continue
		}
		if strings.Contains(c.text, "Data") || strings.Contains(c.text, "Lançamento") ||
			strings.Contains(c.text, "Valor (R$)") {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "skipped", Reason: "table header",
			})
			continue
		}

		values := safraMoney.FindAllStringIndex(c.text, -1)
		if len(values) == 0 {
			continue
		}
		last := values[len(values)-1]
		amountStr := c.text[last[0]:last[1]]

		desc := strings.TrimSpace(c.text[len(c.date):last[0]])
		if strings.Contains(desc, "SALDO TOTAL") || strings.Contains(desc, "SALDO APLIC") ||
			strings.Contains(desc, "SALDO CONTA") {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "excluded", Reason: "balance marker",
			})
			continue
		}

		amount, err := parseAmount(amountStr)
		if err != nil {
			continue
		}

		parts := strings.SplitN(c.date, "/", 2)
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])

		txn := models.Transaction{
			Date:        isoDate(p.inferYear(month), month, day),
			Description: desc,
			Value:       amount,
			Type:        models.Credit,
		}
		if amount < 0 {
			txn.Value = -amount
			txn.Type = models.Debit
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	sortByDate(txns)
	applyRunningBalance(txns, 0)
	st.Transactions = txns
	return st, nil
}
