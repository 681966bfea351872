package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Safra2Extractor handles the Safra linked-account statement. Same chunking
// strategy as the primary Safra layout, but the movements anchor varies and
// amounts may carry an R$ prefix with a detached minus sign.
type Safra2Extractor struct{}

func (e *Safra2Extractor) BankID() string   { return "safra2" }
func (e *Safra2Extractor) BankName() string { return "Safra 2" }

var safra2Money = regexp.MustCompile(`(-?)(?:R\$)? ?([\d.]+,\d{2})`)

// safra2SkipKeywords reject whole chunks that belong to the statement frame
// rather than the movements table.
var safra2SkipKeywords = []string{
	"SALDO TOTAL", "SALDO APLIC", "SALDO CONTA", "CENTRAL DE SUPORTE",
	"SAC", "OUVIDORIA", "PÁGINA", "BANCO SAFRA", "CNPJ:",
}

func (e *Safra2Extractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	return containsAnyFold(text, []string{"BANCO SAFRA", "SAFRA"}) &&
		safraPeriod.MatchString(text) &&
		containsAnyFold(text, []string{"LANÇAMENTOS REALIZADOS", "LANÇAMENTOS"})
}

func (e *Safra2Extractor) Classify(description string) string {
	return classifyRules(safraRules, description)
}

func (e *Safra2Extractor) Extract(text string) (*models.Statement, error) {
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

	movements := ""
	for _, anchor := range []string{"LANÇAMENTOS REALIZADOS", "LANÇAMENTOS"} {
		if section, degraded := locateMovements(text, anchor); !degraded {
			movements = section
			break
		}
	}
	if movements == "" {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "LANÇAMENTOS"}
	}

	var txns []models.Transaction
	for _, c := range splitByDates(movements, dayMonthPattern) {
		if !validDayMonth(c.date) {
			continue
		}
		upper := strings.ToUpper(c.text)
		if strings.Contains(upper, "DATA") && strings.Contains(upper, "VALOR") {
			continue
		}
		if containsAny(upper, safra2SkipKeywords) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "excluded", Reason: "statement frame",
			})
			continue
		}

		values := safra2Money.FindAllStringSubmatchIndex(c.text, -1)
		if len(values) == 0 {
			continue
		}
		last := values[len(values)-1]
		negative := c.text[last[2]:last[3]] == "-"
		amountStr := c.text[last[4]:last[5]]

		amount, err := parseAmount(amountStr)
		if err != nil {
			continue
		}
		if negative {
			amount = -amount
		}

		descEnd := strings.LastIndex(c.text, amountStr)
		if descEnd < len(c.date) {
			continue
		}
		desc := strings.TrimSpace(c.text[len(c.date):descEnd])
		if desc == "" {
			continue
		}
		descUpper := strings.ToUpper(desc)
		if strings.Contains(descUpper, "SALDO TOTAL") || strings.Contains(descUpper, "SALDO APLIC") ||
			strings.Contains(descUpper, "SALDO CONTA") {
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
