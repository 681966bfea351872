package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Sicredi2Extractor handles the Internet Banking Sicredi export. Rows carry
// full dates and end with two monetary columns (Valor, Saldo); the document
// reference, when present, is glued to the end of the description.
type Sicredi2Extractor struct{}

func (e *Sicredi2Extractor) BankID() string   { return "sicredi2" }
func (e *Sicredi2Extractor) BankName() string { return "Sicredi 2" }

var (
	sicredi2Period = regexp.MustCompile(`(?i)per[íi]odo\s+(\d{2}/\d{2}/\d{4})\s+a\s+(\d{2}/\d{2}/\d{4})`)
	sicredi2Start  = regexp.MustCompile(`SALDO\s+[\d.,]+\s+`)
	sicredi2Pipes  = regexp.MustCompile(`\s*\|\s*`)
)

// sicredi2DocPatterns match the reference tokens this layout appends to the
// description column, tried in order.
var sicredi2DocPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s+(PIX_(?:CRED|DEB))\s*$`),
	regexp.MustCompile(`\s+(SICREDI_(?:CRED|DEB))\s*$`),
	regexp.MustCompile(`\s+(COB\d+)\s*$`),
	regexp.MustCompile(`\s+(\d{6,})\s*$`),
	regexp.MustCompile(`\s+([A-Z0-9]{4,}---\d+)\s*$`),
}

func (e *Sicredi2Extractor) ValidateFormat(text string) bool {
	return strings.Contains(text, "Internet Banking Sicredi") &&
		sicredi2Period.MatchString(text) &&
		(strings.Contains(text, "Valor (R$)") || strings.Contains(text, "Saldo (R$)")) &&
		fullDatePattern.MatchString(text)
}

var sicredi2Rules = []Rule{
	{Contains: []string{"PIX"}, Type: "PIX"},
	{Contains: []string{"TED"}, Type: "XFER"},
	{Contains: []string{"BOLETO", "LIQUIDACAO"}, Type: "PAYMENT"},
	{Contains: []string{"TARIFA"}, Type: "FEE"},
	{Contains: []string{"COBRANCA", "LIQ.COBRANCA"}, Type: "DEP"},
	{Contains: []string{"CREDITO", "SICREDI CREDITO"}, Type: "POS"},
	{Contains: []string{"DEBITO", "SICREDI DEBITO"}, Type: "POS"},
	{Contains: []string{"FOLHA", "PAGTO"}, Type: "PAYMENT"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
	{Contains: []string{"IOF"}, Type: "FEE"},
}

func (e *Sicredi2Extractor) Classify(description string) string {
	return classifyRules(sicredi2Rules, description)
}

func (e *Sicredi2Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	if pm := sicredi2Period.FindStringSubmatch(text); pm != nil {
		p := period{}
		parseDMY(pm[1], &p.startDay, &p.startMonth, &p.startYear)
		parseDMY(pm[2], &p.endDay, &p.endMonth, &p.endYear)
		st.Period = p.String()
	}

	// Rows start after the opening SALDO line; without it the whole text is
	// scanned.
	section := text
	if loc := sicredi2Start.FindStringIndex(text); loc != nil {
		section = text[loc[1]:]
	}

	var txns []models.Transaction
	for _, c := range splitByDates(section, fullDatePattern) {
		values := moneyPattern.FindAllStringIndex(c.text, -1)
		if len(values) < 2 {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "skipped", Reason: "missing value or balance column",
			})
			continue
		}

		balLoc := values[len(values)-1]
		amtLoc := values[len(values)-2]
		if amtLoc[0] < len(c.date) {
			continue
		}
		amountStr := c.text[amtLoc[0]:amtLoc[1]]

		desc := strings.TrimSpace(c.text[len(c.date):amtLoc[0]])
		var document string
		for _, dp := range sicredi2DocPatterns {
			if m := dp.FindStringSubmatch(desc); m != nil {
				document = m[1]
				desc = strings.TrimSpace(dp.ReplaceAllString(desc, ""))
				break
			}
		}
		desc = sicredi2Pipes.ReplaceAllString(desc, " | ")

		lower := strings.ToLower(desc)
		if desc == "" || (strings.Contains(lower, "saldo") && !strings.Contains(lower, "sicredi")) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "excluded", Reason: "balance marker",
			})
			continue
		}

		date, ok := isoFromFullDate(c.date)
		if !ok {
			continue
		}
		value, err := parseAmount(amountStr)
		if err != nil {
			continue
		}
		balance, _ := parseAmount(c.text[balLoc[0]:balLoc[1]])

		txn := models.Transaction{
			Date:        date,
			Description: truncate(desc, 150),
			Value:       value,
			Balance:     balance,
			Type:        models.Credit,
			Document:    document,
		}
		if strings.HasPrefix(amountStr, "-") {
			txn.Type = models.Debit
			txn.Value = -value
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	sortByDate(txns)
	st.Transactions = txns
	return st, nil
}
