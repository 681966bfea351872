package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// SisprimeExtractor handles the Sisprime account statement: full-dated rows
// carrying a document column, then two R$ values in balance-first order. The
// direction comes from the description wording, not from a sign or
// indicator.
type SisprimeExtractor struct{}

func (e *SisprimeExtractor) BankID() string   { return "sisprime" }
func (e *SisprimeExtractor) BankName() string { return "Sisprime" }

var sisprimeValue = regexp.MustCompile(`-?R\$ ?[\d.,]+`)

func (e *SisprimeExtractor) ValidateFormat(text string) bool {
	lower := strings.ToLower(text)
	return (strings.Contains(lower, "sisprime") || strings.Contains(lower, "extrato de conta")) &&
		fullDatePattern.MatchString(text)
}

var sisprimeRules = []Rule{
	{Contains: []string{"PIX"}, Type: "PIX"},
	{Contains: []string{"TED", "TRANSF"}, Type: "XFER"},
	{Contains: []string{"TARIFA", "TAR "}, Type: "SRVCHG"},
	{Contains: []string{"IOF", "JRS", "JUROS"}, Type: "INT"},
	{Contains: []string{"PAGAMENTO", "PAG"}, Type: "PAYMENT"},
	{Contains: []string{"CONVÊNIO", "CONVENIO"}, Type: "PAYMENT"},
	{Contains: []string{"PARCELA", "LIQ"}, Type: "PAYMENT"},
}

func (e *SisprimeExtractor) Classify(description string) string {
	return classifyRules(sisprimeRules, description)
}

func (e *SisprimeExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	var txns []models.Transaction
	for _, c := range splitByDates(text, fullDatePattern) {
		if strings.Contains(c.text, "Período do extrato") ||
			strings.Contains(c.text, "Saldo Anterior") ||
			strings.Contains(c.text, "Data Documento") {
			continue
		}

		rest := strings.TrimSpace(c.text[len(c.date):])
		values := sisprimeValue.FindAllStringIndex(rest, -1)
		if len(values) < 2 {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "skipped", Reason: "missing balance or value column",
			})
			continue
		}

		fields := strings.Fields(strings.TrimSpace(rest[:values[0][0]]))
		if len(fields) == 0 {
			continue
		}
		document := ""
		desc := fields[0]
		if len(fields) >= 2 {
			document = fields[0]
			desc = strings.Join(fields[1:], " ")
		}
		if desc == "" {
			continue
		}

		date, ok := isoFromFullDate(c.date)
		if !ok {
			continue
		}
		// balance column first, movement second
		balance, err1 := parseAmount(rest[values[0][0]:values[0][1]])
		value, err2 := parseAmount(rest[values[1][0]:values[1][1]])
		if err1 != nil || err2 != nil {
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       abs(value),
			Balance:     abs(balance),
			Type:        models.Debit,
			Document:    document,
		}
		lower := strings.ToLower(desc)
		if strings.Contains(lower, "crédito") || strings.Contains(lower, "credito") {
			txn.Type = models.Credit
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	st.Transactions = txns
	return st, nil
}
