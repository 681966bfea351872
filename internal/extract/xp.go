package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// XPExtractor handles the XP investment-account statement: each row carries a
// settlement and a movement date, then the description, a signed R$ amount
// and the R$ balance. The settlement date is the one reported.
type XPExtractor struct{}

func (e *XPExtractor) BankID() string   { return "xp" }
func (e *XPExtractor) BankName() string { return "XP" }

const xpAnchor = "Liq Mov Histórico Valor Saldo"

var (
	xpRow          = regexp.MustCompile(`(\d{2}/\d{2}/\d{4}) \d{2}/\d{2}/\d{4} (.+?) (-)?R\$([\d.,]+) R\$[\d.,]+`)
	xpTrailingDash = regexp.MustCompile(` ?- ?$`)
)

func (e *XPExtractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	return strings.Contains(text, xpAnchor) ||
		(containsAnyFold(text, []string{"XP INVESTIMENTOS", "BANCO XP"}) && xpRow.MatchString(text))
}

var xpRules = []Rule{
	{Contains: []string{"RECEBIMENTO DE TED", "RECEBIMENTO TED"}, Type: "DEP"},
	{Contains: []string{"RESGATE"}, Type: "XFER"},
	{Contains: []string{"APLICAÇÃO", "APLICACAO"}, Type: "XFER"},
	{Contains: []string{"IRRF", "IOF"}, Type: "FEE"},
	{Contains: []string{"RECOMPRA", "COMPROMISSADA"}, Type: "XFER"},
}

func (e *XPExtractor) Classify(description string) string {
	upper := strings.ToUpper(description)
	if strings.Contains(upper, "TED") && strings.Contains(upper, "RETIRADA") {
		return "XFER"
	}
	return classifyRules(xpRules, description)
}

func (e *XPExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	movements, degraded := locateMovements(text, xpAnchor)
	st.Degraded = degraded
	if degraded {
		st.Trace = append(st.Trace, models.TraceEvent{
			Row: xpAnchor, Action: "recovered",
			Reason: "movements anchor not found, scanning whole document",
		})
	}

	var txns []models.Transaction
	for _, m := range xpRow.FindAllStringSubmatch(movements, -1) {
		date, ok := isoFromFullDate(m[1])
		if !ok {
			continue
		}
		desc := xpTrailingDash.ReplaceAllString(strings.TrimSpace(m[2]), "")
		value, err := parseAmount(m[4])
		if err != nil {
			continue
		}
		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       value,
			Type:        models.Credit,
		}
		if m[3] == "-" {
			txn.Type = models.Debit
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	applyRunningBalance(txns, 0)
	st.Transactions = txns
	return st, nil
}
