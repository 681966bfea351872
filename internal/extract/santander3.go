package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Santander3Extractor handles the newer Santander export with full dates and
// R$-prefixed amounts, debits marked by a leading minus on the R$ token.
type Santander3Extractor struct{}

func (e *Santander3Extractor) BankID() string   { return "santander3" }
func (e *Santander3Extractor) BankName() string { return "Santander 3" }

var santander3Row = regexp.MustCompile(`(\d{2}/\d{2}/\d{4}) (.+?) (-?R\$[\d.,]+)`)

func (e *Santander3Extractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"SANTANDER"}) &&
		santander3Row.MatchString(NormalizeText(text))
}

var santander3Rules = []Rule{
	{Contains: []string{"PIX ENVIADO"}, Type: "XFER"},
	{Contains: []string{"PIX RECEBIDO"}, Type: "DEP"},
	{Contains: []string{"TED", "TRANSFERENCIA"}, Type: "XFER"},
	{Contains: []string{"PAGAMENTO", "DARF"}, Type: "PAYMENT"},
	{Contains: []string{"TARIFA"}, Type: "FEE"},
	{Contains: []string{"RESGATE", "CONTAMAX"}, Type: "XFER"},
	{Contains: []string{"DEPOSITO"}, Type: "DEP"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
}

func (e *Santander3Extractor) Classify(description string) string {
	return classifyRules(santander3Rules, description)
}

func (e *Santander3Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	var txns []models.Transaction
	for _, m := range santander3Row.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[2])
		if strings.Contains(strings.ToUpper(desc), "SALDO DO DIA") {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "excluded", Reason: "balance marker",
			})
			continue
		}
		date, ok := isoFromFullDate(m[1])
		if !ok {
			continue
		}
		value, err := parseAmount(m[3])
		if err != nil {
			continue
		}
		debit := strings.HasPrefix(m[3], "-")
		if value < 0 {
			value = -value
		}
		if value == 0 || len(desc) <= 2 {
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       value,
			Type:        models.Credit,
		}
		if debit {
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
