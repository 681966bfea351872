package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// PagSeguroExtractor handles the PagBank statement: full-dated rows after a
// "Descrição Data Valor" header, debits carrying a -R$ amount.
type PagSeguroExtractor struct{}

func (e *PagSeguroExtractor) BankID() string   { return "pagseguro" }
func (e *PagSeguroExtractor) BankName() string { return "PagSeguro" }

var (
	pagseguroHeader = regexp.MustCompile(`(?i)Descri[çc][aã]o\s+Data\s+Valor`)
	pagseguroRow    = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?R\$[\d.,]+)`)
)

func (e *PagSeguroExtractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"PAGSEGURO", "PAGBANK"}) &&
		pagseguroRow.MatchString(NormalizeText(text))
}

var pagseguroRules = []Rule{
	{Contains: []string{"PIX RECEBIDO", "PIX ENVIADO", "QR CODE PIX"}, Type: "XFER"},
	{Contains: []string{"PAGAMENTO DE CONTA", "PAGAMENTO DE FATURA"}, Type: "PAYMENT"},
	{Contains: []string{"RENDIMENTO"}, Type: "INT"},
	{Contains: []string{"CARTÃO DE CRÉDITO", "DARF"}, Type: "PAYMENT"},
}

func (e *PagSeguroExtractor) Classify(description string) string {
	return classifyRules(pagseguroRules, description)
}

func (e *PagSeguroExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	if loc := pagseguroHeader.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}

	var txns []models.Transaction
	for _, m := range pagseguroRow.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[2])
		if strings.Contains(strings.ToLower(desc), "saldo do dia") {
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
	sortByDate(txns)
	applyRunningBalance(txns, 0)
	st.Transactions = txns
	return st, nil
}
