package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// StoneExtractor handles the Stone statement: DD/MM/YY rows labeled
// Entrada/Saída, followed by the amount and the post-transaction balance.
type StoneExtractor struct{}

func (e *StoneExtractor) BankID() string   { return "stone" }
func (e *StoneExtractor) BankName() string { return "Stone" }

var stoneRow = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+(Entrada|Saída)\s+(.+?)\s+(-?R?\$? ?[\d.,]+)\s+R\$([\d.,]+)`)

func (e *StoneExtractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"STONE"}) &&
		stoneRow.MatchString(NormalizeText(text))
}

var stoneRules = []Rule{
	{Contains: []string{"PIX", "TRANSFERÊNCIA"}, Type: "XFER"},
	{Contains: []string{"RECEBIMENTO", "VENDAS"}, Type: "PAYMENT"},
	{Contains: []string{"INVESTIMENTO"}, Type: "OTHER"},
	{Contains: []string{"TARIFA", "TAXA"}, Type: "SRVCHG"},
}

func (e *StoneExtractor) Classify(description string) string {
	return classifyRules(stoneRules, description)
}

func (e *StoneExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	var txns []models.Transaction
	for _, m := range stoneRow.FindAllStringSubmatch(text, -1) {
		date, ok := btgDate(m[1])
		if !ok {
			continue
		}
		value, err := parseAmount(m[4])
		if err != nil {
			continue
		}
		if value < 0 {
			value = -value
		}
		balance, err := parseAmount(m[5])
		if err != nil {
			balance = 0
		}

		txn := models.Transaction{
			Date:        date,
			Description: strings.TrimSpace(m[3]),
			Value:       value,
			Balance:     balance,
			Type:        models.Credit,
		}
		if strings.EqualFold(m[2], "Saída") {
			txn.Type = models.Debit
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
