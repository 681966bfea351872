package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// BTGExtractor handles the BTG Pactual statement. The PDF text layer breaks
// digits apart ("0 1/1 0/2 5", "6.3 4 3,4 7"), so a dedicated normalization
// pass reassembles dates and amounts before the value/balance rows are read.
// Rows carry no description column.
type BTGExtractor struct{}

func (e *BTGExtractor) BankID() string   { return "btg" }
func (e *BTGExtractor) BankName() string { return "BTG Pactual" }

var (
	btgDigitGap    = regexp.MustCompile(`\b(\d) (\d)\b`)
	btgSlashGap    = regexp.MustCompile(`(\d)\s*/\s*(\d)`)
	btgDecimalGap  = regexp.MustCompile(`,\s*(\d)\s*(\d)`)
	btgThousandGap = regexp.MustCompile(`(\d)\.\s*(\d)\s*(\d)\s*(\d)`)
	btgAmountGap   = regexp.MustCompile(`(\d) (\d{1,2},\d{2})\b`)
	btgMinusGap    = regexp.MustCompile(`-\s+(\d)`)
	btgRow         = regexp.MustCompile(`(\d{2}/\d{2}/\d{2})\s+(-?[\d.]+,\d{2})\s+([\d.]+,\d{2})`)
)

// btgNormalize collapses the spaces the text layer injects inside numbers.
// The joins are bounded to lone digit fragments and amount tails so the gap
// between the value and balance columns, which is also digit-adjacent, is
// never swallowed. The fragment passes run twice: a first pass over
// "2,0 0 1" can still leave a stray pair behind.
func btgNormalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = btgDigitGap.ReplaceAllString(text, "$1$2")
	text = btgDigitGap.ReplaceAllString(text, "$1$2")
	text = btgSlashGap.ReplaceAllString(text, "$1/$2")
	text = btgDecimalGap.ReplaceAllString(text, ",$1$2")
	text = btgThousandGap.ReplaceAllString(text, "$1.$2$3$4")
	text = btgAmountGap.ReplaceAllString(text, "$1$2")
	text = btgAmountGap.ReplaceAllString(text, "$1$2")
	text = btgMinusGap.ReplaceAllString(text, "-$1")
	return text
}

func (e *BTGExtractor) ValidateFormat(text string) bool {
	if !containsAnyFold(text, []string{"BTG PACTUAL", "BTG"}) {
		return false
	}
	return btgRow.MatchString(btgNormalize(text))
}

var btgRules = []Rule{
	{Contains: []string{"PIX", "TED", "TRANSFERENCIA", "LIQ BOLSA"}, Type: "XFER"},
	{Contains: []string{"AJ POS", "AJ NEG"}, Type: "OTHER"},
	{Contains: []string{"PAGAMENTO", "DARF"}, Type: "PAYMENT"},
	{Contains: []string{"TARIFA"}, Type: "FEE"},
	{Contains: []string{"DEPOSITO"}, Type: "DEP"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
	{Contains: []string{"RENDIMENTO"}, Type: "INT"},
	{Contains: []string{"DÉBITO"}, Type: "DEBIT"},
	{Contains: []string{"CRÉDITO"}, Type: "CREDIT"},
}

func (e *BTGExtractor) Classify(description string) string {
	return classifyRules(btgRules, description)
}

func (e *BTGExtractor) Extract(text string) (*models.Statement, error) {
	text = btgNormalize(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	seen := map[string]bool{}
	var txns []models.Transaction
	for _, m := range btgRow.FindAllStringSubmatch(text, -1) {
		// headers and footers repeat across pages; identical rows count once
		key := m[1] + "-" + m[2] + "-" + m[3]
		if seen[key] {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "skipped", Reason: "repeated page fragment",
			})
			continue
		}
		seen[key] = true

		date, ok := btgDate(m[1])
		if !ok {
			continue
		}
		value, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		balance, err := parseAmount(m[3])
		if err != nil {
			continue
		}

		debit := strings.HasPrefix(m[2], "-")
		if value < 0 {
			value = -value
		}
		if value < 0.01 {
			continue
		}

		txn := models.Transaction{
			Date:    date,
			Value:   value,
			Balance: balance,
			Type:    models.Credit,
		}
		txn.Description = "Crédito BTG"
		if debit {
			txn.Type = models.Debit
			txn.Description = "Débito BTG"
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	st.Transactions = txns
	return st, nil
}

// btgDate expands a DD/MM/YY token, pivoting two-digit years at 50.
func btgDate(ddmmyy string) (string, bool) {
	parts := strings.Split(ddmmyy, "/")
	if len(parts) != 3 {
		return "", false
	}
	day := atoi(parts[0])
	month := atoi(parts[1])
	year := atoi(parts[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	return isoDate(year, month, day), true
}
