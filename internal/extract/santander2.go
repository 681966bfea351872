package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Santander2Extractor handles the app export grouped by weekday headers
// ("Segunda, 30 de junho de 2025"); each section lists upper-case
// descriptions followed by a DEBITO/CREDITO label and an R$ amount.
type Santander2Extractor struct{}

func (e *Santander2Extractor) BankID() string   { return "santander2" }
func (e *Santander2Extractor) BankName() string { return "Santander 2" }

var (
	santander2DayHeader = regexp.MustCompile(`(?i)(?:Segunda|Terça|Quarta|Quinta|Sexta|Sábado|Domingo)[,\s]+(\d{1,2})\s+de\s+(\w+)\s+de\s+(\d{4})`)
	santander2Entry     = regexp.MustCompile(`(?i)([A-ZÁÉÍÓÚÀÃÕÇÊ][A-ZÁÉÍÓÚÀÃÕÇÊ\s./\-]+?)\s+(DEBITO|CREDITO)\s+R\$([\d.,]+)`)
)

func (e *Santander2Extractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	return containsAnyFold(text, []string{"SANTANDER"}) &&
		santander2DayHeader.MatchString(text) &&
		santander2Entry.MatchString(text)
}

func (e *Santander2Extractor) Classify(string) string { return "" }

func (e *Santander2Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	headers := santander2DayHeader.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "weekday headers"}
	}

	var txns []models.Transaction
	for i, h := range headers {
		day, _ := strconv.Atoi(text[h[2]:h[3]])
		month, ok := monthNumber[strings.ToLower(text[h[4]:h[5]])]
		if !ok {
			month = 1
		}
		year, _ := strconv.Atoi(text[h[6]:h[7]])
		date := isoDate(year, month, day)

		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		section := text[h[0]:end]

		for _, m := range santander2Entry.FindAllStringSubmatch(section, -1) {
			desc := strings.TrimSpace(m[1])
			if len(desc) < 3 {
				continue
			}
			if containsAny(desc, []string{"SAC", "ATENDIMENTO", "OUVIDORIA", "CENTRAL"}) {
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: m[0], Action: "skipped", Reason: "statement frame",
				})
				continue
			}
			value, err := parseAmount(m[3])
			if err != nil || value == 0 {
				continue
			}
			if value < 0 {
				value = -value
			}

			txn := models.Transaction{
				Date:        date,
				Description: desc,
				Value:       value,
				Type:        models.Credit,
			}
			if strings.EqualFold(m[2], "DEBITO") {
				txn.Type = models.Debit
			}
			txns = append(txns, txn)
		}
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	sortByDate(txns)
	applyRunningBalance(txns, 0)
	st.Period = fmt.Sprintf("%s a %s", txns[0].Date, txns[len(txns)-1].Date)
	st.Transactions = txns
	return st, nil
}
