package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// CoraExtractor handles the Cora SCFI statement. Each day opens with a
// "DD/MM/YYYY Saldo do dia R$ X" block and its movements follow as
// "+/- R$ valor descrição" pairs, the description trailing the amount. All
// movements of a day carry that day's published balance.
type CoraExtractor struct{}

func (e *CoraExtractor) BankID() string   { return "cora" }
func (e *CoraExtractor) BankName() string { return "Cora" }

var (
	coraPeriod   = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s*a\s*(\d{2}/\d{2}/\d{4})`)
	coraSaldoDia = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s*Saldo do dia\s*R\$\s*([\d.,]+)`)
	coraValue    = regexp.MustCompile(`([+-])\s*R\$\s*([\d.,]+)`)
	coraSummary  = regexp.MustCompile(`(?i)^(Total de|Saldo inicial|Saldo final)`)

	coraEntradas = regexp.MustCompile(`(?i)Total de entradas\s*\+?\s*R\$\s*([\d.,]+)`)
	coraSaidas   = regexp.MustCompile(`(?i)Total de sa[ií]das\s*-?\s*R\$\s*([\d.,]+)`)

	// page headers glued into descriptions by the text layer
	coraHeaderFragments = []*regexp.Regexp{
		regexp.MustCompile(`(?i)GRUPO REVOLUTION.*?Conta:\s*[\d-]+`),
		regexp.MustCompile(`(?i)Cora SCFI.*?(?:Extrato do per[íi]odo|per[íi]odo)`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s*a\s*\d{2}/\d{2}/\d{4}`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s*Saldo do dia\s*R\$\s*[\d.,]+`),
		regexp.MustCompile(`(?i)Impresso em.*$`),
	}
)

func (e *CoraExtractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	return containsAnyFold(text, []string{"CORA SCFI", "CORA"}) &&
		coraSaldoDia.MatchString(text)
}

func (e *CoraExtractor) Classify(string) string { return "" }

func (e *CoraExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	if pm := coraPeriod.FindStringSubmatch(text); pm != nil {
		st.Period = fmt.Sprintf("%s a %s", pm[1], pm[2])
	}

	blocks := coraSaldoDia.FindAllStringSubmatchIndex(text, -1)
	if len(blocks) == 0 {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "daily balance blocks"}
	}

	var txns []models.Transaction
	for i, b := range blocks {
		date, ok := isoFromFullDate(text[b[2]:b[3]])
		if !ok {
			continue
		}
		saldo, err := parseAmount(text[b[4]:b[5]])
		if err != nil {
			continue
		}

		end := len(text)
		if i+1 < len(blocks) {
			end = blocks[i+1][0]
		}
		block := text[b[1]:end]

		values := coraValue.FindAllStringSubmatchIndex(block, -1)
		for j, v := range values {
			value, err := parseAmount(block[v[4]:v[5]])
			if err != nil {
				continue
			}

			descEnd := len(block)
			if j+1 < len(values) {
				descEnd = values[j+1][0]
			}
			desc := strings.TrimSpace(block[v[1]:descEnd])
			for _, frag := range coraHeaderFragments {
				desc = strings.TrimSpace(frag.ReplaceAllString(desc, ""))
			}
			if len(desc) < 3 || coraSummary.MatchString(desc) {
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: block[v[0]:descEnd], Action: "skipped", Reason: "summary or page fragment",
				})
				continue
			}

			txn := models.Transaction{
				Date:        date,
				Description: truncate(desc, 200),
				Value:       value,
				Balance:     saldo,
				Type:        models.Credit,
			}
			if block[v[2]:v[3]] == "-" {
				txn.Type = models.Debit
			}
			txns = append(txns, txn)
		}
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	sortByDate(txns)

	// The printed totals double-check the extraction; a mismatch is recorded
	// but does not fail the run.
	e.checkTotals(text, txns, st)

	st.Transactions = txns
	return st, nil
}

func (e *CoraExtractor) checkTotals(text string, txns []models.Transaction, st *models.Statement) {
	credits, debits := 0.0, 0.0
	for _, t := range txns {
		if t.Type == models.Credit {
			credits += t.Value
		} else {
			debits += t.Value
		}
	}
	if m := coraEntradas.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil && abs(v-credits) >= 1 {
			st.Trace = append(st.Trace, models.TraceEvent{
				Action: "skipped",
				Reason: fmt.Sprintf("entradas mismatch: extracted %.2f, printed %.2f", credits, v),
			})
		}
	}
	if m := coraSaidas.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil && abs(v-debits) >= 1 {
			st.Trace = append(st.Trace, models.TraceEvent{
				Action: "skipped",
				Reason: fmt.Sprintf("saídas mismatch: extracted %.2f, printed %.2f", debits, v),
			})
		}
	}
}
