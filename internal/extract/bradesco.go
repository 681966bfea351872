package extract

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// BradescoExtractor handles the Bradesco statement. The text layer
// concatenates several movements per date segment, so two independent
// strategies parse the whole document and the one that recovers more rows
// wins: a description-first pattern scan, and a value-first scan that pairs
// each amount with its trailing balance column.
type BradescoExtractor struct{}

func (e *BradescoExtractor) BankID() string   { return "bradesco" }
func (e *BradescoExtractor) BankName() string { return "Bradesco" }

var (
	bradescoPeriod  = regexp.MustCompile(`(?i)Entre\s*(\d{2}/\d{2}/\d{4})\s*e\s*(\d{2}/\d{2}/\d{4})`)
	bradescoAccount = regexp.MustCompile(`(?i)Ag[:\s]*(\d+)\s*\|\s*CC[:\s]*(\d+-?\d*)`)
	bradescoEntry   = regexp.MustCompile(`([A-Za-zÀ-ÿ][^0-9]*?)(?:\s+(\d{5,}))?\s+((?:-?\d{1,3}(?:\.\d{3})*,\d{2}\s*)+)`)
	bradescoDocTail = regexp.MustCompile(`\s+(\d{5,})$`)
)

func (e *BradescoExtractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"BRADESCO"}) &&
		(bradescoPeriod.MatchString(text) || bradescoAccount.MatchString(text))
}

func (e *BradescoExtractor) Classify(string) string { return "" }

func (e *BradescoExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	if pm := bradescoPeriod.FindStringSubmatch(text); pm != nil {
		p := period{}
		parseDMY(pm[1], &p.startDay, &p.startMonth, &p.startYear)
		parseDMY(pm[2], &p.endDay, &p.endMonth, &p.endYear)
		st.Period = p.String()
	}

	first := e.parseByEntries(text)
	second := e.parseByValues(text)

	// Whichever strategy recovered more movements is trusted; ties go to the
	// value-first pass.
	txns := first
	if len(second) >= len(first) {
		txns = second
	}
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	sortByDate(txns)
	st.Transactions = txns
	return st, nil
}

// parseByEntries walks date-delimited segments matching description-led
// entries: text, an optional document number, then a run of monetary values
// whose last element is the balance column.
func (e *BradescoExtractor) parseByEntries(text string) []models.Transaction {
	var txns []models.Transaction

	currentDate := ""
	for _, seg := range bradescoSegments(text) {
		if d, ok := bradescoSegmentDate(seg); ok {
			currentDate = d
			continue
		}
		if currentDate == "" || seg == "" {
			continue
		}
		if strings.Contains(seg, "SALDO ANTERIOR") ||
			strings.Contains(seg, "Lançamento") || strings.Contains(seg, "Crédito (R$)") ||
			strings.Contains(seg, "Total Disponível") {
			continue
		}

		for _, m := range bradescoEntry.FindAllStringSubmatch(seg, -1) {
			desc := strings.TrimSpace(m[1])
			if desc == "" || desc == "SALDO" || strings.HasPrefix(desc, "Total") {
				continue
			}

			values := moneyPattern.FindAllString(m[3], -1)
			if len(values) == 0 {
				continue
			}

			// the last value is the balance; the amount is the first non-zero
			// value before it
			amount := 0.0
			found := false
			for i, v := range values {
				if i == len(values)-1 && len(values) > 1 {
					continue
				}
				n, err := parseAmount(v)
				if err != nil || n == 0 {
					continue
				}
				amount = n
				found = true
				break
			}
			if !found {
				continue
			}
			balance, _ := parseAmount(values[len(values)-1])

			txn := models.Transaction{
				Date:        currentDate,
				Description: desc,
				Value:       amount,
				Balance:     balance,
				Type:        models.Credit,
				Document:    m[2],
			}
			if amount < 0 {
				txn.Value = -amount
				txn.Type = models.Debit
			}
			txns = append(txns, txn)
		}
	}
	return txns
}

// parseByValues trims the table frame, then pairs each monetary value with
// the one that follows it (amount, balance), taking the text in between as
// the description.
func (e *BradescoExtractor) parseByValues(text string) []models.Transaction {
	if idx := strings.Index(text, "Saldo (R$)"); idx > 0 {
		text = text[idx+len("Saldo (R$)"):]
	}
	for _, footer := range []string{"Os dados acima", "Últimos Lançamentos", "Saldos Invest"} {
		if idx := strings.Index(text, footer); idx > 0 {
			text = text[:idx]
		}
	}

	var txns []models.Transaction
	currentDate := ""
	for _, seg := range bradescoSegments(text) {
		if d, ok := bradescoSegmentDate(seg); ok {
			currentDate = d
			continue
		}
		if currentDate == "" || seg == "" || strings.Contains(seg, "SALDO ANTERIOR") {
			continue
		}

		values := moneyPattern.FindAllStringIndex(seg, -1)
		lastEnd := 0
		for v := 0; v < len(values); v++ {
			loc := values[v]
			// a value glued right after the previous one is that row's balance
			if v > 0 && loc[0]-values[v-1][1] < 3 {
				continue
			}

			raw := seg[lastEnd:loc[0]]
			desc := strings.TrimSpace(bradescoDocTail.ReplaceAllString(strings.TrimSpace(raw), ""))
			if len(desc) < 3 || desc == "Total" || strings.Contains(desc, "Total ") {
				continue
			}
			document := ""
			if dm := bradescoDocTail.FindStringSubmatch(strings.TrimSpace(raw)); dm != nil {
				document = dm[1]
			}

			amount, err := parseAmount(seg[loc[0]:loc[1]])
			if err != nil || amount == 0 {
				continue
			}
			balance := amount
			if v+1 < len(values) {
				balance, _ = parseAmount(seg[values[v+1][0]:values[v+1][1]])
			}

			txn := models.Transaction{
				Date:        currentDate,
				Description: desc,
				Value:       amount,
				Balance:     balance,
				Type:        models.Credit,
				Document:    document,
			}
			if amount < 0 {
				txn.Value = -amount
				txn.Type = models.Debit
			}
			txns = append(txns, txn)

			if v+1 < len(values) {
				lastEnd = values[v+1][1]
				v++
			} else {
				lastEnd = loc[1]
			}
		}
	}
	return txns
}

// bradescoSegments splits the text on full dates, keeping the dates as their
// own segments.
func bradescoSegments(text string) []string {
	locs := fullDatePattern.FindAllStringIndex(text, -1)
	var segs []string
	prev := 0
	for _, loc := range locs {
		segs = append(segs, strings.TrimSpace(text[prev:loc[0]]))
		segs = append(segs, text[loc[0]:loc[1]])
		prev = loc[1]
	}
	segs = append(segs, strings.TrimSpace(text[prev:]))
	return segs
}

func bradescoSegmentDate(seg string) (string, bool) {
	if len(seg) != 10 || !fullDatePattern.MatchString(seg) {
		return "", false
	}
	return isoFromFullDate(seg)
}
