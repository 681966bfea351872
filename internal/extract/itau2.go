package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Itau2Extractor handles the Itaú personal statement whose dates come as
// "DD/mmm" abbreviations. The text layer scrambles rows around page breaks
// and month headers, so three passes run in order: rows glued to a month
// header, rows glued to an "atualizado em" page footer, then the regular
// date-chunk walk. Day-balance rows ("SALDO ... DIA") are kept as zero-value
// markers carrying the published balance.
type Itau2Extractor struct{}

func (e *Itau2Extractor) BankID() string   { return "itau2" }
func (e *Itau2Extractor) BankName() string { return "Itaú" }

const itau2Months = `jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez`
const itau2MonthNames = `janeiro|fevereiro|março|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro`

var (
	itau2SlashGap = regexp.MustCompile(`\s*/\s*`)
	itau2Currency = regexp.MustCompile(`R\s*\$\s*`)

	itau2Date        = regexp.MustCompile(`(?i)(\d{2})/(` + itau2Months + `)`)
	itau2MonthHeader = regexp.MustCompile(`(?i)\b(?:` + itau2MonthNames + `)\s+\d{4}\b`)
	itau2Value       = regexp.MustCompile(`-?[\d.]+,\d{2}`)

	// month header glued to a row whose date follows the value
	itau2HeaderRow = regexp.MustCompile(`(?i)\b(?:` + itau2MonthNames + `)\s+\d{4}\s+([A-Z][A-Z0-9\s/\-#]+?)\s+(-?[\d.]+,\d{2})\s+(\d{2})/(` + itau2Months + `)`)
	// page footer glued to a row the same way
	itau2FooterRow = regexp.MustCompile(`(?i)atualizado em \d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2}\s+([A-Z][A-Z\s]+?)\s+(-?[\d.]+,\d{2})\s+(\d{2})/(` + itau2Months + `)`)

	// "DD/mmm SALDO ... DIA 822,27", the date sometimes duplicated
	itau2SaldoDia  = regexp.MustCompile(`(?i)(\d{2})/(?:` + itau2Months + `)\s+(?:\d{2}/(?:` + itau2Months + `)\s+)?SALDO[^\d-]*?(-?[\d.]+,\d{2})`)
	itau2SaldoDesc = regexp.MustCompile(`(?i)\b(REDE|PIX|SISPAG|TAR|IOF)\b`)
	itau2LeadDash  = regexp.MustCompile(`^[-–—\s]+`)
	itau2Spaces    = regexp.MustCompile(`\s+`)

	itau2YearHeader = regexp.MustCompile(`(?i)\b(?:` + itau2MonthNames + `)\s+(\d{4})\b`)
	itau2Updated    = regexp.MustCompile(`(?i)atualizado em \d{2}/\d{2}/(\d{4})`)

	itau2BankMark  = regexp.MustCompile(`(?i)ita[uú]`)
	itau2SectMark  = regexp.MustCompile(`(?i)lan[cç]amentos`)
	itau2ShortDate = regexp.MustCompile(`(?i)\d{2}\s*/\s*(` + itau2Months + `)`)

	// page footers with contact text, removed before any row pass
	itau2Footers = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Em caso de dúvidas,?\s+de posse do comprovante.*?(?:0800\s*\d{3}\s*\d{4}|auditivo/fala.*?0800.*?\d{4})`),
		regexp.MustCompile(`(?is)contate seu gerente ou a Central.*?demais localidades\)?\.?`),
		regexp.MustCompile(`(?is)Reclamações,?\s*informações e cancelamentos.*?www\.itau\.com\.br\S*`),
		regexp.MustCompile(`(?is)Se não ficar satisfeito.*?das\s+\d+h\s+às\s+\d+h\.?`),
		regexp.MustCompile(`(?is)Deficiente auditivo.*?0800\s*\d{3}\s*\d{4}`),
	}
)

func (e *Itau2Extractor) ValidateFormat(text string) bool {
	return itau2BankMark.MatchString(text) &&
		itau2SectMark.MatchString(text) &&
		itau2ShortDate.MatchString(text)
}

func (e *Itau2Extractor) Classify(string) string { return "" }

func (e *Itau2Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	text = itau2SlashGap.ReplaceAllString(text, "/")
	text = itau2Currency.ReplaceAllString(text, "R$")
	for _, f := range itau2Footers {
		text = f.ReplaceAllString(text, " ")
	}

	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}
	year := e.statementYear(text)

	var txns []models.Transaction

	// Rows glued to a month header belong to the DD/mmm date after the value.
	for _, m := range itau2HeaderRow.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[1])
		if strings.Contains(strings.ToUpper(desc), "SALDO") {
			continue
		}
		value, err := parseAmount(m[2])
		if err != nil || value == 0 {
			continue
		}
		txns = append(txns, itau2Row(year, m[3], m[4], desc, value))
	}

	// Rows glued to the page footer, captured only when not already seen.
	for _, m := range itau2FooterRow.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[1])
		if strings.Contains(strings.ToUpper(desc), "SALDO") || len(desc) < 5 {
			continue
		}
		value, err := parseAmount(m[2])
		if err != nil || value == 0 {
			continue
		}
		txn := itau2Row(year, m[3], m[4], desc, value)
		if itau2Seen(txns, txn.Date, "", txn.Value) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "skipped", Reason: "already captured at month header",
			})
			continue
		}
		txns = append(txns, txn)
	}

	// Month headers out of the way, the regular chunk walk can run.
	text = itau2MonthHeader.ReplaceAllString(text, " ")

	dates := itau2Date.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range dates {
		end := len(text)
		if i+1 < len(dates) {
			end = dates[i+1][0]
		}
		chunk := strings.TrimSpace(text[loc[0]:end])
		content := strings.TrimSpace(text[loc[1]:end])

		day := atoi(text[loc[2]:loc[3]])
		month := monthNumber[strings.ToLower(text[loc[4]:loc[5]])]
		date := isoDate(year, month, day)

		upper := strings.ToUpper(content)
		if strings.HasPrefix(upper, "SALDO") ||
			(itau2Word(upper, "SALDO") && itau2Word(upper, "DIA")) {
			txns = e.parseSaldoChunk(chunk, content, date, i, dates, text, year, txns)
			continue
		}

		if len(content) < 3 {
			continue
		}

		values := itau2Value.FindAllStringIndex(content, -1)
		if len(values) == 0 {
			continue
		}

		// Prefer the first value after the last letter; values earlier in the
		// line can be balances repeated by the text layer.
		lastAlpha := itau2LastLetter(content)
		valueLoc := values[0]
		for _, v := range values {
			if v[0] > lastAlpha {
				valueLoc = v
				break
			}
		}

		value, err := parseAmount(content[valueLoc[0]:valueLoc[1]])
		if err != nil || value == 0 {
			continue
		}

		desc := itau2Clean(content[:valueLoc[0]])
		if len(desc) < 2 || strings.Contains(strings.ToUpper(desc), "SALDO") {
			continue
		}
		if itau2Seen(txns, date, desc, abs(value)) {
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       abs(value),
			Type:        models.Credit,
		}
		if value < 0 {
			txn.Type = models.Debit
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	sortByDate(txns)
	st.Period = fmt.Sprintf("%s a %s", txns[0].Date, txns[len(txns)-1].Date)
	st.Transactions = txns
	return st, nil
}

// parseSaldoChunk registers a zero-value marker carrying the day balance and
// recovers the real movement the text layer may have glued after the balance
// amount. A month header inside the tail means that movement belongs to the
// next date in the walk.
func (e *Itau2Extractor) parseSaldoChunk(chunk, content, date string, i int, dates [][]int, text string, year int, txns []models.Transaction) []models.Transaction {
	saldoStr := ""
	saldoValue := 0.0
	if m := itau2SaldoDia.FindStringSubmatch(chunk); m != nil {
		saldoStr = m[2]
		if v, err := parseAmount(saldoStr); err == nil {
			saldoValue = abs(v)
		}
	}

	markerDesc := content
	if loc := itau2SaldoDesc.FindStringIndex(content); loc != nil {
		markerDesc = content[:loc[0]]
	}
	txns = append(txns, models.Transaction{
		Date:        date,
		Description: itau2Clean(markerDesc),
		Value:       0,
		Type:        models.Credit,
		Balance:     saldoValue,
	})

	if saldoStr == "" {
		return txns
	}
	idx := strings.LastIndex(content, saldoStr)
	if idx < 0 {
		return txns
	}
	tail := strings.TrimSpace(content[idx+len(saldoStr):])
	if tail == "" {
		return txns
	}

	txDate := date
	headerLoc := itau2MonthHeader.FindStringIndex(tail)
	if headerLoc != nil && i+1 < len(dates) {
		next := dates[i+1]
		day := atoi(text[next[2]:next[3]])
		month := monthNumber[strings.ToLower(text[next[4]:next[5]])]
		txDate = isoDate(year, month, day)
	}

	tailValues := itau2Value.FindAllStringIndex(tail, -1)
	if len(tailValues) == 0 {
		return txns
	}
	// a value right after a slash is a date fragment, not an amount
	valueLoc := tailValues[0]
	for _, v := range tailValues {
		if v[0] == 0 || tail[v[0]-1] != '/' {
			valueLoc = v
			break
		}
	}
	value, err := parseAmount(tail[valueLoc[0]:valueLoc[1]])
	if err != nil || value == 0 {
		return txns
	}

	descStart := 0
	if headerLoc != nil {
		descStart = headerLoc[1]
	}
	if descStart > valueLoc[0] {
		return txns
	}
	desc := itau2Clean(itau2LeadDash.ReplaceAllString(tail[descStart:valueLoc[0]], ""))
	if desc == "" || itau2Word(strings.ToUpper(desc), "SALDO") {
		return txns
	}
	for _, t := range txns {
		if t.Date == txDate && t.Description == desc && abs(t.Value-abs(value)) < dedupeTolerance {
			return txns
		}
	}

	txn := models.Transaction{
		Date:        txDate,
		Description: desc,
		Value:       abs(value),
		Type:        models.Credit,
	}
	if value < 0 {
		txn.Type = models.Debit
	}
	return append(txns, txn)
}

// statementYear reads the year from a month header, then from the
// "atualizado em" footer, falling back to the current year.
func (e *Itau2Extractor) statementYear(text string) int {
	if m := itau2YearHeader.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := itau2Updated.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	return time.Now().Year()
}

func itau2Row(year int, dayStr, monthAbbr, desc string, value float64) models.Transaction {
	month := monthNumber[strings.ToLower(monthAbbr)]
	txn := models.Transaction{
		Date:        isoDate(year, month, atoi(dayStr)),
		Description: desc,
		Value:       abs(value),
		Type:        models.Credit,
	}
	if value < 0 {
		txn.Type = models.Debit
	}
	return txn
}

// itau2Seen matches by date and value, and by description only when one is
// given. The footer pass has no reliable description to compare.
func itau2Seen(txns []models.Transaction, date, desc string, value float64) bool {
	for _, t := range txns {
		if t.Date != date || abs(t.Value-value) >= dedupeTolerance {
			continue
		}
		if desc == "" || t.Description == desc {
			return true
		}
	}
	return false
}

func itau2Clean(s string) string {
	return strings.TrimSpace(itau2Spaces.ReplaceAllString(s, " "))
}

func itau2Word(upper, word string) bool {
	idx := strings.Index(upper, word)
	for idx >= 0 {
		before := idx == 0 || !unicode.IsLetter(rune(upper[idx-1]))
		afterIdx := idx + len(word)
		after := afterIdx >= len(upper) || !unicode.IsLetter(rune(upper[afterIdx]))
		if before && after {
			return true
		}
		next := strings.Index(upper[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func itau2LastLetter(s string) int {
	for i := len(s); i > 0; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		if unicode.IsLetter(r) {
			return i
		}
	}
	return -1
}
