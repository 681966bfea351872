package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Sicoob3Extractor handles the cooperative's printed counter statement:
// full-dated rows that run into multi-line descriptions and marketing
// footers, with "SALDO DO DIA" separators publishing the daily balances as
// "=> valor D/C" fragments on the following line.
type Sicoob3Extractor struct{}

func (e *Sicoob3Extractor) BankID() string   { return "sicoob3" }
func (e *Sicoob3Extractor) BankName() string { return "Sicoob 3" }

var (
	sicoob3SaldoSplit = regexp.MustCompile(`(?i)SALDO\s+DO\s+DIA`)
	sicoob3SaldoValue = regexp.MustCompile(`^\s*[=>\s]+\s*([\d.,]+)([DC*])`)
	sicoob3Row        = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+([A-Za-z0-9]+)\s+(.+?)\s+(\d{1,3}(?:\.\d{3})*,\d{2})([DC*])(.*)`)
	sicoob3RowNoDoc   = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(\d{1,3}(?:\.\d{3})*,\d{2})([DC*])(.*)`)
	sicoob3AltRow     = regexp.MustCompile(`(?i)^(\d{2}/\d{2}/\d{4})\s+([A-Za-z0-9]+)\s+(.+?)\s+([\d.,]+)([DC])`)
	sicoob3AltNoDoc   = regexp.MustCompile(`(?i)^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+([\d.,]+)([DC])`)
)

// sicoob3Footers start the boilerplate that PDF extraction glues onto the
// tail of a row's description.
var sicoob3Footers = []string{
	"CHEQUE ESPECIAL", "LIMITES DE CRÉDITO", "PREVISÃO CPMF", "Acesse o menu",
}

func (e *Sicoob3Extractor) ValidateFormat(text string) bool {
	upper := foldKey(text)
	if !strings.Contains(upper, "SICOOB") {
		return false
	}
	return strings.Contains(upper, "SALDO DO DIA") ||
		strings.Contains(upper, "EXTRATO") ||
		fullDatePattern.MatchString(text)
}

func (e *Sicoob3Extractor) Classify(description string) string {
	upper := strings.ToUpper(description)
	if strings.Contains(upper, "PIX") &&
		(strings.Contains(upper, "RECEB") || strings.Contains(upper, "CRÉD") || strings.Contains(upper, "CRED") ||
			strings.Contains(upper, "EMIT") || strings.Contains(upper, "ENVIADO")) {
		return "XFER"
	}
	return classifyRules(sicoob3Rules, description)
}

var sicoob3Rules = []Rule{
	{Contains: []string{"TED", "TRANSF"}, Type: "XFER"},
	{Contains: []string{"TARIFA", "IOF"}, Type: "FEE"},
	{Contains: []string{"DÉB", "DEB"}, Type: "PAYMENT"},
	{Contains: []string{"CRÉD", "CRED"}, Type: "CREDIT"},
}

func (e *Sicoob3Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	p, ok := sicoob3Period(text)
	if !ok {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "dated rows"}
	}
	st.Period = p.String()

	daily := sicoob3DailyBalances(text)

	txns := e.parseRows(text, st)
	if len(txns) == 0 {
		txns = e.parseLoose(text)
		if len(txns) > 0 {
			st.Degraded = true
			st.Trace = append(st.Trace, models.TraceEvent{
				Action: "recovered",
				Reason: "strict row shape found nothing, loose pass used",
			})
		}
	}
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	applyRunningBalance(txns, 0)
	sortByDate(txns)
	adjustPublishedDays(txns, daily)

	st.Transactions = txns
	return st, nil
}

// sicoob3Period derives the coverage range from the dated rows themselves:
// this layout has no period header, so the earliest and latest full dates in
// the document stand in for it.
func sicoob3Period(text string) (period, bool) {
	dates := fullDatePattern.FindAllString(text, -1)
	if len(dates) < 2 {
		return period{}, false
	}
	iso := make([]string, 0, len(dates))
	byISO := map[string]string{}
	for _, d := range dates {
		if v, ok := isoFromFullDate(d); ok {
			iso = append(iso, v)
			byISO[v] = d
		}
	}
	if len(iso) < 2 {
		return period{}, false
	}
	sort.Strings(iso)
	p := period{}
	parseDMY(byISO[iso[0]], &p.startDay, &p.startMonth, &p.startYear)
	parseDMY(byISO[iso[len(iso)-1]], &p.endDay, &p.endMonth, &p.endYear)
	return p, true
}

// sicoob3DailyBalances pairs each SALDO DO DIA separator with the last date
// seen before it and the "=> valor D/C" fragment printed after it.
func sicoob3DailyBalances(text string) map[string]float64 {
	daily := map[string]float64{}
	parts := sicoob3SaldoSplit.Split(text, -1)
	for i := 0; i < len(parts)-1; i++ {
		dates := fullDatePattern.FindAllString(parts[i], -1)
		if len(dates) == 0 {
			continue
		}
		date, ok := isoFromFullDate(dates[len(dates)-1])
		if !ok {
			continue
		}
		m := sicoob3SaldoValue.FindStringSubmatch(parts[i+1])
		if m == nil {
			continue
		}
		bal, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		if m[2] == "D" {
			bal = -bal
		}
		daily[date] = bal
	}
	return daily
}

func (e *Sicoob3Extractor) parseRows(text string, st *models.Statement) []models.Transaction {
	var txns []models.Transaction
	for _, c := range splitByDates(text, fullDatePattern) {
		var date, document, desc, valueStr, dc, tail string
		if m := sicoob3Row.FindStringSubmatch(c.text); m != nil {
			date, document, desc, valueStr, dc, tail = m[1], m[2], m[3], m[4], m[5], m[6]
		} else if m := sicoob3RowNoDoc.FindStringSubmatch(c.text); m != nil {
			date, desc, valueStr, dc, tail = m[1], m[2], m[3], m[4], m[5]
		} else {
			continue
		}

		desc = strings.TrimSpace(desc)
		if sicoob3SkipDescription(desc) {
			continue
		}
		iso, ok := isoFromFullDate(date)
		if !ok || date[6] < '2' {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "skipped", Reason: "date out of range",
			})
			continue
		}
		if dc == "*" {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: c.text, Action: "excluded", Reason: "starred (blocked) entry",
			})
			continue
		}
		value, err := parseAmount(valueStr)
		if err != nil {
			continue
		}

		if extra := sicoob3CleanTail(tail); extra != "" {
			desc = desc + " | " + extra
		}

		txn := models.Transaction{
			Date:        iso,
			Description: truncate(desc, 200),
			Value:       value,
			Type:        models.Credit,
		}
		if dc == "D" {
			txn.Type = models.Debit
		}
		if document != "" && document != "Pix" {
			txn.Document = document
		}
		txns = append(txns, txn)
	}
	return txns
}

// parseLoose is the fallback when the strict row shape matches nothing:
// same chunking, looser amount token, no tail handling.
func (e *Sicoob3Extractor) parseLoose(text string) []models.Transaction {
	var txns []models.Transaction
	for _, c := range splitByDates(text, fullDatePattern) {
		var date, document, desc, valueStr, dc string
		if m := sicoob3AltRow.FindStringSubmatch(c.text); m != nil {
			date, document, desc, valueStr, dc = m[1], m[2], m[3], m[4], strings.ToUpper(m[5])
		} else if m := sicoob3AltNoDoc.FindStringSubmatch(c.text); m != nil {
			date, desc, valueStr, dc = m[1], m[2], m[3], strings.ToUpper(m[4])
		} else {
			continue
		}

		desc = strings.TrimSpace(desc)
		if sicoob3SkipDescription(desc) {
			continue
		}
		iso, ok := isoFromFullDate(date)
		if !ok || date[6] < '2' {
			continue
		}
		value, err := parseAmount(valueStr)
		if err != nil {
			continue
		}

		txn := models.Transaction{
			Date:        iso,
			Description: truncate(desc, 150),
			Value:       value,
			Type:        models.Credit,
		}
		if dc == "D" {
			txn.Type = models.Debit
		}
		if document != "" && document != "Pix" {
			txn.Document = document
		}
		txns = append(txns, txn)
	}
	return txns
}

func sicoob3SkipDescription(desc string) bool {
	upper := strings.ToUpper(desc)
	return strings.Contains(upper, "SALDO") ||
		strings.Contains(desc, "HISTÓRICO") ||
		strings.Contains(desc, "DOCUMENTO")
}

// sicoob3CleanTail keeps the continuation text glued after the D/C indicator,
// dropping the marketing footer and any SALDO DO DIA fragment.
func sicoob3CleanTail(tail string) string {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return ""
	}
	for _, f := range sicoob3Footers {
		if idx := strings.Index(tail, f); idx >= 0 {
			tail = tail[:idx]
		}
	}
	if idx := sicoob3SaldoSplit.FindStringIndex(tail); idx != nil {
		tail = tail[:idx[0]]
	}
	return strings.TrimSpace(tail)
}

// adjustPublishedDays rewrites the balance chain of each day that has a
// published closing balance, leaving other days on the plain running chain.
func adjustPublishedDays(txns []models.Transaction, daily map[string]float64) {
	if len(daily) == 0 {
		return
	}
	for i := 0; i < len(txns); {
		j := i
		for j < len(txns) && txns[j].Date == txns[i].Date {
			j++
		}
		if published, ok := daily[txns[i].Date]; ok {
			delta := 0.0
			for k := i; k < j; k++ {
				delta += txns[k].SignedValue()
			}
			bal := published - delta
			for k := i; k < j; k++ {
				bal = round2(bal + txns[k].SignedValue())
				txns[k].Balance = bal
			}
		}
		i = j
	}
}
