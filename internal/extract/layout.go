package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Layout is a declarative description of one statement format: how to read
// the period header, where the movements table starts, what a transaction
// row looks like, and which rows are not transactions. Several banks emit
// multiple format versions that differ only in these patterns; describing
// them as data lets one extractor handle the whole family.
type Layout struct {
	Version string

	// PeriodPattern captures the statement period; group 1 is the start
	// date and group 2 the end date, both DD/MM/YYYY.
	PeriodPattern *regexp.Regexp

	// MovementsAnchor marks where the transaction rows begin.
	MovementsAnchor string

	// RowPattern matches one transaction row inside the movements section.
	RowPattern *regexp.Regexp
	RowGroups  RowGroups

	// FullDates is set when the row date group carries a year (DD/MM/YYYY);
	// otherwise the year is inferred from the period.
	FullDates bool

	// SkipNamePrefixes marks rows as non-transactional by description prefix.
	SkipNamePrefixes []string

	// HeaderKeywords reject rows whose description is really a table header
	// or boilerplate fragment.
	HeaderKeywords []string

	// DailyBalancePattern captures SALDO-style rows: group 1 the date (same
	// format as row dates), group 2 the amount, optional group 3 a D/C
	// indicator. Matches feed the reconciliation side table.
	DailyBalancePattern *regexp.Regexp
}

// RowGroups gives the capture-group index of each row field. Zero means the
// field is not present in the layout.
type RowGroups struct {
	Date     int
	Document int
	Name     int
	Amount   int
	DC       int
	Balance  int
}

// layoutExtractor is the descriptor-driven extractor shared by banks whose
// statement versions fit the declarative shape.
type layoutExtractor struct {
	id      string
	name    string
	layouts []Layout
	markers []string // format-validation markers, accent-insensitive
	rules   []Rule
}

func (e *layoutExtractor) BankID() string   { return e.id }
func (e *layoutExtractor) BankName() string { return e.name }

func (e *layoutExtractor) Classify(description string) string {
	return classifyRules(e.rules, description)
}

func (e *layoutExtractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	if !containsAnyFold(text, e.markers) {
		return false
	}
	for _, l := range e.layouts {
		if l.PeriodPattern.MatchString(text) {
			return true
		}
	}
	return false
}

func (e *layoutExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)

	st := &models.Statement{BankID: e.id, BankName: e.name}

	layout, m := e.matchLayout(text)
	if layout == nil {
		return nil, &SectionNotFoundError{Bank: e.name, Section: "period header"}
	}
	p := period{}
	parseDMY(m[1], &p.startDay, &p.startMonth, &p.startYear)
	parseDMY(m[2], &p.endDay, &p.endMonth, &p.endYear)
	st.Period = p.String()

	movements, degraded := locateMovements(text, layout.MovementsAnchor)
	if degraded {
		st.Degraded = true
		st.Trace = append(st.Trace, models.TraceEvent{
			Row:    layout.MovementsAnchor,
			Action: "recovered",
			Reason: "movements anchor not found, scanning whole document",
		})
	}

	daily := e.collectDailyBalances(movements, layout, p)

	txns := e.extractRows(movements, layout, p, st)
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	txns = dedupeTransactions(txns)
	sortByDate(txns)
	reconcileBalances(txns, daily, 0)

	st.Transactions = txns
	return st, nil
}

// matchLayout picks the first layout whose period header matches the text.
func (e *layoutExtractor) matchLayout(text string) (*Layout, []string) {
	for i := range e.layouts {
		if m := e.layouts[i].PeriodPattern.FindStringSubmatch(text); m != nil {
			return &e.layouts[i], m
		}
	}
	return nil, nil
}

// locateMovements restricts extraction to the text after the movements
// anchor. The anchor is searched verbatim, then accent-stripped and
// case-insensitive; when both fail the whole document is scanned in
// degraded mode.
func locateMovements(text, anchor string) (section string, degraded bool) {
	if anchor == "" {
		return text, false
	}
	if idx := strings.Index(text, anchor); idx >= 0 {
		return text[idx:], false
	}
	if idx := foldIndex(text, anchor); idx >= 0 {
		return text[idx:], false
	}
	return text, true
}

// foldIndex finds needle in text comparing accent-stripped upper-case forms,
// returning the byte offset in the original text. Accent stripping changes
// byte lengths, so an offset map is kept while folding.
func foldIndex(text, needle string) int {
	var folded strings.Builder
	offsets := make([]int, 0, len(text))
	for i, r := range text {
		before := folded.Len()
		folded.WriteString(foldKey(string(r)))
		for j := before; j < folded.Len(); j++ {
			offsets = append(offsets, i)
		}
	}
	idx := strings.Index(folded.String(), foldKey(needle))
	if idx < 0 || idx >= len(offsets) {
		return -1
	}
	return offsets[idx]
}

func (e *layoutExtractor) collectDailyBalances(movements string, layout *Layout, p period) map[string]float64 {
	daily := map[string]float64{}
	if layout.DailyBalancePattern == nil {
		return daily
	}
	for _, m := range layout.DailyBalancePattern.FindAllStringSubmatch(movements, -1) {
		date, ok := e.rowDate(m[1], layout, p)
		if !ok {
			continue
		}
		bal, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		if len(m) > 3 && m[3] == "D" {
			bal = -bal
		}
		daily[date] = bal
	}
	return daily
}

func (e *layoutExtractor) extractRows(movements string, layout *Layout, p period, st *models.Statement) []models.Transaction {
	var txns []models.Transaction

	matches := layout.RowPattern.FindAllStringSubmatch(movements, -1)
	for _, m := range matches {
		g := layout.RowGroups
		rawDate := m[g.Date]
		name := strings.TrimSpace(m[g.Name])

		date, ok := e.rowDate(rawDate, layout, p)
		if !ok {
			// A page number or stray digit pair was captured as the date.
			// Page breaks can fold a legitimate row into this chunk, so
			// re-scan its lines for an embedded valid date + amount before
			// giving up on it.
			if rec, found := recoverRow(m[0], p); found {
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: m[0], Action: "recovered", Reason: "invalid leading date",
				})
				txns = append(txns, rec)
			} else {
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: m[0], Action: "skipped", Reason: "date out of range",
				})
			}
			continue
		}

		if containsAnyFold(name, layout.HeaderKeywords) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "skipped", Reason: "table header fragment",
			})
			continue
		}
		if hasSkipPrefix(name, layout.SkipNamePrefixes) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "excluded", Reason: "non-transaction marker",
			})
			continue
		}
		// A second date inside the description means the row regex crossed a
		// row boundary (PDF line merge); drop rather than emit garbage.
		if !layout.FullDates && dayMonthPattern.MatchString(name) {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "skipped", Reason: "merged rows",
			})
			continue
		}

		value, err := parseAmount(m[g.Amount])
		if err != nil {
			st.Trace = append(st.Trace, models.TraceEvent{
				Row: m[0], Action: "skipped", Reason: "amount unparsable",
			})
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: truncate(name, 100),
			Value:       value,
			Type:        models.Credit,
		}
		if g.DC > 0 {
			switch m[g.DC] {
			case "D":
				txn.Type = models.Debit
			case "C":
				txn.Type = models.Credit
			case "*":
				st.Trace = append(st.Trace, models.TraceEvent{
					Row: m[0], Action: "excluded", Reason: "starred (blocked) entry",
				})
				continue
			}
		} else if value < 0 || strings.HasPrefix(strings.TrimSpace(m[g.Amount]), "-") {
			txn.Type = models.Debit
		}
		if txn.Value < 0 {
			txn.Value = -txn.Value
		}
		if g.Document > 0 {
			txn.Document = strings.TrimSpace(m[g.Document])
		}
		if g.Balance > 0 && m[g.Balance] != "" {
			if bal, err := parseAmount(m[g.Balance]); err == nil {
				txn.Balance = bal
			}
		}

		txns = append(txns, txn)
	}

	return txns
}

// rowDate converts a layout row date token to ISO form.
func (e *layoutExtractor) rowDate(raw string, layout *Layout, p period) (string, bool) {
	if layout.FullDates {
		return isoFromFullDate(raw)
	}
	if !validDayMonth(raw) {
		return "", false
	}
	parts := strings.SplitN(raw, "/", 2)
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	return isoDate(p.inferYear(month), month, day), true
}

// recoverRow scans a rejected chunk for an embedded full date followed by a
// monetary value, emitting a best-effort transaction when one is found. The
// chunk arrives flattened by NormalizeText, so it is a single line.
func recoverRow(raw string, p period) (models.Transaction, bool) {
	dm := fullDatePattern.FindStringIndex(raw)
	if dm == nil {
		return models.Transaction{}, false
	}
	date, ok := isoFromFullDate(raw[dm[0]:dm[1]])
	if !ok {
		return models.Transaction{}, false
	}
	rest := raw[dm[1]:]
	token, pos, found := lastMoneyToken(rest)
	if !found {
		return models.Transaction{}, false
	}
	value, err := parseAmount(token)
	if err != nil {
		return models.Transaction{}, false
	}
	txn := models.Transaction{
		Date:        date,
		Description: truncate(strings.TrimSpace(rest[:pos]), 100),
		Value:       value,
		Type:        models.Credit,
	}
	if value < 0 {
		txn.Value = -value
		txn.Type = models.Debit
	}
	return txn, true
}

func hasSkipPrefix(name string, prefixes []string) bool {
	folded := foldKey(name)
	for _, pre := range prefixes {
		if strings.HasPrefix(folded, foldKey(pre)) {
			return true
		}
	}
	return false
}

func parseDMY(s string, day, month, year *int) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return
	}
	*day, _ = strconv.Atoi(parts[0])
	*month, _ = strconv.Atoi(parts[1])
	*year, _ = strconv.Atoi(parts[2])
}
