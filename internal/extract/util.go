package extract

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Date and amount token patterns shared across extractors.
var (
	// DD/MM without year
	dayMonthPattern = regexp.MustCompile(`\b(\d{2}/\d{2})\b`)
	// DD/MM/YYYY
	fullDatePattern = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)
	// pt-BR monetary value: 1.234,56 with optional leading minus
	moneyPattern = regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})*,\d{2}`)
	// period header "DD/MM/YYYY a DD/MM/YYYY" with flexible wording before it
	periodRangePattern = regexp.MustCompile(`(?i)per[íi]odo\s*(?:de\s*)?(\d{2}/\d{2}/\d{4})\s*a\s*(\d{2}/\d{2}/\d{4})`)
)

// monthNumber maps Portuguese month names and abbreviations to 1-12.
var monthNumber = map[string]int{
	"jan": 1, "fev": 2, "mar": 3, "abr": 4, "mai": 5, "jun": 6,
	"jul": 7, "ago": 8, "set": 9, "out": 10, "nov": 11, "dez": 12,
	"janeiro": 1, "fevereiro": 2, "marco": 3, "março": 3, "abril": 4,
	"maio": 5, "junho": 6, "julho": 7, "agosto": 8, "setembro": 9,
	"outubro": 10, "novembro": 11, "dezembro": 12,
}

// parseAmount converts a pt-BR formatted amount ("1.234,56", "-R$ 10,00")
// to a float64. The thousands separator is a dot and the decimal separator
// a comma.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// validDayMonth reports whether a DD/MM token is a plausible calendar date.
// Page numbers and stray digit pairs routinely match the date pattern; this
// is the first filter against them.
func validDayMonth(dayMonth string) bool {
	parts := strings.SplitN(dayMonth, "/", 2)
	if len(parts) != 2 {
		return false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	return day >= 1 && day <= 31 && month >= 1 && month <= 12
}

// isoDate builds a YYYY-MM-DD string.
func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// isoFromFullDate converts DD/MM/YYYY to YYYY-MM-DD; ok is false when the
// token is not a valid calendar date.
func isoFromFullDate(ddmmyyyy string) (string, bool) {
	parts := strings.Split(ddmmyyyy, "/")
	if len(parts) != 3 {
		return "", false
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 {
		return "", false
	}
	return isoDate(year, month, day), true
}

// period is the statement coverage range parsed from the header, used to
// attach years to day/month-only dates.
type period struct {
	startDay, startMonth, startYear int
	endDay, endMonth, endYear       int
}

// parsePeriodRange reads a "DD/MM/YYYY a DD/MM/YYYY" header.
func parsePeriodRange(text string) (period, bool) {
	m := periodRangePattern.FindStringSubmatch(text)
	if m == nil {
		return period{}, false
	}
	p := period{}
	fmt.Sscanf(m[1], "%d/%d/%d", &p.startDay, &p.startMonth, &p.startYear)
	fmt.Sscanf(m[2], "%d/%d/%d", &p.endDay, &p.endMonth, &p.endYear)
	return p, true
}

func (p period) String() string {
	return fmt.Sprintf("%02d/%02d/%04d a %02d/%02d/%04d",
		p.startDay, p.startMonth, p.startYear, p.endDay, p.endMonth, p.endYear)
}

// inferYear decides which year a day/month-only date belongs to. For a
// period crossing a year boundary, months before the period's start month
// (and not after its end month) fall in the end year.
func (p period) inferYear(month int) int {
	if p.startYear != p.endYear && month < p.startMonth && month <= p.endMonth {
		return p.endYear
	}
	return p.startYear
}

// chunk is a slice of movements text owned by one date token: from the
// token's position up to the next date token (or end of text).
type chunk struct {
	date string // the raw date token, layout-specific format
	text string // includes the date token itself
}

// splitByDates partitions text into chunks bounded by consecutive matches of
// the given date pattern. The pattern's first capture group (or the whole
// match) is taken as the date token.
func splitByDates(text string, datePattern *regexp.Regexp) []chunk {
	locs := datePattern.FindAllStringSubmatchIndex(text, -1)
	chunks := make([]chunk, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		tokenStart, tokenEnd := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			tokenStart, tokenEnd = loc[2], loc[3]
		}
		chunks = append(chunks, chunk{
			date: text[tokenStart:tokenEnd],
			text: strings.TrimSpace(text[start:end]),
		})
	}
	return chunks
}

// lastMoneyToken returns the last pt-BR monetary value in s and its byte
// offset, or ok=false when none is present.
func lastMoneyToken(s string) (token string, pos int, ok bool) {
	locs := moneyPattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return "", 0, false
	}
	last := locs[len(locs)-1]
	return s[last[0]:last[1]], last[0], true
}

// dedupeTolerance is the amount tolerance used when comparing candidate
// duplicate rows produced by recovery passes.
const dedupeTolerance = 0.01

// dedupeTransactions drops rows whose (date, description, value) triple
// matches an earlier row, with values compared within a small tolerance.
// Recovery passes can re-emit a row that the main pass already captured;
// this accepts the (rare) risk of collapsing two genuinely identical
// movements.
func dedupeTransactions(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		dup := false
		for _, kept := range out {
			if kept.Date == t.Date && kept.Description == t.Description &&
				math.Abs(kept.Value-t.Value) <= dedupeTolerance {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// sortByDate orders transactions oldest first. The sort is stable so rows
// within one day keep their extracted order, which the balance chain
// depends on.
func sortByDate(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date < txns[j].Date
	})
}

// truncate limits a description to max bytes without splitting the string
// mid-rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func containsAnyFold(text string, needles []string) bool {
	folded := foldKey(text)
	for _, n := range needles {
		if strings.Contains(folded, foldKey(n)) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func abs(v float64) float64 {
	return math.Abs(v)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
