package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// Sicoob2Extractor handles the Sisbr account statement export:
// DD/MM documento histórico R$ valor D/C rows under a
// "HISTÓRICO DE MOVIMENTAÇÃO" header, with SALDO DO DIA rows publishing
// daily balances.
type Sicoob2Extractor struct{}

func (e *Sicoob2Extractor) BankID() string   { return "sicoob2" }
func (e *Sicoob2Extractor) BankName() string { return "Sicoob 2" }

var (
	sicoob2Period = regexp.MustCompile(`(?i)per[íi]odo:?\s*(\d{2}/\d{2}/\d{4})\s*[-–]\s*(\d{2}/\d{2}/\d{4})`)
	sicoob2Saldo  = regexp.MustCompile(`(\d{2}/\d{2}) SALDO DO DIA R\$([\d.,]+) ?([DC])`)
	sicoob2Row    = regexp.MustCompile(`(\d{2}/\d{2}) ([A-Za-z0-9\-.]+) (.+?) R\$([\d.,]+) ?([DC])`)
	sicoob2Chunk  = regexp.MustCompile(`^(\d{2}/\d{2}) ([A-Za-z0-9\-.]+) (.+?) R\$([\d.,]+) ?([DC])`)
)

func (e *Sicoob2Extractor) ValidateFormat(text string) bool {
	upper := strings.ToUpper(text)
	markers := 0
	for _, m := range []bool{
		strings.Contains(upper, "SICOOB"),
		strings.Contains(upper, "SISBR"),
		strings.Contains(upper, "EXTRATO"),
		strings.Contains(upper, "CONTA"),
		strings.Contains(upper, "COOPERATIVA"),
		regexp.MustCompile(`(?i)per[íi]odo`).MatchString(text),
		strings.Contains(upper, "MOVIMENTAÇÃO") || strings.Contains(upper, "MOVIMENTACAO"),
	} {
		if m {
			markers++
		}
	}
	return markers >= 4
}

func (e *Sicoob2Extractor) Classify(description string) string {
	return classifyRules(sicoob2Rules, description)
}

var sicoob2Rules = []Rule{
	{Contains: []string{"PIX RECEBIDO", "TRANSF.RECEBIDA", "CRED.TRANSF"}, Type: "DEP"},
	{Contains: []string{"PIX EMITIDO", "PIX ENVIADO"}, Type: "XFER"},
	{Contains: []string{"TED", "TRANSF"}, Type: "XFER"},
	{Contains: []string{"TARIFA"}, StartsWith: []string{"TAR "}, Type: "FEE"},
	{Contains: []string{"JUROS", "IOF", "RENDIMENTO"}, Type: "INT"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
	{Contains: []string{"DEPOSITO", "DEPÓSITO"}, Type: "DEP"},
	{Contains: []string{"PAGAMENTO", "DEB.AUTOR"}, Type: "PAYMENT"},
	{Contains: []string{"COMPRA", "CARTAO", "CARTÃO"}, Type: "POS"},
}

func (e *Sicoob2Extractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	pm := sicoob2Period.FindStringSubmatch(text)
	if pm == nil {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "period header"}
	}
	p := period{}
	parseDMY(pm[1], &p.startDay, &p.startMonth, &p.startYear)
	parseDMY(pm[2], &p.endDay, &p.endMonth, &p.endYear)
	st.Period = p.String()

	movements, degraded := locateMovements(text, "HISTÓRICO DE MOVIMENTAÇÃO")
	st.Degraded = degraded

	daily := map[string]float64{}
	for _, m := range sicoob2Saldo.FindAllStringSubmatch(movements, -1) {
		date, ok := sicoob2Date(m[1], p)
		if !ok {
			continue
		}
		bal, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		if m[3] == "D" {
			bal = -bal
		}
		daily[date] = bal
	}

	txns := e.collectRows(sicoob2Row.FindAllStringSubmatch(movements, -1), p, st)

	// Alternative strategy when the flat regex finds nothing: split the text
	// into date-led chunks and match each chunk's head. Kept as a separate
	// pass on purpose; whichever finds rows wins.
	if len(txns) == 0 {
		txns = e.collectChunks(movements, p, st)
	}
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	sortByDate(txns)
	reconcileBalances(txns, daily, 0)
	st.Transactions = txns
	return st, nil
}

func (e *Sicoob2Extractor) collectRows(matches [][]string, p period, st *models.Statement) []models.Transaction {
	var txns []models.Transaction
	for _, m := range matches {
		desc := strings.TrimSpace(m[3])

		if strings.Contains(desc, "SALDO DO DIA") || strings.Contains(desc, "SALDO ANTERIOR") ||
			strings.Contains(desc, "SALDO BLOQ") || strings.HasPrefix(desc, "SALDO ") {
			st.Trace = append(st.Trace, models.TraceEvent{Row: m[0], Action: "excluded", Reason: "balance marker"})
			continue
		}
		if (strings.Contains(desc, "Data") && strings.Contains(desc, "Documento")) ||
			(strings.Contains(desc, "Histórico") && strings.Contains(desc, "Valor")) {
			st.Trace = append(st.Trace, models.TraceEvent{Row: m[0], Action: "skipped", Reason: "table header"})
			continue
		}

		date, ok := sicoob2Date(m[1], p)
		if !ok {
			st.Trace = append(st.Trace, models.TraceEvent{Row: m[0], Action: "skipped", Reason: "date out of range"})
			continue
		}
		value, err := parseAmount(m[4])
		if err != nil {
			st.Trace = append(st.Trace, models.TraceEvent{Row: m[0], Action: "skipped", Reason: "amount unparsable"})
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: truncate(desc, 100),
			Value:       value,
			Type:        models.Credit,
		}
		if m[5] == "D" {
			txn.Type = models.Debit
		}
		// "Pix" in the documento column is a channel label, not a reference
		if doc := strings.TrimSpace(m[2]); doc != "Pix" {
			txn.Document = doc
		}
		txns = append(txns, txn)
	}
	return txns
}

func (e *Sicoob2Extractor) collectChunks(movements string, p period, st *models.Statement) []models.Transaction {
	var txns []models.Transaction
	for _, c := range splitByDates(movements, dayMonthPattern) {
		m := sicoob2Chunk.FindStringSubmatch(c.text)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[3])
		if strings.Contains(desc, "SALDO") ||
			(strings.Contains(desc, "Data") && strings.Contains(desc, "Documento")) {
			continue
		}
		date, ok := sicoob2Date(m[1], p)
		if !ok {
			continue
		}
		value, err := parseAmount(m[4])
		if err != nil {
			continue
		}
		txn := models.Transaction{
			Date:        date,
			Description: truncate(desc, 100),
			Value:       value,
			Type:        models.Credit,
		}
		if m[5] == "D" {
			txn.Type = models.Debit
		}
		if doc := strings.TrimSpace(m[2]); doc != "Pix" {
			txn.Document = doc
		}
		txns = append(txns, txn)
	}
	return txns
}

func sicoob2Date(dayMonth string, p period) (string, bool) {
	if !validDayMonth(dayMonth) {
		return "", false
	}
	parts := strings.SplitN(dayMonth, "/", 2)
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	return isoDate(p.inferYear(month), month, day), true
}
