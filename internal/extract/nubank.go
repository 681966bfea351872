package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// NubankExtractor handles the Nubank statement, which groups movements under
// "DD MMM YYYY" day headers with "Total de entradas" and "Total de saídas"
// summary markers splitting each day into a credit and a debit section.
type NubankExtractor struct{}

func (e *NubankExtractor) BankID() string   { return "nubank" }
func (e *NubankExtractor) BankName() string { return "Nubank" }

var (
	nubankDayHeader = regexp.MustCompile(`(?i)\b(\d{2})\s+(JAN|FEV|MAR|ABR|MAI|JUN|JUL|AGO|SET|OUT|NOV|DEZ)\s+(\d{4})\b`)
	nubankEntradas  = regexp.MustCompile(`(?i)Total de entradas\s*\+\s*[\d.,]+`)
	nubankSaidas    = regexp.MustCompile(`(?i)Total de saídas\s*-\s*[\d.,]+`)
	nubankSaldoDia  = regexp.MustCompile(`(?i)Saldo do dia\s*[\d.,]+`)
	nubankValue     = regexp.MustCompile(`[\d.]+,\d{2}`)
	nubankLeadSep   = regexp.MustCompile(`^\s*[-|]\s*`)
	nubankSummary   = regexp.MustCompile(`(?i)^(total|saldo)`)
)

// nubankCreditHints infer the direction when a day has no section markers.
var nubankCreditHints = []string{
	"RECEBIDO", "ENTRADA", "CRÉDITO", "ESTORNO", "PAGAMENTO RECEBIDO",
}

func (e *NubankExtractor) ValidateFormat(text string) bool {
	text = NormalizeText(text)
	return containsAnyFold(text, []string{"NUBANK", "NU PAGAMENTOS"}) &&
		nubankDayHeader.MatchString(text)
}

func (e *NubankExtractor) Classify(description string) string {
	upper := strings.ToUpper(description)
	if strings.Contains(upper, "PIX") &&
		(strings.Contains(upper, "ENVIADO") || strings.Contains(upper, "ENVIADA")) {
		return "XFER"
	}
	if strings.Contains(upper, "PIX") && strings.Contains(upper, "RECEBIDO") {
		return "DEP"
	}
	if strings.Contains(upper, "TRANSFERÊNCIA") && strings.Contains(upper, "ENVIADA") {
		return "XFER"
	}
	return classifyRules(nubankRules, description)
}

var nubankRules = []Rule{
	{Contains: []string{"PAGAMENTO RECEBIDO"}, Type: "DEP"},
	{Contains: []string{"TED", "DOC"}, Type: "XFER"},
	{Contains: []string{"TARIFA", "TAR "}, Type: "FEE"},
	{Contains: []string{"BOLETO"}, Type: "PAYMENT"},
	{Contains: []string{"ESTORNO"}, Type: "CREDIT"},
}

func (e *NubankExtractor) Extract(text string) (*models.Statement, error) {
	text = NormalizeText(text)
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	headers := nubankDayHeader.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "day headers"}
	}

	var txns []models.Transaction
	for i, h := range headers {
		day, _ := strconv.Atoi(text[h[2]:h[3]])
		month := monthNumber[strings.ToLower(text[h[4]:h[5]])]
		year, _ := strconv.Atoi(text[h[6]:h[7]])
		date := isoDate(year, month, day)

		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		chunk := text[h[0]:end]

		entradaLoc := nubankEntradas.FindStringIndex(chunk)
		saidaLoc := nubankSaidas.FindStringIndex(chunk)
		saldoPos := len(chunk)
		if loc := nubankSaldoDia.FindStringIndex(chunk); loc != nil {
			saldoPos = loc[0]
		}

		if entradaLoc != nil {
			sectionEnd := saldoPos
			if saidaLoc != nil {
				sectionEnd = saidaLoc[0]
			}
			txns = append(txns, nubankSection(chunk[entradaLoc[1]:sectionEnd], date, models.Credit, nil)...)
		}
		if saidaLoc != nil {
			txns = append(txns, nubankSection(chunk[saidaLoc[1]:saldoPos], date, models.Debit, nil)...)
		}
		if entradaLoc == nil && saidaLoc == nil {
			// no section markers: read past the header and infer each row's
			// direction from its wording
			txns = append(txns, nubankSection(chunk[h[1]-h[0]:saldoPos], date, "", nubankCreditHints)...)
		}
	}

	// Repeated rows are kept on purpose: identical same-day tariffs are
	// legitimate distinct movements in this layout.
	if len(txns) == 0 {
		return st, ErrNoTransactions
	}
	applyRunningBalance(txns, 0)
	st.Transactions = txns
	return st, nil
}

// nubankSection slices a day section into rows: each standalone monetary
// token closes a row whose description is the text since the previous token.
// A fixed direction applies when the section marker gave one; otherwise
// creditHints decide per row, defaulting to debit.
func nubankSection(section, date, direction string, creditHints []string) []models.Transaction {
	var txns []models.Transaction
	lastEnd := 0
	for _, loc := range nubankValue.FindAllStringIndex(section, -1) {
		if loc[0] < lastEnd {
			continue
		}
		// the token must stand alone between spaces, not inside a document
		// number or CNPJ
		if loc[0] == 0 || section[loc[0]-1] != ' ' {
			continue
		}
		if loc[1] < len(section) && section[loc[1]] != ' ' {
			continue
		}
		value, err := parseAmount(section[loc[0]:loc[1]])
		if err != nil || value == 0 {
			continue
		}

		desc := strings.TrimSpace(section[lastEnd:loc[0]])
		desc = strings.TrimSpace(nubankLeadSep.ReplaceAllString(desc, ""))
		lastEnd = loc[1]
		if len(desc) < 3 || nubankSummary.MatchString(desc) {
			continue
		}

		txn := models.Transaction{
			Date:        date,
			Description: desc,
			Value:       value,
			Type:        direction,
		}
		if direction == "" {
			txn.Type = models.Debit
			if containsAny(strings.ToUpper(desc), creditHints) {
				txn.Type = models.Credit
			}
		}
		txns = append(txns, txn)
	}
	return txns
}
