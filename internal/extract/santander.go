package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/extrato-ofx/internal/models"
)

// SantanderExtractor handles the Santander PJ statement. The text layer
// emits one column cell per line, so this is a line state machine: a bare
// DD/MM line opens a date, description lines accumulate, and a bare value
// line (debits carry a trailing dash) closes the transaction.
type SantanderExtractor struct{}

func (e *SantanderExtractor) BankID() string   { return "santander" }
func (e *SantanderExtractor) BankName() string { return "Santander" }

var (
	santanderYear      = regexp.MustCompile(`(?i)(?:janeiro|fevereiro|março|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)/(\d{4})`)
	santanderDateLine  = regexp.MustCompile(`^(\d{2}/\d{2})$`)
	santanderValueLine = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})*,\d{2})(-)?$`)
	santanderTailValue = regexp.MustCompile(`\d+,\d{2}-?$`)
	santanderDescValue = regexp.MustCompile(`^(.+?)\s+(\d{1,3}(?:\.\d{3})*,\d{2})(-)?$`)
	santanderDocLine   = regexp.MustCompile(`^(?:\d{6}|\d{4}/\d+|\d{16}\s*/\s*\d+|\d+\s*/\s*\d+)$`)
)

// santanderSkipKeywords drop frame lines; any of them also resets the
// pending description so a value after a page break is not misattributed.
var santanderSkipKeywords = []string{
	"SALDO ANTERIOR", "SALDO TOTAL", "SALDO FINAL", "SALDO DISPONÍVEL",
	"SALDO EM", "SALDO BLOQUEIO", "CENTRAL DE ATENDIMENTO", "SAC",
	"www.santander", "EXTRATO DE CONTA", "Data Histórico", "MOVIMENTAÇÃO",
	"Movimentação", "Descrição", "Nº Documento", "Movimentos (R$)",
	"Saldo (R$)", "Pagina:", "BALP_", "Extrato_PJ",
	"setembro/", "outubro/", "novembro/", "dezembro/", "janeiro/",
	"fevereiro/", "março/", "abril/", "maio/", "junho/", "julho/", "agosto/",
}

// santanderNewEntryKeywords mark a description line as the start of a new
// movement rather than a continuation of the pending one.
var santanderNewEntryKeywords = []string{"PIX", "PAGAMENTO", "TARIFA", "RESGATE", "CR COB"}

func (e *SantanderExtractor) ValidateFormat(text string) bool {
	return containsAnyFold(text, []string{"SANTANDER"}) &&
		(santanderYear.MatchString(text) || strings.Contains(text, "Extrato_PJ"))
}

var santanderRules = []Rule{
	{Contains: []string{"PIX ENVIADO", "PIX TRANSF"}, Type: "XFER"},
	{Contains: []string{"PIX RECEBIDO"}, Type: "DEP"},
	{Contains: []string{"TED", "TRANSFERENCIA"}, Type: "XFER"},
	{Contains: []string{"PAGAMENTO", "PAG "}, Type: "PAYMENT"},
	{Contains: []string{"TARIFA", "TAR "}, Type: "FEE"},
	{Contains: []string{"RESGATE", "CONTAMAX"}, Type: "XFER"},
	{Contains: []string{"CR COB", "RECEBIMENTO"}, Type: "DEP"},
	{Contains: []string{"DARF", "IOF"}, Type: "PAYMENT"},
	{Contains: []string{"APLICACAO"}, Type: "XFER"},
	{Contains: []string{"BAIXA", "DUPL"}, Type: "PAYMENT"},
	{Contains: []string{"ENCARGOS"}, Type: "FEE"},
}

func (e *SantanderExtractor) Classify(description string) string {
	return classifyRules(santanderRules, description)
}

func (e *SantanderExtractor) Extract(text string) (*models.Statement, error) {
	st := &models.Statement{BankID: e.BankID(), BankName: e.BankName()}

	year := 0
	if m := santanderYear.FindStringSubmatch(text); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	if year == 0 {
		return nil, &SectionNotFoundError{Bank: e.BankName(), Section: "month/year header"}
	}

	var txns []models.Transaction
	currentDate := ""
	pending := ""

	emit := func(desc, amountStr string, debit bool) {
		amount, err := parseAmount(amountStr)
		if err != nil || amount <= 0 {
			return
		}
		parts := strings.SplitN(currentDate, "/", 2)
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		txn := models.Transaction{
			Date:        isoDate(year, month, day),
			Description: desc,
			Value:       amount,
			Type:        models.Credit,
		}
		if debit {
			txn.Type = models.Debit
		}
		txns = append(txns, txn)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if containsAnyFold(line, santanderSkipKeywords) {
			pending = ""
			continue
		}

		if m := santanderDateLine.FindStringSubmatch(line); m != nil && validDayMonth(m[1]) {
			currentDate = m[1]
			pending = ""
			continue
		}
		if currentDate == "" {
			continue
		}

		if m := santanderValueLine.FindStringSubmatch(line); m != nil {
			if pending != "" {
				emit(pending, m[1], m[2] == "-")
				pending = ""
			}
			continue
		}

		if santanderDocLine.MatchString(line) {
			if pending != "" {
				pending += " " + line
			}
			continue
		}
		if line == "-" {
			continue
		}

		if !santanderTailValue.MatchString(line) {
			// counterparty names continue the pending entry; known operation
			// keywords start a new one
			if pending != "" && len(line) < 40 && !containsAny(line, santanderNewEntryKeywords) {
				pending += " " + line
			} else {
				pending = line
			}
			continue
		}

		if m := santanderDescValue.FindStringSubmatch(line); m != nil {
			desc := strings.TrimSpace(m[1])
			if len(desc) > 2 {
				emit(desc, m[2], m[3] == "-")
			}
		}
		pending = ""
	}

	if len(txns) == 0 {
		return st, ErrNoTransactions
	}

	applyRunningBalance(txns, 0)
	st.Transactions = txns
	return st, nil
}
