package extract

import "regexp"

// Sicredi's tabular statement (Data, Descrição, Documento, Valor, Saldo)
// fits the declarative layout shape: full dates, signed amounts, a balance
// column, and a SALDO ANTERIOR seed row that is skipped.
var sicrediLayouts = []Layout{
	{
		Version:       "v1",
		PeriodPattern: regexp.MustCompile(`(?i)per[íi]odo\s+(\d{2}/\d{2}/\d{4})\s+a\s+(\d{2}/\d{2}/\d{4})`),
		MovementsAnchor: "Data Descrição Documento",
		RowPattern: regexp.MustCompile(
			`(\d{2}/\d{2}/\d{4}) (.+?) (\S+) (-?\d{1,3}(?:\.\d{3})*,\d{2}) (-?\d{1,3}(?:\.\d{3})*,\d{2})`),
		RowGroups: RowGroups{Date: 1, Name: 2, Document: 3, Amount: 4, Balance: 5},
		FullDates: true,
		SkipNamePrefixes: []string{"SALDO ANTERIOR", "SALDO EM", "SALDO BLOQUEADO"},
		HeaderKeywords:   []string{"DESCRIÇÃO DOCUMENTO", "OUVIDORIA", "SAC "},
	},
}

var sicrediRules = []Rule{
	{Contains: []string{"PIX RECEBIDO", "LIQ.COBRANCA", "LIQ COBRANCA", "COBRANCA"}, Type: "DEP"},
	{Contains: []string{"PIX"}, Type: "XFER"},
	{Contains: []string{"TED", "TRANSFERENCIA"}, Type: "XFER"},
	{Contains: []string{"BOLETO", "LIQUIDACAO"}, Type: "PAYMENT"},
	{Contains: []string{"TARIFA"}, Type: "FEE"},
	{Contains: []string{"FOLHA", "PAGTO", "PAGAMENTO"}, Type: "PAYMENT"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
	{Contains: []string{"IOF", "JUROS"}, Type: "INT"},
}

func newSicrediExtractor() *layoutExtractor {
	return &layoutExtractor{
		id:      "sicredi",
		name:    "Sicredi",
		layouts: sicrediLayouts,
		markers: []string{"SICREDI"},
		rules:   sicrediRules,
	}
}
