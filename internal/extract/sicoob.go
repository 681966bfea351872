package extract

import "regexp"

// Sicoob ships four statement layout versions. All of them fit the
// declarative layout shape, so a single descriptor-driven extractor handles
// the family; the layouts are tried newest first and selected by whichever
// period header matches.

var sicoobDailyBalance = regexp.MustCompile(`(\d{2}/\d{2}) SALDO DO DIA (?:R\$)?([\d.,]+) ?([DC*])`)

var sicoobLayouts = []Layout{
	{
		// v4: Documento column, amounts glued to a D/C/* indicator
		Version:       "v4",
		PeriodPattern: regexp.MustCompile(`Período:\s*(\d{2}/\d{2}/\d{4})\s*a\s*(\d{2}/\d{2}/\d{4})`),
		MovementsAnchor: "DATA DOCUMENTO HISTÓRICO VALOR",
		RowPattern: regexp.MustCompile(
			`(\d{2}/\d{2}) (?:([0-9][0-9.\-]*) )?(.+?) (?:R\$)?(\d{1,3}(?:\.\d{3})*,\d{2})([CD*])`),
		RowGroups: RowGroups{Date: 1, Document: 2, Name: 3, Amount: 4, DC: 5},
		SkipNamePrefixes: []string{
			"SALDO DO DIA", "SALDO ANTERIOR", "SALDO BLOQUEADO", "RESUMO",
		},
		HeaderKeywords: []string{
			"DOCUMENTO HISTÓRICO", "EXTRATO CONTA", "OUVIDORIA", "SAC ",
		},
		DailyBalancePattern: sicoobDailyBalance,
	},
	{
		// v3: same row shape without the documento column
		Version:       "v3",
		PeriodPattern: regexp.MustCompile(`Período de (\d{2}/\d{2}/\d{4}) a (\d{2}/\d{2}/\d{4})`),
		MovementsAnchor: "DATA HISTÓRICO VALOR",
		RowPattern: regexp.MustCompile(
			`(\d{2}/\d{2}) (.+?) (?:R\$)?(\d{1,3}(?:\.\d{3})*,\d{2})([CD*])`),
		RowGroups: RowGroups{Date: 1, Name: 2, Amount: 3, DC: 4},
		SkipNamePrefixes: []string{
			"SALDO DO DIA", "SALDO ANTERIOR", "SALDO BLOQUEADO",
		},
		HeaderKeywords: []string{"HISTÓRICO VALOR", "OUVIDORIA", "SAC "},
		DailyBalancePattern: sicoobDailyBalance,
	},
	{
		// v2: internet-banking export, full dates on every row
		Version:       "v2",
		PeriodPattern: regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+a\s+(\d{2}/\d{2}/\d{4})`),
		MovementsAnchor: "LANÇAMENTOS",
		RowPattern: regexp.MustCompile(
			`(\d{2}/\d{2}/\d{4}) (.+?) (\d{1,3}(?:\.\d{3})*,\d{2})([CD*])`),
		RowGroups: RowGroups{Date: 1, Name: 2, Amount: 3, DC: 4},
		FullDates: true,
		SkipNamePrefixes: []string{
			"SALDO DO DIA", "SALDO ANTERIOR", "SALDO BLOQUEADO",
		},
		HeaderKeywords: []string{"OUVIDORIA", "SAC "},
	},
	{
		// v1: oldest layout, dash-separated period
		Version:       "v1",
		PeriodPattern: regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s*[-–]\s*(\d{2}/\d{2}/\d{4})`),
		MovementsAnchor: "MOVIMENTAÇÃO",
		RowPattern: regexp.MustCompile(
			`(\d{2}/\d{2}) (.+?) (?:R\$)?(\d{1,3}(?:\.\d{3})*,\d{2})([CD*])`),
		RowGroups: RowGroups{Date: 1, Name: 2, Amount: 3, DC: 4},
		SkipNamePrefixes: []string{
			"SALDO DO DIA", "SALDO ANTERIOR",
		},
		HeaderKeywords: []string{"OUVIDORIA", "SAC "},
		DailyBalancePattern: sicoobDailyBalance,
	},
}

var sicoobRules = []Rule{
	{Contains: []string{"PIX RECEBIDO", "RECEBIMENTO PIX"}, Type: "DEP"},
	{Contains: []string{"PIX ENVIADO", "PAGAMENTO PIX"}, Type: "XFER"},
	{Contains: []string{"TED", "TRANSFERENCIA", "TRANSF"}, Type: "XFER"},
	{Contains: []string{"TARIFA"}, StartsWith: []string{"TAR "}, Type: "FEE"},
	{Contains: []string{"SAQUE"}, Type: "ATM"},
	{Contains: []string{"DEPOSITO", "DEPÓSITO"}, Type: "DEP"},
	{Contains: []string{"JUROS", "RENDIMENTO", "IOF"}, Type: "INT"},
	{Contains: []string{"CARTAO", "CARTÃO", "COMPRA"}, Type: "POS"},
	{Contains: []string{"PAGAMENTO", "DEB.AUTOR", "DEBITO AUTOMATICO"}, Type: "PAYMENT"},
	{Contains: []string{"CHEQUE"}, Type: "CHECK"},
}

func newSicoobExtractor() *layoutExtractor {
	return &layoutExtractor{
		id:      "sicoob",
		name:    "Sicoob",
		layouts: sicoobLayouts,
		markers: []string{"SICOOB", "COOPERATIVA DE CRÉDITO"},
		rules:   sicoobRules,
	}
}
