package extract

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace runs",
			in:   "PIX   RECEBIDO\n\tJOAO",
			want: "PIX RECEBIDO JOAO",
		},
		{
			name: "joins split date tokens",
			in:   "27 / 11 / 2025",
			want: "27/11/2025",
		},
		{
			name: "joins split currency symbol",
			in:   "R $ 1.234,56",
			want: "R$1.234,56",
		},
		{
			name: "trims surrounding space",
			in:   "  saldo anterior  ",
			want: "saldo anterior",
		},
		{
			name: "mixed",
			in:   " 01 / 03/2024  PIX  R $150,00 ",
			want: "01/03/2024 PIX R$150,00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"27 / 11 / 2025  R $ 1.234,56",
		"Período de 01/03/2024 a 31/03/2024",
		"",
		"   \t\n  ",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("NormalizeText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestFoldKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Histórico", "HISTORICO"},
		{"LANÇAMENTOS", "LANCAMENTOS"},
		{"Período", "PERIODO"},
		{"saldo", "SALDO"},
	}
	for _, tt := range tests {
		if got := foldKey(tt.in); got != tt.want {
			t.Errorf("foldKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
