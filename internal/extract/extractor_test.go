package extract

import "testing"

func TestNewRegistry(t *testing.T) {
	ids := []string{
		"sicoob", "sicoob2", "sicoob3", "sicredi", "sicredi2",
		"itau", "itau2", "bb", "bb2", "bradesco",
		"santander", "santander2", "santander3", "safra", "safra2",
		"xp", "pagseguro", "stone", "btg", "nubank", "sisprime", "cora",
	}
	for _, id := range ids {
		e, err := New(id)
		if err != nil {
			t.Errorf("New(%q) returned error: %v", id, err)
			continue
		}
		if e.BankID() != id {
			t.Errorf("New(%q).BankID() = %q", id, e.BankID())
		}
		if e.BankName() == "" {
			t.Errorf("New(%q).BankName() is empty", id)
		}
	}
}

func TestNewUnknownBank(t *testing.T) {
	if _, err := New("acme"); err == nil {
		t.Error("expected error for unknown bank id")
	}
}

func TestBanks(t *testing.T) {
	banks := Banks()
	if len(banks) != 22 {
		t.Fatalf("expected 22 banks, got %d", len(banks))
	}
	if banks[0].ID != "bb" {
		t.Errorf("expected menu order to start with bb, got %q", banks[0].ID)
	}
	seen := map[string]bool{}
	for _, b := range banks {
		if seen[b.ID] {
			t.Errorf("duplicate bank id %q", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestClassifyFallbackBanks(t *testing.T) {
	// layouts with no description rules defer to the serializer's
	// credit/debit mapping
	for _, id := range []string{"itau", "itau2", "bb", "bb2", "bradesco", "santander2", "cora"} {
		e, err := New(id)
		if err != nil {
			t.Fatalf("New(%q): %v", id, err)
		}
		if got := e.Classify("PIX RECEBIDO JOAO"); got != "" {
			t.Errorf("%s.Classify = %q, want empty", id, got)
		}
	}
}
