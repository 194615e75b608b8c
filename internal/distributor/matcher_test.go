package distributor_test

import (
	"testing"

	"github.com/ricirt/report-robot/internal/distributor"
	"github.com/ricirt/report-robot/internal/domain"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		tab   string
		want  bool
	}{
		{"entry contains tab", "0009 - Juan Perez", "juan perez", true},
		{"tab contains entry", "Juan", "  0009-JUAN PEREZ ", true},
		{"case and whitespace ignored", "  ana gomez", "ANA GOMEZ  ", true},
		{"unrelated", "0012 - Ana", "Luis", false},
		{"empty tab never matches", "0012 - Ana", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distributor.Matches(tt.entry, tt.tab); got != tt.want {
				t.Fatalf("Matches(%q, %q) = %v, want %v", tt.entry, tt.tab, got, tt.want)
			}
		})
	}
}

func TestFindRecipient_FirstMatchWins(t *testing.T) {
	recipients := []domain.Recipient{
		{Name: "0001 - Ana Maria", DocumentID: "a"},
		{Name: "0002 - Ana", DocumentID: "b"},
	}
	rec, ok := distributor.FindRecipient(recipients, "ANA")
	if !ok || rec.DocumentID != "a" {
		t.Fatalf("expected first entry in order, got %+v (ok=%v)", rec, ok)
	}
	if _, ok := distributor.FindRecipient(recipients, "Pedro"); ok {
		t.Fatal("expected no match")
	}
}

func TestRecipientCode(t *testing.T) {
	tests := map[string]string{
		"0009-Juan Perez":  "0009",
		"123456 - Empresa": "123456",
		"123-Corto":        "123-C",
		"Ñandú López":      "Ñandú",
		"Ana":              "Ana",
	}
	for in, want := range tests {
		if got := distributor.RecipientCode(in); got != want {
			t.Errorf("RecipientCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDestinationTabName(t *testing.T) {
	tests := []struct {
		reportType  string
		recipient   string
		wantName    string
		wantGeneric bool
	}{
		{"REPORTE SIGO", "0009 - Juan Perez", "REPORTE SIGO - 0009-Juan Perez", true},
		{"REPORTE SIGO", "0009-Juan Perez", "REPORTE SIGO - 0009-Juan Perez", true},
		{"Stock", "Ana Gomez", "Stock - Ana G-Ana Gomez", true},
		{"Ventas (Ene 26)", "0009 - Juan Perez", "Ventas (Ene 26)", false},
		{"Cuentas Corrientes", "0009 - Juan Perez", "Cuentas Corrientes", false},
	}
	for _, tt := range tests {
		t.Run(tt.reportType+"/"+tt.recipient, func(t *testing.T) {
			name, generic := distributor.DestinationTabName(tt.reportType, tt.recipient)
			if name != tt.wantName || generic != tt.wantGeneric {
				t.Fatalf("got (%q, %v), want (%q, %v)", name, generic, tt.wantName, tt.wantGeneric)
			}
		})
	}
}
