package domain_test

import (
	"testing"
	"time"

	"github.com/ricirt/report-robot/internal/domain"
)

func TestIsEligibleInputFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Ventas 02-01 al 31-01.xlsx", true},
		{"CUENTAS.XLSX", true},
		{"~$Ventas.xlsx", false},
		{"notes.pdf", false},
		{"report.xls", false},
	}
	for _, tc := range tests {
		if got := domain.IsEligibleInputFile(tc.name); got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestReportTypeForFile(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		file string
		want string
	}{
		{"Reporte Ventas - Cordoba - 02-01 al 31-01.xlsx", "Ventas (Ene 26)"},
		{"Ventas Sucursal Norte 15-12 al 31-12.xlsx", "Ventas (Dic 26)"},
		{"VENTAS - 01-03 al 30-03.xlsx", "Ventas (Mar 26)"},
		{"Reporte Ventas - 05-07-2025 al 31-07-2025.xlsx", "Ventas (Jul 25)"},
		{"Ventas sin fecha.xlsx", "Ventas (General)"},
		{"Ventas 01-13 al 31-13.xlsx", "Ventas (General)"},
		{"Cuentas Corrientes - Enero.xlsx", "Cuentas Corrientes"},
		{"Saldos CTA CTE.xlsx", "Cuentas Corrientes"},
		{"REPORTE SIGO.xlsx", "REPORTE SIGO"},
		{"Stock Semanal.XLSX", "Stock Semanal"},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			if got := domain.ReportTypeForFile(tc.file, now); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsOverwriteReport(t *testing.T) {
	for label, want := range map[string]bool{
		"VENTAS":             true,
		"Ventas (Ene 26)":    true,
		"Cuentas Corrientes": true,
		"REPORTE SIGO":       false,
		"Venta suelta":       false,
	} {
		if got := domain.IsOverwriteReport(label); got != want {
			t.Fatalf("%q: expected %v, got %v", label, want, got)
		}
	}
}

func TestClassifyReport(t *testing.T) {
	tests := []struct {
		label   string
		generic bool
		want    domain.ReportKind
	}{
		{"Ventas (Ene 26)", false, domain.ReportSales},
		{"Venta suelta", false, domain.ReportSales},
		{"Cuentas Corrientes", false, domain.ReportAccounts},
		{"Saldo CTA", false, domain.ReportAccounts},
		{"REPORTE SIGO", false, domain.ReportGeneric},
		{"Ventas (Ene 26)", true, domain.ReportGeneric},
	}
	for _, tc := range tests {
		if got := domain.ClassifyReport(tc.label, tc.generic); got != tc.want {
			t.Fatalf("%q generic=%v: expected %s, got %s", tc.label, tc.generic, tc.want, got)
		}
	}
}
