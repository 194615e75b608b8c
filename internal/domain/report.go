package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReportKind selects the notification wording.
type ReportKind string

const (
	ReportSales    ReportKind = "VENTAS"
	ReportAccounts ReportKind = "CUENTAS"
	ReportGeneric  ReportKind = "GENÉRICO"
)

// AccountsReportType is the destination tab used for every accounts report.
const AccountsReportType = "Cuentas Corrientes"

var monthAbbrev = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

var (
	// "02-01 al 31-01": no year, the current year is assumed.
	rangeNoYear = regexp.MustCompile(`(?i)(\d{2})-(\d{2})\s+al\s+(\d{2})-(\d{2})`)
	// "02-01-2026"
	dateWithYear = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`)
)

// IsEligibleInputFile reports whether a file in the input folder should be
// queued: Excel workbooks only, skipping Office lock files.
func IsEligibleInputFile(name string) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return false
	}
	return !strings.HasPrefix(name, "~")
}

// ReportTypeForFile derives the report-type label from an input file name.
// Sales files become "Ventas (<Mes> <yy>)", accounts files become
// "Cuentas Corrientes", anything else keeps its own name without extension.
func ReportTypeForFile(fileName string, now time.Time) string {
	lower := strings.ToLower(fileName)

	if strings.Contains(lower, "venta") {
		if m := rangeNoYear.FindStringSubmatch(fileName); m != nil {
			if label, ok := salesLabel(m[2], strconv.Itoa(now.Year())); ok {
				return label
			}
		}
		if m := dateWithYear.FindStringSubmatch(fileName); m != nil {
			if label, ok := salesLabel(m[2], m[3]); ok {
				return label
			}
		}
		return "Ventas (General)"
	}

	for _, marker := range []string{"cuentas", "ctacte", "cta cte", "cta", "cte"} {
		if strings.Contains(lower, marker) {
			return AccountsReportType
		}
	}

	name := strings.TrimSuffix(fileName, ".xlsx")
	return strings.TrimSuffix(name, ".XLSX")
}

func salesLabel(month, year string) (string, bool) {
	idx, err := strconv.Atoi(month)
	if err != nil || idx < 1 || idx > 12 {
		return "", false
	}
	return "Ventas (" + monthAbbrev[idx-1] + " " + year[len(year)-2:] + ")", true
}

// IsOverwriteReport reports whether a report type always lands in a tab
// named after the type itself, replacing the previous distribution.
func IsOverwriteReport(reportType string) bool {
	upper := strings.ToUpper(reportType)
	return strings.Contains(upper, "VENTAS") || strings.Contains(upper, "CUENTAS")
}

// ClassifyReport picks the notification kind. Tabs distributed under a
// generic name are always generic.
func ClassifyReport(reportType string, generic bool) ReportKind {
	if generic {
		return ReportGeneric
	}
	upper := strings.ToUpper(reportType)
	switch {
	case strings.Contains(upper, "VENTA"):
		return ReportSales
	case strings.Contains(upper, "CUENTAS"), strings.Contains(upper, "CTA"):
		return ReportAccounts
	}
	return ReportGeneric
}
