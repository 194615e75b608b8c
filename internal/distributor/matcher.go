package distributor

import (
	"regexp"
	"strings"

	"github.com/ricirt/report-robot/internal/domain"
)

var (
	leadingCode   = regexp.MustCompile(`^(\d{4,})`)
	leadingPrefix = regexp.MustCompile(`^\d{4,}\s*-\s*`)
)

// Matches reports whether a directory entry owns a tab: after trimming
// and upper-casing, either name contains the other. An empty tab name
// never matches.
func Matches(entryName, tabName string) bool {
	n := strings.ToUpper(strings.TrimSpace(entryName))
	t := strings.ToUpper(strings.TrimSpace(tabName))
	if n == "" || t == "" {
		return false
	}
	return strings.Contains(n, t) || strings.Contains(t, n)
}

// FindRecipient returns the first entry, in directory order, that matches tab.
func FindRecipient(recipients []domain.Recipient, tabName string) (domain.Recipient, bool) {
	for _, r := range recipients {
		if Matches(r.Name, tabName) {
			return r, true
		}
	}
	return domain.Recipient{}, false
}

// RecipientCode is the leading run of at least four digits of name, or
// its first five characters when there is none.
func RecipientCode(name string) string {
	if m := leadingCode.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	runes := []rune(name)
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return string(runes)
}

// DestinationTabName picks the tab a report lands in. Sales and accounts
// reports overwrite a tab named after the report type; anything else gets
// a per-recipient name and generic=true.
func DestinationTabName(reportType, recipientName string) (name string, generic bool) {
	if domain.IsOverwriteReport(reportType) {
		return reportType, false
	}
	short := leadingPrefix.ReplaceAllString(recipientName, "")
	return reportType + " - " + RecipientCode(recipientName) + "-" + short, true
}
