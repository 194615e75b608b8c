package domain

// Recipient is one directory entry: a salesperson, the spreadsheet their
// reports are copied into, and an optional Telegram chat id.
type Recipient struct {
	Name       string
	DocumentID string
	ChatID     string
}

// DistributionStats is the outcome of distributing one input file.
type DistributionStats struct {
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	Recipients []string
}
