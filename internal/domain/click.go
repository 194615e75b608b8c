package domain

import "time"

// Detecting is the placeholder stored in client-side fields until the
// interstitial page reports back.
const Detecting = "Detectando..."

// Click is one row of the tracking log: a recipient opening a report link.
type Click struct {
	ID           string
	ClickedAt    time.Time
	Recipient    string
	ReportKind   string
	SentAt       string
	ReactionTime string
	Device       string
	Browser      string
	OS           string
	Link         string
	Location     string
}

// ClientInfo is what the interstitial page reports about the device.
type ClientInfo struct {
	Device   string
	Browser  string
	OS       string
	Location string
}
