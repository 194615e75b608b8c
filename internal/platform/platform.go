package platform

import (
	"context"
	"fmt"
)

// InputFile is a workbook waiting in the input folder.
type InputFile struct {
	ID   string
	Name string
}

// Tab is one sheet of a spreadsheet document.
type Tab struct {
	ID      int64
	Title   string
	Columns int
}

// BannerPlacement selects where the "updated at" banner goes.
type BannerPlacement int

const (
	// BannerCorner writes into J2, leaving the layout untouched.
	BannerCorner BannerPlacement = iota
	// BannerTopRow inserts a merged row above the data.
	BannerTopRow
)

// FileStore covers the folder operations of the pipeline.
type FileStore interface {
	ListInputFiles(ctx context.Context) ([]InputFile, error)
	// ConvertToSpreadsheet copies a workbook into the temp folder as a
	// native spreadsheet and returns the new document id.
	ConvertToSpreadsheet(ctx context.Context, file InputFile) (string, error)
	Trash(ctx context.Context, fileID string) error
	Archive(ctx context.Context, fileID string) error
}

// TabStore covers the per-tab spreadsheet operations.
type TabStore interface {
	Tabs(ctx context.Context, docID string) ([]Tab, error)
	// DeleteTab removes the tab titled title; a missing tab is not an error.
	DeleteTab(ctx context.Context, docID, title string) error
	// CopyTab copies src into dstDocID, renames the copy to title and
	// returns it.
	CopyTab(ctx context.Context, srcDocID string, src Tab, dstDocID, title string) (Tab, error)
	StampBanner(ctx context.Context, docID string, tab Tab, text string, placement BannerPlacement) error
}

// RowSource reads a cell range as rows of strings.
type RowSource interface {
	ReadRows(ctx context.Context, docID, rangeA1 string) ([][]string, error)
}

// TabURL is the direct browser link to one tab.
func TabURL(docID string, tabID int64) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", docID, tabID)
}
