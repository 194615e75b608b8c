package gsuite

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/ricirt/report-robot/internal/platform"
)

const bannerColumns = 10

func (c *Client) Tabs(ctx context.Context, docID string) ([]platform.Tab, error) {
	doc, err := c.sheets.Spreadsheets.Get(docID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", docID, err)
	}
	tabs := make([]platform.Tab, 0, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if s.Properties == nil {
			continue
		}
		tabs = append(tabs, tabFromProps(s.Properties))
	}
	return tabs, nil
}

func (c *Client) DeleteTab(ctx context.Context, docID, title string) error {
	tabs, err := c.Tabs(ctx, docID)
	if err != nil {
		return err
	}
	for _, t := range tabs {
		if t.Title != title {
			continue
		}
		return c.batch(ctx, docID, &sheets.Request{
			DeleteSheet: &sheets.DeleteSheetRequest{SheetId: t.ID, ForceSendFields: []string{"SheetId"}},
		})
	}
	return nil
}

func (c *Client) CopyTab(ctx context.Context, srcDocID string, src platform.Tab, dstDocID, title string) (platform.Tab, error) {
	props, err := c.sheets.Spreadsheets.Sheets.CopyTo(srcDocID, src.ID,
		&sheets.CopySheetToAnotherSpreadsheetRequest{DestinationSpreadsheetId: dstDocID}).
		Context(ctx).Do()
	if err != nil {
		return platform.Tab{}, fmt.Errorf("copy tab %q: %w", src.Title, err)
	}

	err = c.batch(ctx, dstDocID, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{SheetId: props.SheetId, Title: title, ForceSendFields: []string{"SheetId"}},
			Fields:     "title",
		},
	})
	if err != nil {
		return platform.Tab{}, fmt.Errorf("rename copied tab to %q: %w", title, err)
	}

	tab := tabFromProps(props)
	tab.Title = title
	return tab, nil
}

func (c *Client) StampBanner(ctx context.Context, docID string, tab platform.Tab, text string, placement platform.BannerPlacement) error {
	if placement == platform.BannerCorner {
		return c.batch(ctx, docID, cornerBanner(tab.ID, text)...)
	}
	return c.batch(ctx, docID, topRowBanner(tab, text)...)
}

func (c *Client) ReadRows(ctx context.Context, docID, rangeA1 string) ([][]string, error) {
	res, err := c.sheets.Spreadsheets.Values.Get(docID, rangeA1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rangeA1, err)
	}
	rows := make([][]string, 0, len(res.Values))
	for _, raw := range res.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) batch(ctx context.Context, docID string, reqs ...*sheets.Request) error {
	_, err := c.sheets.Spreadsheets.BatchUpdate(docID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	return err
}

// cellString renders one cell. Numbers are written without exponent so
// chat ids survive unformatted reads.
func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func tabFromProps(p *sheets.SheetProperties) platform.Tab {
	t := platform.Tab{ID: p.SheetId, Title: p.Title}
	if p.GridProperties != nil {
		t.Columns = int(p.GridProperties.ColumnCount)
	}
	return t
}

var bannerFill = &sheets.Color{Red: 1, Green: 0.949, Blue: 0.8}

func boxBorders(style string) (top, bottom, left, right *sheets.Border) {
	b := &sheets.Border{Style: style, Color: &sheets.Color{}}
	return b, b, b, b
}

// cornerBanner writes the banner into J2 without moving any rows.
func cornerBanner(sheetID int64, text string) []*sheets.Request {
	cell := &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    1,
		EndRowIndex:      2,
		StartColumnIndex: 9,
		EndColumnIndex:   10,
		ForceSendFields:  []string{"SheetId"},
	}
	top, bottom, left, right := boxBorders("SOLID_MEDIUM")

	return []*sheets.Request{
		{RepeatCell: &sheets.RepeatCellRequest{
			Range: cell,
			Cell: &sheets.CellData{
				UserEnteredValue: &sheets.ExtendedValue{StringValue: &text},
				UserEnteredFormat: &sheets.CellFormat{
					HorizontalAlignment: "CENTER",
					VerticalAlignment:   "MIDDLE",
					BackgroundColor:     bannerFill,
					TextFormat:          &sheets.TextFormat{Bold: true, FontSize: 10},
				},
			},
			Fields: "userEnteredValue,userEnteredFormat(horizontalAlignment,verticalAlignment,backgroundColor,textFormat)",
		}},
		{UpdateBorders: &sheets.UpdateBordersRequest{Range: cell, Top: top, Bottom: bottom, Left: left, Right: right}},
		{UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "COLUMNS",
				StartIndex:      9,
				EndIndex:        10,
				ForceSendFields: []string{"SheetId"},
			},
			Properties: &sheets.DimensionProperties{PixelSize: 280},
			Fields:     "pixelSize",
		}},
	}
}

// topRowBanner inserts a row above the data, merges it across the first
// ten columns (fewer on a narrower tab) and writes the banner into it.
func topRowBanner(tab platform.Tab, text string) []*sheets.Request {
	end := int64(bannerColumns)
	if tab.Columns > 0 && tab.Columns < bannerColumns {
		end = int64(tab.Columns)
	}

	rowRange := &sheets.DimensionRange{
		SheetId:         tab.ID,
		Dimension:       "ROWS",
		StartIndex:      0,
		EndIndex:        1,
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
	cells := &sheets.GridRange{
		SheetId:          tab.ID,
		StartRowIndex:    0,
		EndRowIndex:      1,
		StartColumnIndex: 0,
		EndColumnIndex:   end,
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
	top, bottom, left, right := boxBorders("SOLID_THICK")

	return []*sheets.Request{
		{InsertDimension: &sheets.InsertDimensionRequest{Range: rowRange}},
		{MergeCells: &sheets.MergeCellsRequest{Range: cells, MergeType: "MERGE_ALL"}},
		{RepeatCell: &sheets.RepeatCellRequest{
			Range: cells,
			Cell: &sheets.CellData{
				UserEnteredValue: &sheets.ExtendedValue{StringValue: &text},
				UserEnteredFormat: &sheets.CellFormat{
					HorizontalAlignment: "CENTER",
					VerticalAlignment:   "MIDDLE",
					BackgroundColor:     bannerFill,
					TextFormat:          &sheets.TextFormat{Bold: true, FontSize: 11},
				},
			},
			Fields: "userEnteredValue,userEnteredFormat(horizontalAlignment,verticalAlignment,backgroundColor,textFormat)",
		}},
		{UpdateBorders: &sheets.UpdateBordersRequest{
			Range: cells, Top: top, Bottom: bottom, Left: left, Right: right,
		}},
		{UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range:      rowRange,
			Properties: &sheets.DimensionProperties{PixelSize: 30},
			Fields:     "pixelSize",
		}},
	}
}
