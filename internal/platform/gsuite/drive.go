package gsuite

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/ricirt/report-robot/internal/platform"
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

func (c *Client) ListInputFiles(ctx context.Context) ([]platform.InputFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", c.cfg.InputFolder)

	var files []platform.InputFile
	pageToken := ""
	for {
		call := c.drive.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name)").
			OrderBy("name").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list input folder: %w", err)
		}
		for _, f := range res.Files {
			files = append(files, platform.InputFile{ID: f.Id, Name: f.Name})
		}
		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

func (c *Client) ConvertToSpreadsheet(ctx context.Context, file platform.InputFile) (string, error) {
	copied, err := c.drive.Files.Copy(file.ID, &drive.File{
		Name:     "TEMP_" + file.Name,
		MimeType: spreadsheetMime,
		Parents:  []string{c.cfg.TempFolder},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", file.Name, err)
	}
	return copied.Id, nil
}

func (c *Client) Trash(ctx context.Context, fileID string) error {
	_, err := c.drive.Files.Update(fileID, &drive.File{Trashed: true}).
		SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("trash %s: %w", fileID, err)
	}
	return nil
}

// Archive moves a file from its current folders into the archive folder.
func (c *Client) Archive(ctx context.Context, fileID string) error {
	current, err := c.drive.Files.Get(fileID).Fields("parents").
		SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get parents of %s: %w", fileID, err)
	}

	_, err = c.drive.Files.Update(fileID, &drive.File{}).
		AddParents(c.cfg.ArchiveFolder).
		RemoveParents(strings.Join(current.Parents, ",")).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("archive %s: %w", fileID, err)
	}
	return nil
}
