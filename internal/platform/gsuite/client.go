// Package gsuite implements the platform interfaces on Google Drive and
// Google Sheets.
package gsuite

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Config struct {
	CredentialsFile string
	InputFolder     string
	ArchiveFolder   string
	TempFolder      string
}

// Client is a platform.FileStore, platform.TabStore and platform.RowSource.
type Client struct {
	cfg    Config
	drive  *drive.Service
	sheets *sheets.Service
}

// New builds both API services. Without extra options the service account
// key in cfg.CredentialsFile is used.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(drive.DriveScope, sheets.SpreadsheetsScope),
		}
	}

	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	s, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{cfg: cfg, drive: d, sheets: s}, nil
}
