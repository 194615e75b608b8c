package directory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/platform"
)

// Resolver reads the recipient mapping (name, document id, chat id).
type Resolver struct {
	rows    platform.RowSource
	docID   string
	rangeA1 string
	logger  *zap.Logger
}

func NewResolver(rows platform.RowSource, docID, rangeA1 string, logger *zap.Logger) *Resolver {
	return &Resolver{rows: rows, docID: docID, rangeA1: rangeA1, logger: logger}
}

// Load returns the directory in sheet order. Rows without a name or a
// destination document are dropped; the chat id is optional.
func (r *Resolver) Load(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := r.rows.ReadRows(ctx, r.docID, r.rangeA1)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}

	recipients := make([]domain.Recipient, 0, len(rows))
	for _, row := range rows {
		rec := domain.Recipient{
			Name:       cell(row, 0),
			DocumentID: cell(row, 1),
			ChatID:     cell(row, 2),
		}
		if rec.Name == "" || rec.DocumentID == "" {
			continue
		}
		recipients = append(recipients, rec)
	}

	r.logger.Debug("directory loaded", zap.Int("rows", len(rows)), zap.Int("recipients", len(recipients)))
	return recipients, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
