package services

import (
	"context"
	"fmt"

	"coffee-quality-api/config"
	"coffee-quality-api/models"
)

// HistoryStore persists prediction records. Records are never updated or
// deleted once appended.
type HistoryStore interface {
	Append(ctx context.Context, record models.HistoryRecord) error
	// List returns records newest first.
	List(ctx context.Context, q HistoryQuery) ([]models.HistoryRecord, error)
	Close() error
}

// HistoryQuery selects at most Limit records (0 means all) appended before
// the record at sequence BeforeSeq (0 means no cursor).
type HistoryQuery struct {
	Limit     int
	BeforeSeq int64
}

func OpenHistoryStore(cfg config.Config) (HistoryStore, error) {
	switch cfg.History.Backend {
	case config.HistoryBackendCSV, "":
		return NewCSVHistory(cfg.History.Path), nil
	case config.HistoryBackendSQLite:
		return NewSQLiteHistory(cfg.History.Path)
	case config.HistoryBackendPostgres:
		return NewPostgresHistory(cfg.Database.GetDSN())
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

func newestFirst(records []models.HistoryRecord, q HistoryQuery) []models.HistoryRecord {
	out := make([]models.HistoryRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if q.BeforeSeq > 0 && r.Seq >= q.BeforeSeq {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
