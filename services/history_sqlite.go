package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"coffee-quality-api/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteHistory stores each record with a single INSERT, so concurrent
// writers never lose rows.
type SQLiteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("could not set WAL mode on %s: %v", path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		log.Printf("could not set busy_timeout on %s: %v", path, err)
	}

	schema := `CREATE TABLE IF NOT EXISTS prediction_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		ts_unix INTEGER NOT NULL,
		caffeine_mg REAL NOT NULL,
		acidity_ph REAL NOT NULL,
		process TEXT NOT NULL,
		predicted_label TEXT NOT NULL,
		confidence_pct REAL NOT NULL
	)`
	index := `CREATE INDEX IF NOT EXISTS idx_prediction_history_ts ON prediction_history(ts_unix)`

	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: apply schema: %w", ErrPersistence, err)
		}
	}
	return &SQLiteHistory{db: db}, nil
}

func (h *SQLiteHistory) Append(ctx context.Context, record models.HistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := h.db.ExecContext(ctx, `INSERT INTO prediction_history
		(id, ts_unix, caffeine_mg, acidity_ph, process, predicted_label, confidence_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Timestamp.Unix(), record.CaffeineMg, record.AcidityPH,
		string(record.Process), record.PredictedLabel, record.ConfidencePct)
	if err != nil {
		historyAppendsFailed.Inc()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	historyAppends.Inc()
	return nil
}

func (h *SQLiteHistory) List(ctx context.Context, q HistoryQuery) ([]models.HistoryRecord, error) {
	query := `SELECT seq, id, ts_unix, caffeine_mg, acidity_ph, process, predicted_label, confidence_pct
		FROM prediction_history`
	var args []interface{}
	if q.BeforeSeq > 0 {
		query += ` WHERE seq < ?`
		args = append(args, q.BeforeSeq)
	}
	query += ` ORDER BY seq DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer rows.Close()

	out := make([]models.HistoryRecord, 0)
	for rows.Next() {
		var r models.HistoryRecord
		var ts int64
		var process string
		if err := rows.Scan(&r.Seq, &r.ID, &ts, &r.CaffeineMg, &r.AcidityPH, &process, &r.PredictedLabel, &r.ConfidencePct); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		r.Timestamp = time.Unix(ts, 0)
		r.Process = models.Process(process)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return out, nil
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
