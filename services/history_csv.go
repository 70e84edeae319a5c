package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"coffee-quality-api/models"
)

// CSVHistory keeps history in a single CSV file rewritten on every append.
// The read-modify-write cycle is serialized within one process only;
// running several writers against the same file can lose rows.
type CSVHistory struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

func NewCSVHistory(path string) *CSVHistory {
	return &CSVHistory{path: path, loc: time.Local}
}

func (h *CSVHistory) Path() string { return h.path }

func (h *CSVHistory) Append(ctx context.Context, record models.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	rows, err := h.readRows()
	if err != nil {
		historyAppendsFailed.Inc()
		return err
	}
	rows = append(rows, h.encode(record))

	if err := h.writeRows(rows); err != nil {
		historyAppendsFailed.Inc()
		return err
	}
	historyAppends.Inc()
	return nil
}

// ReadAll returns every record in file order. Seq is the 1-based data row.
func (h *CSVHistory) ReadAll(ctx context.Context) ([]models.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.readRows()
	if err != nil {
		return nil, err
	}
	records := make([]models.HistoryRecord, 0, len(rows))
	for i, row := range rows {
		r, err := h.decode(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrPersistence, h.path, i+2, err)
		}
		r.Seq = int64(i + 1)
		records = append(records, r)
	}
	return records, nil
}

func (h *CSVHistory) List(ctx context.Context, q HistoryQuery) ([]models.HistoryRecord, error) {
	records, err := h.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(records, q), nil
}

func (h *CSVHistory) Close() error { return nil }

// readRows returns the data rows without the header. A missing file is an
// empty history.
func (h *CSVHistory) readRows() ([][]string, error) {
	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(models.HistoryHeader)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, h.path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	for i, col := range models.HistoryHeader {
		if all[0][i] != col {
			return nil, fmt.Errorf("%w: %s has unexpected header %v", ErrPersistence, h.path, all[0])
		}
	}
	return all[1:], nil
}

// writeRows replaces the file through a temp file in the same directory.
func (h *CSVHistory) writeRows(rows [][]string) error {
	dir := filepath.Dir(h.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(h.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(models.HistoryHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, h.path); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (h *CSVHistory) encode(r models.HistoryRecord) []string {
	return []string{
		r.Timestamp.In(h.loc).Format(models.HistoryTimestampLayout),
		strconv.FormatFloat(r.CaffeineMg, 'f', -1, 64),
		strconv.FormatFloat(r.AcidityPH, 'f', -1, 64),
		string(r.Process),
		r.PredictedLabel,
		strconv.FormatFloat(r.ConfidencePct, 'f', -1, 64),
	}
}

func (h *CSVHistory) decode(row []string) (models.HistoryRecord, error) {
	ts, err := time.ParseInLocation(models.HistoryTimestampLayout, row[0], h.loc)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	nums := make([]float64, 3)
	for i, idx := range []int{1, 2, 5} {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return models.HistoryRecord{}, fmt.Errorf("column %q: %w", models.HistoryHeader[idx], err)
		}
		nums[i] = v
	}
	return models.HistoryRecord{
		Timestamp:      ts,
		CaffeineMg:     nums[0],
		AcidityPH:      nums[1],
		Process:        models.Process(row[3]),
		PredictedLabel: row[4],
		ConfidencePct:  nums[2],
	}, nil
}
