package services

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coffee-quality-api/config"
	"coffee-quality-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testRecord(at time.Time, label string, confidence float64) models.HistoryRecord {
	return models.HistoryRecord{
		Timestamp:      at,
		CaffeineMg:     120,
		AcidityPH:      5.0,
		Process:        models.ProcessWashed,
		PredictedLabel: label,
		ConfidencePct:  confidence,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVHistoryCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riwayat_prediksi.csv")
	h := NewCSVHistory(path)

	at := time.Date(2026, 10, 18, 14, 5, 9, 0, time.Local)
	if err := h.Append(context.Background(), testRecord(at, "Tinggi", 65)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if strings.Join(rows[0], ",") != "Waktu,Kafein,pH,Proses,Prediksi,Kepercayaan (%)" {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"2026-10-18 14:05:09", "120", "5", "Washed", "Tinggi", "65"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %d = %q, want %q", i, rows[1][i], v)
		}
	}
}

func TestCSVHistoryPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	h := NewCSVHistory(path)
	ctx := context.Background()

	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local)
	r1 := testRecord(base, "Sedang", 48.125)
	r2 := testRecord(base.Add(-time.Hour), "Rendah", 71.5)

	if err := h.Append(ctx, r1); err != nil {
		t.Fatalf("Append r1: %v", err)
	}
	before, err := h.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("rows after first append = %d, want 1", len(before))
	}
	if err := h.Append(ctx, r2); err != nil {
		t.Fatalf("Append r2: %v", err)
	}

	got, err := h.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	for i, want := range []models.HistoryRecord{r1, r2} {
		if got[i].PredictedLabel != want.PredictedLabel || got[i].ConfidencePct != want.ConfidencePct {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want)
		}
		if !got[i].Timestamp.Equal(want.Timestamp) {
			t.Errorf("row %d timestamp = %v, want %v", i, got[i].Timestamp, want.Timestamp)
		}
	}
}

func TestCSVHistoryRoundTripsConfidenceExactly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	h := NewCSVHistory(path)

	confidence := 0.6543210987654321 * 100
	if err := h.Append(context.Background(), testRecord(time.Now(), "Tinggi", confidence)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := h.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got[0].ConfidencePct != confidence {
		t.Errorf("ConfidencePct = %v, want %v", got[0].ConfidencePct, confidence)
	}
}

func TestCSVHistoryList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	h := NewCSVHistory(path)
	ctx := context.Background()

	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		if err := h.Append(ctx, testRecord(base.Add(time.Duration(i)*time.Minute), string(rune('A'+i)), 50)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := h.List(ctx, HistoryQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 5 || all[0].PredictedLabel != "E" || all[4].PredictedLabel != "A" {
		t.Errorf("List() labels = %v", labels(all))
	}

	if all[0].Seq != 5 || all[4].Seq != 1 {
		t.Errorf("seq = %d..%d, want 5..1", all[0].Seq, all[4].Seq)
	}

	page, err := h.List(ctx, HistoryQuery{Limit: 2, BeforeSeq: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := labels(page); got != "CB" {
		t.Errorf("page labels = %q, want CB", got)
	}
}

func TestCSVHistoryMissingFileIsEmpty(t *testing.T) {
	h := NewCSVHistory(filepath.Join(t.TempDir(), "absent.csv"))
	got, err := h.List(context.Background(), HistoryQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestCSVHistoryPersistenceErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing directory", func(t *testing.T) {
		h := NewCSVHistory(filepath.Join(dir, "no", "such", "dir", "history.csv"))
		err := h.Append(context.Background(), testRecord(time.Now(), "Tinggi", 65))
		if !errors.Is(err, ErrPersistence) {
			t.Errorf("err = %v, want ErrPersistence", err)
		}
	})

	t.Run("foreign header", func(t *testing.T) {
		path := filepath.Join(dir, "foreign.csv")
		os.WriteFile(path, []byte("a,b,c,d,e,f\n1,2,3,4,5,6\n"), 0o644)
		h := NewCSVHistory(path)
		err := h.Append(context.Background(), testRecord(time.Now(), "Tinggi", 65))
		if !errors.Is(err, ErrPersistence) {
			t.Errorf("err = %v, want ErrPersistence", err)
		}
		rows := readCSV(t, path)
		if len(rows) != 2 {
			t.Errorf("foreign file should be left untouched, got %d rows", len(rows))
		}
	})

	t.Run("corrupt row", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.csv")
		os.WriteFile(path, []byte("Waktu,Kafein,pH,Proses,Prediksi,Kepercayaan (%)\nyesterday,120,5,Washed,Tinggi,65\n"), 0o644)
		h := NewCSVHistory(path)
		if _, err := h.ReadAll(context.Background()); !errors.Is(err, ErrPersistence) {
			t.Errorf("err = %v, want ErrPersistence", err)
		}
	})
}

func TestSQLiteHistory(t *testing.T) {
	h, err := NewSQLiteHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %v", err)
	}
	defer h.Close()
	ctx := context.Background()

	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := h.Append(ctx, testRecord(base.Add(time.Duration(i)*time.Minute), string(rune('A'+i)), 40+float64(i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := h.List(ctx, HistoryQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := labels(all); got != "DCBA" {
		t.Errorf("labels = %q, want DCBA", got)
	}
	if all[0].ID == "" {
		t.Error("records should get an ID")
	}
	if !all[3].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", all[3].Timestamp, base)
	}
	if math.Abs(all[0].ConfidencePct-43) > 1e-9 {
		t.Errorf("ConfidencePct = %v, want 43", all[0].ConfidencePct)
	}

	if all[0].Seq != 4 {
		t.Errorf("Seq = %d, want 4", all[0].Seq)
	}

	page, err := h.List(ctx, HistoryQuery{Limit: 1, BeforeSeq: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := labels(page); got != "B" {
		t.Errorf("page labels = %q, want B", got)
	}
}

func TestHistoryPagingWithinOneSecond(t *testing.T) {
	dir := t.TempDir()
	sqliteStore, err := NewSQLiteHistory(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %v", err)
	}
	defer sqliteStore.Close()

	stores := map[string]HistoryStore{
		"csv":    NewCSVHistory(filepath.Join(dir, "history.csv")),
		"sqlite": sqliteStore,
	}
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	for name, h := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, label := range []string{"A", "B", "C"} {
				if err := h.Append(ctx, testRecord(at, label, 50)); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			first, err := h.List(ctx, HistoryQuery{Limit: 2})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if got := labels(first); got != "CB" {
				t.Fatalf("first page = %q, want CB", got)
			}
			second, err := h.List(ctx, HistoryQuery{Limit: 2, BeforeSeq: first[1].Seq})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if got := labels(second); got != "A" {
				t.Errorf("second page = %q, want A", got)
			}
		})
	}
}

func TestPostgresListOrdersBySeq(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=coffee dbname=coffee sslmode=disable"}),
		&gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []models.HistoryRecord
		return listHistory(tx, HistoryQuery{Limit: 3, BeforeSeq: 7}).Find(&rows)
	})
	for _, want := range []string{"seq < 7", "ORDER BY seq DESC", "LIMIT 3"} {
		if !strings.Contains(sql, want) {
			t.Errorf("query %q does not contain %q", sql, want)
		}
	}
	if strings.Contains(sql, "ORDER BY ts") {
		t.Errorf("query %q orders by timestamp", sql)
	}
}

func TestOpenHistoryStore(t *testing.T) {
	dir := t.TempDir()

	csvStore, err := OpenHistoryStore(config.Config{History: config.HistoryConfig{Backend: config.HistoryBackendCSV, Path: filepath.Join(dir, "h.csv")}})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, ok := csvStore.(*CSVHistory); !ok {
		t.Errorf("csv backend = %T", csvStore)
	}

	sqliteStore, err := OpenHistoryStore(config.Config{History: config.HistoryConfig{Backend: config.HistoryBackendSQLite, Path: filepath.Join(dir, "h.db")}})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer sqliteStore.Close()
	if _, ok := sqliteStore.(*SQLiteHistory); !ok {
		t.Errorf("sqlite backend = %T", sqliteStore)
	}

	if _, err := OpenHistoryStore(config.Config{History: config.HistoryConfig{Backend: "excel"}}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func labels(records []models.HistoryRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.PredictedLabel)
	}
	return b.String()
}
