package services

import (
	"context"
	"fmt"

	"coffee-quality-api/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresHistory struct {
	db *gorm.DB
}

func NewPostgresHistory(dsn string) (*PostgresHistory, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrPersistence, err)
	}
	return NewPostgresHistoryFromDB(db)
}

func NewPostgresHistoryFromDB(db *gorm.DB) (*PostgresHistory, error) {
	if err := db.AutoMigrate(&models.HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", ErrPersistence, err)
	}
	return &PostgresHistory{db: db}, nil
}

func (h *PostgresHistory) Append(ctx context.Context, record models.HistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := h.db.WithContext(ctx).Create(&record).Error; err != nil {
		historyAppendsFailed.Inc()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	historyAppends.Inc()
	return nil
}

func (h *PostgresHistory) List(ctx context.Context, q HistoryQuery) ([]models.HistoryRecord, error) {
	var rows []models.HistoryRecord
	if err := listHistory(h.db.WithContext(ctx), q).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return rows, nil
}

// listHistory orders by the serial seq column, so rows sharing a
// timestamp keep their append order.
func listHistory(db *gorm.DB, q HistoryQuery) *gorm.DB {
	query := db.Model(&models.HistoryRecord{}).Order("seq DESC")
	if q.BeforeSeq > 0 {
		query = query.Where("seq < ?", q.BeforeSeq)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func (h *PostgresHistory) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
