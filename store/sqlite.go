package store

import (
	"context"
	"errors"
	"fmt"

	"blog-viewstats/models"

	"gorm.io/gorm"
)

// SQLiteBackend keeps the document in one row of aggregate_documents.
type SQLiteBackend struct {
	db   *gorm.DB
	name string
}

func NewSQLiteBackend(db *gorm.DB, name string) *SQLiteBackend {
	return &SQLiteBackend{db: db, name: name}
}

func (s *SQLiteBackend) Name() string { return "sqlite" }

func (s *SQLiteBackend) read(tx *gorm.DB) (*models.AggregateState, error) {
	var doc models.AggregateDocument
	result := tx.Where("name = ?", s.name).Limit(1).Find(&doc)
	if result.Error != nil {
		return nil, fmt.Errorf("load aggregate document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewAggregateState(), nil
	}
	return decodeAndReport(s.Name(), []byte(doc.Body)), nil
}

func (s *SQLiteBackend) write(tx *gorm.DB, state *models.AggregateState) error {
	data, err := encodeDocument(state)
	if err != nil {
		return err
	}
	doc := models.AggregateDocument{Name: s.name, Body: string(data)}
	if err := tx.Save(&doc).Error; err != nil {
		return fmt.Errorf("save aggregate document: %w", err)
	}
	return nil
}

// Read implements Backend.
func (s *SQLiteBackend) Read(ctx context.Context) (*models.AggregateState, error) {
	return s.read(s.db.WithContext(ctx))
}

// Write implements Backend.
func (s *SQLiteBackend) Write(ctx context.Context, state *models.AggregateState) error {
	return s.write(s.db.WithContext(ctx), state)
}

// Update implements Transactor inside a database transaction.
func (s *SQLiteBackend) Update(ctx context.Context, fn func(state *models.AggregateState) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.read(tx)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		return s.write(tx, state)
	})
}

func (s *SQLiteBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		if errors.Is(err, gorm.ErrInvalidDB) {
			return nil
		}
		return err
	}
	return sqlDB.Close()
}
