package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-iris-segmenter/internal/repository"
	"go-iris-segmenter/pkg/models"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

const selectColumns = `
	SELECT id, source, pupil_x, pupil_y, pupil_r, iris_x, iris_y, iris_r,
		pupil_score, iris_score, width, height, processing_ms, created_at
	FROM segmentations`

// SegmentationRepository implements repository.SegmentationRepository for SQLite.
type SegmentationRepository struct {
	db *DB
}

// NewSegmentationRepository creates a new SQLite segmentation repository.
func NewSegmentationRepository(db *DB) *SegmentationRepository {
	return &SegmentationRepository{db: db}
}

// Save inserts a record. A zero CreatedAt is set to now.
func (r *SegmentationRepository) Save(ctx context.Context, rec *models.SegmentationRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	d := rec.Iris

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO segmentations (source, pupil_x, pupil_y, pupil_r, iris_x, iris_y, iris_r,
			pupil_score, iris_score, width, height, processing_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Source, d.PupilCenterX, d.PupilCenterY, d.PupilRadius, d.IrisCenterX, d.IrisCenterY, d.IrisRadius,
		rec.PupilScore, rec.IrisScore, rec.Width, rec.Height,
		int64(rec.ProcessingTimeSec*1000), rec.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert segmentation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read segmentation id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// Get retrieves a segmentation by its ID.
func (r *SegmentationRepository) Get(ctx context.Context, id int64) (*models.SegmentationRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rec, err := scanRecord(r.db.Conn().QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrSegmentationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segmentation: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (r *SegmentationRepository) List(ctx context.Context, limit int) ([]models.SegmentationRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Conn().QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list segmentations: %w", err)
	}
	defer rows.Close()

	records := []models.SegmentationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segmentation: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (r *SegmentationRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.SegmentationRecord, error) {
	var rec models.SegmentationRecord
	var processingMs int64
	d := &rec.Iris

	err := s.Scan(&rec.ID, &rec.Source,
		&d.PupilCenterX, &d.PupilCenterY, &d.PupilRadius,
		&d.IrisCenterX, &d.IrisCenterY, &d.IrisRadius,
		&rec.PupilScore, &rec.IrisScore, &rec.Width, &rec.Height,
		&processingMs, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.ProcessingTimeSec = float64(processingMs) / 1000
	return &rec, nil
}

var _ repository.SegmentationRepository = (*SegmentationRepository)(nil)
