package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcp-arcade/chess-match-server/game/match"
)

// matchRecord is the database row for one match. The full snapshot lives in
// the Snapshot JSON column; status and participants are duplicated into
// indexed columns so list and count queries never unmarshal.
type matchRecord struct {
	ID        string `gorm:"primaryKey"`
	White     string `gorm:"index"`
	Black     string `gorm:"index"`
	Status    string `gorm:"index"`
	Snapshot  string
	UpdatedAt time.Time
}

func (matchRecord) TableName() string {
	return "match_records"
}

// SQLiteStore persists matches in a SQLite database through GORM.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the database at dsn and
// migrates the match_records table. Use ":memory:" for an ephemeral
// database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&matchRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate match_records: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the match's snapshot row.
func (s *SQLiteStore) Save(ctx context.Context, m *match.Match) error {
	snap := m.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal match %s: %w", snap.ID, err)
	}

	record := matchRecord{
		ID:        snap.ID,
		White:     snap.White,
		Black:     snap.Black,
		Status:    string(snap.Status),
		Snapshot:  string(data),
		UpdatedAt: snap.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save match %s: %w", snap.ID, err)
	}
	return nil
}

// Load fetches a match row and rebuilds the entity.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*match.Match, error) {
	var record matchRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}
	return restoreRecord(&record)
}

// Delete removes a match row and reports whether one existed.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&matchRecord{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete match %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Exists checks whether a match row is present.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&matchRecord{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check match %s: %w", id, err)
	}
	return count > 0, nil
}

// LoadAll rebuilds every stored match.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*match.Match, error) {
	return s.loadWhere(ctx, s.db.WithContext(ctx))
}

// LoadByStatus rebuilds the matches currently in the given status.
func (s *SQLiteStore) LoadByStatus(ctx context.Context, status match.Status) ([]*match.Match, error) {
	return s.loadWhere(ctx, s.db.WithContext(ctx).Where("status = ?", string(status)))
}

// LoadByParticipant rebuilds the matches a participant plays in.
func (s *SQLiteStore) LoadByParticipant(ctx context.Context, participantID string) ([]*match.Match, error) {
	return s.loadWhere(ctx, s.db.WithContext(ctx).Where("white = ? OR black = ?", participantID, participantID))
}

// CountActive counts the ACTIVE rows without touching the snapshot column.
func (s *SQLiteStore) CountActive(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&matchRecord{}).
		Where("status = ?", string(match.StatusActive)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active matches: %w", err)
	}
	return int(count), nil
}

// HealthCheck pings the underlying database connection.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func (s *SQLiteStore) loadWhere(ctx context.Context, tx *gorm.DB) ([]*match.Match, error) {
	var records []matchRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}

	matches := make([]*match.Match, 0, len(records))
	for i := range records {
		m, err := restoreRecord(&records[i])
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func restoreRecord(record *matchRecord) (*match.Match, error) {
	var snap match.Snapshot
	if err := json.Unmarshal([]byte(record.Snapshot), &snap); err != nil {
		return nil, &match.CorruptStateError{ID: record.ID, Err: fmt.Errorf("unreadable snapshot column: %w", err)}
	}
	return match.Restore(&snap)
}
