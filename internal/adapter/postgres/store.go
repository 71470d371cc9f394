// Package postgres persists bronze rows, silver rows and run logs with GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/pipeline"
)

// Store implements pipeline.Store on a PostgreSQL database.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn. GORM's own logging is routed through logger at warn
// level so slow queries and errors land in the service log.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the bronze, silver and log tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&accidentBronze{}, &accidentSilver{}, &runLog{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CountRaw(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&accidentBronze{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count bronze rows: %w", err)
	}
	return n, nil
}

// WithinTx runs fn in a single transaction. Any error from fn, or a panic,
// rolls back everything fn wrote.
func (s *Store) WithinTx(ctx context.Context, fn func(tx pipeline.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&txStore{db: gtx})
	})
}

// InsertRunLog writes one row to the log table in its own transaction.
func (s *Store) InsertRunLog(ctx context.Context, l domain.RunLog) error {
	row := toRunLog(l)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

type txStore struct {
	db *gorm.DB
}

func (t *txStore) AppendRaw(ctx context.Context, rows []domain.AccidentRaw) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]accidentBronze, len(rows))
	for i, r := range rows {
		models[i] = toBronze(r)
	}
	if err := t.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("insert bronze rows: %w", err)
	}
	return nil
}

func (t *txStore) ListRaw(ctx context.Context) ([]domain.AccidentRaw, error) {
	var models []accidentBronze
	if err := t.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("read bronze rows: %w", err)
	}
	out := make([]domain.AccidentRaw, len(models))
	for i, m := range models {
		out[i] = m.toDomain()
	}
	return out, nil
}

func (t *txStore) AppendCurated(ctx context.Context, rows []domain.AccidentCurated) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]accidentSilver, len(rows))
	for i, r := range rows {
		if r.RawID == 0 {
			return errors.New("insert silver rows: curated row without bronze id")
		}
		models[i] = toSilver(r)
	}
	if err := t.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("insert silver rows: %w", err)
	}
	return nil
}
