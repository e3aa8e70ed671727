package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/utils"
)

const themeKey = "theme"

type Repository interface {
	// GetTheme returns the stored theme, DefaultTheme when nothing is stored.
	GetTheme(ctx context.Context) (Theme, error)
	SaveTheme(ctx context.Context, theme Theme) error
}

type RepositoryImpl struct {
	db    *sql.DB
	clock utils.Clock
}

func NewRepository(db *sql.DB, clock utils.Clock) *RepositoryImpl {
	return &RepositoryImpl{db: db, clock: clock}
}

func (r *RepositoryImpl) GetTheme(ctx context.Context) (Theme, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, themeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultTheme, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read theme: %w", err)
		log.Error(err)
		return "", err
	}
	return themeFromStored(value), nil
}

func (r *RepositoryImpl) SaveTheme(ctx context.Context, theme Theme) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, themeKey, string(theme), utils.UnixMillis(r.clock))
	if err != nil {
		err := fmt.Errorf("could not save theme: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type PostgresRepository struct {
	db    *pgxpool.Pool
	clock utils.Clock
}

func NewPostgresRepository(db *pgxpool.Pool, clock utils.Clock) *PostgresRepository {
	return &PostgresRepository{db: db, clock: clock}
}

func (r *PostgresRepository) GetTheme(ctx context.Context) (Theme, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, themeKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultTheme, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read theme: %w", err)
		log.Error(err)
		return "", err
	}
	return themeFromStored(value), nil
}

func (r *PostgresRepository) SaveTheme(ctx context.Context, theme Theme) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.Exec(ctx, query, themeKey, string(theme), r.clock.Now())
	if err != nil {
		err := fmt.Errorf("could not save theme: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type MemoryRepository struct {
	mu    sync.RWMutex
	theme string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) GetTheme(ctx context.Context) (Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return themeFromStored(m.theme), nil
}

func (m *MemoryRepository) SaveTheme(ctx context.Context, theme Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = string(theme)
	return nil
}
