package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/deusflow/newsflash/internal/logger"
)

// PostgresStore keeps entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL store connected")
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ai_cache (
		cache_key VARCHAR(64) PRIMARY KEY,
		kind VARCHAR(20) NOT NULL,
		value TEXT NOT NULL,
		provider VARCHAR(50),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		use_count INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_ai_cache_created_at ON ai_cache(created_at);
	CREATE INDEX IF NOT EXISTS idx_ai_cache_kind ON ai_cache(kind);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Get(key string) (Entry, bool) {
	var e Entry
	var provider sql.NullString

	query := `SELECT cache_key, kind, value, provider, created_at, use_count FROM ai_cache WHERE cache_key = $1`
	err := ps.db.QueryRow(query, key).Scan(&e.Key, &e.Kind, &e.Value, &provider, &e.CreatedAt, &e.UseCount)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Error reading AI cache", "error", err)
		}
		return Entry{}, false
	}
	e.Provider = provider.String
	return e, true
}

// Put uses INSERT ON CONFLICT so concurrent writers never race.
func (ps *PostgresStore) Put(e Entry) error {
	e = stamp(e)
	query := `
		INSERT INTO ai_cache (cache_key, kind, value, provider, created_at, use_count)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (cache_key) DO UPDATE SET
			kind = EXCLUDED.kind,
			value = EXCLUDED.value,
			provider = EXCLUDED.provider,
			created_at = EXCLUDED.created_at,
			use_count = ai_cache.use_count + 1
	`

	if _, err := ps.db.Exec(query, e.Key, e.Kind, e.Value, e.Provider, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to store AI result: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Prune(olderThan time.Time) (int, error) {
	result, err := ps.db.Exec(`DELETE FROM ai_cache WHERE created_at < $1`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (ps *PostgresStore) Stats() map[string]int {
	stats := make(map[string]int)

	rows, err := ps.db.Query(`SELECT kind, COUNT(*) FROM ai_cache GROUP BY kind`)
	if err != nil {
		logger.Warn("Error reading AI cache stats", "error", err)
		return stats
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err == nil {
			stats["kind_"+kind] = count
			total += count
		}
	}
	stats["total_items"] = total
	return stats
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
