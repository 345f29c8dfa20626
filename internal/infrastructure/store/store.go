package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc 的驅動名稱是 sqlite，不在 sqlx 預設的 ? 佔位符清單內
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store 以 sqlx 實作的關聯式儲存
type Store struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// Open 連線資料庫、以指數退避重試 Ping，並建立資料表
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// 單一連線，避免 :memory: 資料庫在不同連線間分裂與 SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := db.PingContext(ctx)
		if err != nil {
			common.LogWarn("資料庫連線失敗，稍後重試",
				zap.String("driver", cfg.Driver),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}
	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	common.LogInfo("資料庫已連線", zap.String("driver", cfg.Driver), zap.Int("attempts", attempt))
	return s, nil
}

// Driver 返回資料庫驅動名稱
func (s *Store) Driver() string {
	return s.driver
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫連線
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}
	if s.driver == DriverSQLite {
		if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// withTx 在交易中執行 fn，fn 返回錯誤時回滾
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			common.LogError("交易回滾失敗", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS recipes (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	source_type TEXT NOT NULL,
	source_url TEXT,
	source_file_name TEXT,
	source_cookbook_ref TEXT,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS ingredients (
	id SERIAL PRIMARY KEY,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_text TEXT NOT NULL,
	quantity DOUBLE PRECISION,
	unit TEXT,
	ingredient_name TEXT,
	category TEXT NOT NULL DEFAULT 'pantry',
	sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id);
CREATE TABLE IF NOT EXISTS weekly_plans (
	id SERIAL PRIMARY KEY,
	week_number INTEGER NOT NULL,
	year INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (week_number, year)
);
CREATE TABLE IF NOT EXISTS planned_meals (
	id SERIAL PRIMARY KEY,
	weekly_plan_id INTEGER NOT NULL REFERENCES weekly_plans(id) ON DELETE CASCADE,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	meal_type TEXT NOT NULL,
	notes TEXT
);
CREATE TABLE IF NOT EXISTS grocery_list_items (
	id SERIAL PRIMARY KEY,
	weekly_plan_id INTEGER NOT NULL REFERENCES weekly_plans(id) ON DELETE CASCADE,
	item_name TEXT NOT NULL,
	category TEXT NOT NULL,
	purchased BOOLEAN NOT NULL DEFAULT FALSE,
	removed BOOLEAN NOT NULL DEFAULT FALSE,
	custom BOOLEAN NOT NULL DEFAULT FALSE
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	source_type TEXT NOT NULL,
	source_url TEXT,
	source_file_name TEXT,
	source_cookbook_ref TEXT,
	notes TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_text TEXT NOT NULL,
	quantity REAL,
	unit TEXT,
	ingredient_name TEXT,
	category TEXT NOT NULL DEFAULT 'pantry',
	sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id);
CREATE TABLE IF NOT EXISTS weekly_plans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	week_number INTEGER NOT NULL,
	year INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (week_number, year)
);
CREATE TABLE IF NOT EXISTS planned_meals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	weekly_plan_id INTEGER NOT NULL REFERENCES weekly_plans(id) ON DELETE CASCADE,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	meal_type TEXT NOT NULL,
	notes TEXT
);
CREATE TABLE IF NOT EXISTS grocery_list_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	weekly_plan_id INTEGER NOT NULL REFERENCES weekly_plans(id) ON DELETE CASCADE,
	item_name TEXT NOT NULL,
	category TEXT NOT NULL,
	purchased BOOLEAN NOT NULL DEFAULT 0,
	removed BOOLEAN NOT NULL DEFAULT 0,
	custom BOOLEAN NOT NULL DEFAULT 0
)`
