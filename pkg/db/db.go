package db

import (
	"context"
	"fmt"

	"github.com/TechharaInc/Tanaka/internal/config"
	obslogger "github.com/TechharaInc/Tanaka/internal/observability/logger"
	"github.com/oklog/ulid/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

// Module provides the shared *gorm.DB pool for the Command Store.
var Module = fx.Module("db",
	fx.Provide(FromConfig, New),
)

// FromConfig maps the application config onto the pool config.
func FromConfig(cfg config.Config) Config {
	return Config{
		URL:             cfg.DBURL,
		Name:            "tanaka",
		MaxIdleConn:     cfg.DB.MaxIdleConns,
		MaxOpenConn:     cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		Tracing:         true,
		Metrics:         true,
	}
}

// New opens the pool and closes it when the fx app stops.
func New(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

// Open opens a gorm connection pool for cfg.URL with zap query logging and,
// when enabled, otel spans and Prometheus pool statistics.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg.URL)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig(), log),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.Tracing {
		if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Name))); err != nil {
			return nil, fmt.Errorf("register tracing plugin: %w", err)
		}
	}
	if cfg.Metrics {
		if err := conn.Use(gormprometheus.New(gormprometheus.Config{
			DBName:          cfg.Name,
			RefreshInterval: 15,
		})); err != nil {
			return nil, fmt.Errorf("register metrics plugin: %w", err)
		}
	}

	return conn, nil
}

// NewTest opens a private in-memory SQLite database. A single connection
// keeps every query on the same memory database.
func NewTest() (*gorm.DB, error) {
	conn, err := Open(Config{
		URL:         fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", ulid.Make().String()),
		Name:        "test",
		MaxOpenConn: 1,
	}, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return conn, nil
}
