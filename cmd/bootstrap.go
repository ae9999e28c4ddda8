package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/azafe/Bandidos-backend/app/jobs"
	"github.com/azafe/Bandidos-backend/app/notifier"
	"github.com/azafe/Bandidos-backend/app/repository"
	"github.com/azafe/Bandidos-backend/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const dbPingTimeout = 5 * time.Second

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err = configureLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sqlDriverName(driver string) string {
	if driver == config.DriverPostgres {
		return "pgx"
	}
	return "mysql"
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, repository.Dialect, error) {
	db, err := sql.Open(sqlDriverName(cfg.Database.Driver), cfg.DSN())
	if err != nil {
		return nil, "", err
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	return db, repository.Dialect(cfg.Database.Driver), nil
}

// newEmailSender returns the sender for request-serving processes and, for
// the queue provider, the asynq client the caller must close.
func newEmailSender(cfg *config.Config) (notifier.Sender, *jobs.Client, error) {
	if cfg.Email.Provider != config.EmailProviderQueue {
		sender, err := notifier.New(cfg.Email, nil)
		return sender, nil, err
	}

	redisOpts, err := jobs.RedisOpts(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	client := jobs.NewClient(redisOpts)
	sender, err := notifier.New(cfg.Email, client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return sender, client, nil
}
