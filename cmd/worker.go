package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/azafe/Bandidos-backend/app/jobs"
	"github.com/azafe/Bandidos-backend/app/notifier"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Deliver queued password reset emails",
	Long:  `Consume email:password_reset tasks from Redis and deliver them through SMTP (or the log sender when SMTP is not configured).`,
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 5, "number of tasks processed in parallel")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	redisOpts, err := jobs.RedisOpts(cfg.Redis.URL)
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: workerConcurrency,
		Sender:      notifier.NewDirect(cfg.Email),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithField("concurrency", workerConcurrency).Info("Starting email worker")
	if err = worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logrus.Info("Email worker stopped")
	return nil
}
