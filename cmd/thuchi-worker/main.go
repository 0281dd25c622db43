package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/amqp"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/cli"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	workerLog := logger.WithComponent(applog.ComponentAMQP)
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		workerLog.Error("Failed to connect AMQP", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerLog.Info("Starting ledger event worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeLedgerEvents(ctx, func(ev *amqp.LedgerEvent) error {
		workerLog.Info("Ledger event", eventAttrs(ev)...)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		workerLog.Error("Event consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	workerLog.Info("Worker stopped")
}

// eventAttrs flattens an event into log attributes, skipping the
// transaction fields on event kinds that do not carry them.
func eventAttrs(ev *amqp.LedgerEvent) []any {
	attrs := []any{applog.FieldEvent, ev.Event, applog.FieldUserKey, ev.UserKey}
	if ev.TransactionID != "" {
		attrs = append(attrs, applog.FieldTransactionID, ev.TransactionID)
	}
	if ev.Amount != 0 {
		attrs = append(attrs, applog.FieldAmount, core.FormatCurrency(ev.Amount))
	}
	return attrs
}
