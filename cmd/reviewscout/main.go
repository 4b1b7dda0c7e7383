package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ReviewScout/internal/app"
	"ReviewScout/internal/config"
	"ReviewScout/internal/logging"
)

const usage = `usage: reviewscout [command]

commands:
  run                       collect on the configured schedule (default)
  collect [PLATFORM]        collect once from one platform, or from all
  summary PRODUCT_CODE      print the resolved summary of a product
  reviews [PRODUCT] [STATUS] list stored reviews
  status                    print engine status`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := dispatch(ctx, application, os.Args[1:]); err != nil {
		logger.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, application *app.Application, args []string) error {
	command := "run"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	svc := application.Service()

	switch command {
	case "run":
		return application.Run(ctx)
	case "collect":
		if len(args) == 0 {
			results, err := application.CollectAll(ctx)
			if printErr := printJSON(results); printErr != nil {
				return printErr
			}
			return err
		}
		res, err := svc.TriggerCollection(ctx, args[0])
		if printErr := printJSON(res); printErr != nil {
			return printErr
		}
		return err
	case "summary":
		if len(args) != 1 {
			return fmt.Errorf("summary needs a product code\n%s", usage)
		}
		return printJSON(svc.SummaryForProduct(ctx, args[0]))
	case "reviews":
		product, status := "", ""
		if len(args) > 0 {
			product = args[0]
		}
		if len(args) > 1 {
			status = args[1]
		}
		reviews, err := svc.ListReviews(ctx, product, status)
		if err != nil {
			return err
		}
		return printJSON(reviews)
	case "status":
		status, err := svc.GetStatus(ctx)
		if err != nil {
			return err
		}
		return printJSON(status)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
