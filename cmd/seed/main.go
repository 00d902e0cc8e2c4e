package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/app"
	"github.com/Freeeeeet/fishery_booking/internal/config"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	start := flag.String("start", "", "first date to seed, YYYY-MM-DD (default: today in CALENDAR_TIMEZONE)")
	days := flag.Int("days", cfg.Calendar.SeedDays, "number of consecutive days to seed")
	pegs := flag.String("pegs", strings.Join(cfg.Calendar.Pegs, ","), "comma separated peg names")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	calendar := service.NewCalendarService(store, service.CalendarOptions{
		Location: cfg.Location(),
	}, logger.Named("seed"))

	if *start == "" {
		*start = calendar.Today(time.Now())
	}

	report, err := calendar.Seed(ctx, *start, *days, splitPegs(*pegs))
	if report != nil {
		fmt.Printf("Seeding finished: %d inserted, %d skipped, %d failed\n",
			report.Inserted, report.Skipped, report.Failed)
		for _, pairErr := range report.Errors {
			fmt.Printf("  failed %s\n", pairErr.Error())
		}
	}
	if err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		closeStore()
		os.Exit(1)
	}
}

func splitPegs(value string) []string {
	var pegs []string
	for _, peg := range strings.Split(value, ",") {
		if peg = strings.TrimSpace(peg); peg != "" {
			pegs = append(pegs, peg)
		}
	}
	return pegs
}
