package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loadbot/internal/bot"
	"loadbot/internal/config"
	"loadbot/internal/contextstore"
	"loadbot/internal/control"
	"loadbot/internal/health"
	"loadbot/internal/journal"
	"loadbot/internal/processor"
	"loadbot/internal/queue"
	"loadbot/internal/telegram"
)

const (
	maxIdentifyRetries = 3
	identifyRetryDelay = 5 * time.Second
	shutdownTimeout    = 15 * time.Second
)

func main() {
	log.Println("🚀 Starting loading bot...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	log.Println("✓ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("📋 Initializing Telegram...")
	tg := telegram.NewClient(cfg.TelegramBotToken, telegram.Options{
		RatePerSecond: cfg.SendRatePerSec,
		PollTimeout:   cfg.PollTimeout,
		DebugMode:     cfg.DebugMode,
	})
	if err := identify(ctx, tg); err != nil {
		log.Fatalf("❌ Telegram identification failed after %d attempts: %v", maxIdentifyRetries, err)
	}

	log.Println("📋 Opening dispatch journal...")
	dispatches, err := journal.Open(cfg.JournalFile)
	if err != nil {
		log.Fatalf("❌ Failed to open dispatch journal: %v", err)
	}

	contexts := contextstore.New(cfg.ContextTTL)

	var requests *queue.Controller
	monitor := health.NewMonitor(func() int { return requests.Status().QueueLength })
	monitor.SetTransportUp(true)

	dispatcher := bot.NewDispatcher(bot.DispatcherConfig{
		ReceiptRecipient: cfg.SummaryRecipientChatID,
		Journal:          dispatches,
		Monitor:          monitor,
	}, processor.NewClient(cfg.ProcessorURL, cfg.ProcessorTimeout), tg, contexts)

	requests = queue.New(ctx, dispatcher, cfg.QueuePacing)

	handler := bot.NewHandler(bot.HandlerConfig{
		GroupName:     cfg.GroupName,
		TriggerPhrase: cfg.TriggerPhrase,
	}, tg, tg, contexts, requests)

	go contexts.Run(ctx, cfg.ContextSweepInterval)

	server := control.NewServer(control.Deps{
		Sender:   tg,
		Contexts: contexts,
		Queue:    requests,
		Monitor:  monitor,
	})
	server.Start(cfg.ControlPort)

	log.Printf("✅ Listening for %q in group %q", cfg.TriggerPhrase, cfg.GroupName)
	log.Println("═══════════════════════════════════════════════════════════")

	tg.Poll(ctx, handler)

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Control server shutdown error: %v", err)
	}
	if err := requests.Close(shutdownCtx); err != nil {
		log.Printf("⚠️  Queue did not drain before shutdown: %v", err)
	}
	log.Println("✓ Stopped")
}

// identify retries the bot identity lookup a few times before giving up.
func identify(ctx context.Context, tg *telegram.Client) error {
	var err error
	for attempt := 1; attempt <= maxIdentifyRetries; attempt++ {
		log.Printf("   Identify attempt %d/%d...", attempt, maxIdentifyRetries)
		if err = tg.Identify(ctx); err == nil {
			return nil
		}
		if attempt < maxIdentifyRetries {
			log.Printf("   ❌ Identify failed: %v", err)
			log.Printf("   ⏳ Retrying in %v...", identifyRetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(identifyRetryDelay):
			}
		}
	}
	return err
}
