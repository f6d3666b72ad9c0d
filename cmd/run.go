package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"dkpbot/bot"
	"dkpbot/config"
	"dkpbot/database"
	"dkpbot/events"
	"dkpbot/repository"
	"dkpbot/scheduler"
	"dkpbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting dkpbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Apply pending migrations; a no-op when the schema is current
	log.Println("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(db)
	settingsRepo := repository.NewGuildSettingsRepository(db)

	// Initialize in-memory stores and services
	log.Println("Initializing services...")
	catalog := service.NewEventCatalog()
	ledgerService := service.NewLedgerService(ledgerRepo, eventBus)
	registry := service.NewRedemptionRegistry(catalog, ledgerService, eventBus)
	eventService := service.NewEventService(catalog, registry, eventBus)
	settingsService := service.NewGuildSettingsService(settingsRepo)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:                  cfg.DiscordToken,
		EventsChannelName:      cfg.EventsChannelName,
		DefaultLeaderboardSize: cfg.DefaultLeaderboardSize,
		MaxLeaderboardSize:     cfg.MaxLeaderboardSize,
	}
	discordBot, err := bot.New(botConfig, ledgerService, eventService, registry, settingsService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start the event reminder sweep
	reminder := scheduler.NewReminder(eventService, discordBot, cfg.ReminderLeadTime)
	cronScheduler, err := scheduler.Setup(reminder)
	if err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	cronCtx := cronScheduler.Stop()

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give in-flight cron jobs time to finish
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Shutdown timeout exceeded waiting for scheduler")
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
