package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL string

	// Events channel settings
	EventsChannelName string

	// Leaderboard settings
	DefaultLeaderboardSize int
	MaxLeaderboardSize     int

	// Reminder settings
	ReminderLeadTime time.Duration

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		// Defaults
		EventsChannelName:      "events",
		DefaultLeaderboardSize: 10,
		MaxLeaderboardSize:     25,
		ReminderLeadTime:       15 * time.Minute,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if name := os.Getenv("EVENTS_CHANNEL_NAME"); name != "" {
		config.EventsChannelName = name
	}
	if lead := os.Getenv("REMINDER_LEAD_MINUTES"); lead != "" {
		if minutes, err := strconv.Atoi(lead); err == nil && minutes > 0 {
			config.ReminderLeadTime = time.Duration(minutes) * time.Minute
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
