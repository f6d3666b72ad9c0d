package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dkpbot/events"
	"dkpbot/models"
	"dkpbot/service"
)

// Config holds bot configuration
type Config struct {
	Token             string
	EventsChannelName string

	DefaultLeaderboardSize int
	MaxLeaderboardSize     int
}

type Bot struct {
	config            Config
	session           *discordgo.Session
	ledgerService     service.LedgerService
	eventService      service.EventService
	redemptionService service.RedemptionService
	settingsService   service.GuildSettingsService
	eventBus          *events.Bus
}

func New(config Config, ledgerService service.LedgerService, eventService service.EventService, redemptionService service.RedemptionService, settingsService service.GuildSettingsService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:            config,
		session:           dg,
		ledgerService:     ledgerService,
		eventService:      eventService,
		redemptionService: redemptionService,
		settingsService:   settingsService,
		eventBus:          eventBus,
	}

	// Register slash command handler
	dg.AddHandler(bot.handleCommands)

	// Provision per-guild state on startup and when joining new guilds
	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Announce and broadcast new events asynchronously: the command
	// handler only replies to the creator, delivery happens here.
	eventBus.Subscribe(events.EventTypeEventCreated, func(ctx context.Context, event events.Event) {
		if created, ok := event.(events.EventCreatedEvent); ok {
			bot.announceEvent(created.Event)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleReady provisions events channels and registers commands for all
// guilds the bot is already a member of.
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithField("guilds", len(r.Guilds)).Info("Connected to Discord")

	for _, guild := range r.Guilds {
		b.setupGuild(s, guild.ID)
	}
}

// handleGuildCreate provisions a guild the bot just joined
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.setupGuild(s, g.ID)
}

// setupGuild registers slash commands and ensures the events channel exists
func (b *Bot) setupGuild(s *discordgo.Session, guildID string) {
	if err := b.registerCommands(guildID); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Error("Failed to register commands for guild")
	}

	if _, err := b.getOrCreateEventsChannel(guildID); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Warn("Failed to provision events channel")
	}
}

// handleCommands dispatches slash command interactions
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "dkp":
		b.handleDKPCommand(s, i)
	case "create_event":
		b.handleCreateEvent(s, i)
	case "redeem_dkp":
		b.handleRedeemCode(s, i)
	case "set_games":
		b.handleSetGames(s, i)
	}
}

// getOrCreateEventsChannel finds the guild's events channel, creating
// it when missing, and caches the id in guild settings.
func (b *Bot) getOrCreateEventsChannel(guildID string) (*discordgo.Channel, error) {
	guildIDInt, err := parseSnowflake(guildID)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	settings, err := b.settingsService.GetOrCreateSettings(ctx, guildIDInt)
	if err != nil {
		return nil, err
	}

	// Try the cached channel first; it may have been deleted since
	if settings.EventsChannelID != nil {
		channelID := fmt.Sprintf("%d", *settings.EventsChannelID)
		if channel, err := b.session.Channel(channelID); err == nil {
			return channel, nil
		}
	}

	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}

	var channel *discordgo.Channel
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == b.config.EventsChannelName {
			channel = c
			break
		}
	}

	if channel == nil {
		channel, err = b.session.GuildChannelCreate(guildID, b.config.EventsChannelName, discordgo.ChannelTypeGuildText)
		if err != nil {
			return nil, fmt.Errorf("failed to create events channel in guild %s: %w", guildID, err)
		}
		log.WithField("guildID", guildID).Info("Created events channel")
	}

	channelIDInt, err := parseSnowflake(channel.ID)
	if err != nil {
		return nil, err
	}
	if err := b.settingsService.SetEventsChannel(ctx, guildIDInt, channelIDInt); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Warn("Failed to cache events channel id")
	}

	return channel, nil
}

// announceEvent posts the event embed to the origin guild's events
// channel and broadcasts public events to other opted-in guilds.
func (b *Bot) announceEvent(event *models.Event) {
	originGuildID := fmt.Sprintf("%d", event.GuildID)

	embed := buildEventEmbed(b.session, event)

	channel, err := b.getOrCreateEventsChannel(originGuildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": originGuildID,
			"eventID": event.ID,
			"error":   err,
		}).Error("Failed to announce event in origin guild")
	} else {
		if _, err := b.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			log.WithFields(log.Fields{
				"guildID": originGuildID,
				"eventID": event.ID,
				"error":   err,
			}).Error("Failed to send event embed")
		}
	}

	if event.Type == models.EventTypePublic {
		b.broadcastEvent(event, embed)
	}
}

// broadcastEvent sends the event embed to every other guild whose game
// preferences include the event's game.
func (b *Bot) broadcastEvent(event *models.Event, embed *discordgo.MessageEmbed) {
	ctx := context.Background()

	originName := ""
	if guild, err := b.session.State.Guild(fmt.Sprintf("%d", event.GuildID)); err == nil {
		originName = guild.Name
	}

	for _, guild := range b.session.State.Guilds {
		guildIDInt, err := parseSnowflake(guild.ID)
		if err != nil || guildIDInt == event.GuildID {
			continue
		}

		settings, err := b.settingsService.GetOrCreateSettings(ctx, guildIDInt)
		if err != nil {
			log.WithFields(log.Fields{
				"guildID": guild.ID,
				"error":   err,
			}).Warn("Skipping broadcast, failed to load guild settings")
			continue
		}
		if !settings.WantsGame(event.Game) {
			continue
		}

		channel, err := b.getOrCreateEventsChannel(guild.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"guildID": guild.ID,
				"eventID": event.ID,
				"error":   err,
			}).Warn("Skipping broadcast, no events channel")
			continue
		}

		broadcastEmbed := copyEmbedWithOrigin(embed, originName)
		if _, err := b.session.ChannelMessageSendEmbed(channel.ID, broadcastEmbed); err != nil {
			log.WithFields(log.Fields{
				"guildID": guild.ID,
				"eventID": event.ID,
				"error":   err,
			}).Warn("Failed to broadcast event")
			continue
		}

		log.WithFields(log.Fields{
			"guildID": guild.ID,
			"eventID": event.ID,
		}).Info("Event broadcast sent")
	}
}

// NotifyEventStarting announces an event whose start time is imminent
// in its origin guild's events channel. Used by the reminder scheduler.
func (b *Bot) NotifyEventStarting(event *models.Event) {
	channel, err := b.getOrCreateEventsChannel(fmt.Sprintf("%d", event.GuildID))
	if err != nil {
		log.WithFields(log.Fields{
			"eventID": event.ID,
			"error":   err,
		}).Warn("Failed to send event reminder")
		return
	}

	message := fmt.Sprintf("⏰ **%s** starts %s!", event.Name, FormatDiscordTimestamp(*event.StartTime, "R"))
	if _, err := b.session.ChannelMessageSend(channel.ID, message); err != nil {
		log.WithFields(log.Fields{
			"eventID": event.ID,
			"error":   err,
		}).Warn("Failed to send event reminder message")
	}
}
