package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dkpbot/service"
)

// handleCreateEvent creates an event from the slash command options.
// The response to the creator is ephemeral; the embed announcement and
// any broadcast are delivered through the event bus subscriber.
func (b *Bot) handleCreateEvent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command can only be used in a server.")
		return
	}
	creatorID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to resolve your user id.")
		return
	}

	params := service.CreateEventParams{
		GuildID:   guildID,
		CreatorID: creatorID,
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "name":
			params.Name = opt.StringValue()
		case "genre":
			params.Genre = opt.StringValue()
		case "game":
			params.Game = opt.StringValue()
		case "type":
			params.Type = opt.StringValue()
		case "description":
			params.Description = opt.StringValue()
		case "user_limit":
			limit := int(opt.IntValue())
			params.ParticipantLimit = &limit
		case "start_time":
			params.StartTime = opt.StringValue()
		case "end_time":
			params.EndTime = opt.StringValue()
		case "dkp_reward":
			params.RewardAmount = opt.IntValue()
		}
	}

	event, err := b.eventService.CreateEvent(ctx, params)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			b.respondWithError(s, i, validationMessage(ve))
			return
		}
		log.Errorf("Error creating event: %v", err)
		b.respondWithError(s, i, "Unable to create event. Please try again.")
		return
	}

	if event.RewardCode != "" {
		b.respond(s, i, fmt.Sprintf(
			"✅ Event created.\nYour DKP reward code is: `%s`\nShare this code with participants you want to reward.",
			event.RewardCode), true)
	} else {
		b.respond(s, i, "✅ Event created.", true)
	}
}

// handleRedeemCode redeems a reward code for the invoking user
func (b *Bot) handleRedeemCode(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command can only be used in a server.")
		return
	}
	userID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to resolve your user id.")
		return
	}

	var code string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "code" {
			code = opt.StringValue()
		}
	}

	result, err := b.redemptionService.Redeem(ctx, code, guildID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeNotFound):
			b.respondWithError(s, i, "Invalid or expired code.")
		case errors.Is(err, service.ErrWrongGuild):
			b.respondWithError(s, i, "This code does not belong to this server.")
		case errors.Is(err, service.ErrAlreadyRedeemed):
			b.respondWithError(s, i, "You have already redeemed this code.")
		default:
			log.Errorf("Error redeeming code: %v", err)
			b.respondWithError(s, i, "Unable to redeem code. Please try again.")
		}
		return
	}

	b.respond(s, i, fmt.Sprintf(
		"✅ You received **%s DKP** for `%s`.\nYour new total DKP: **%s**.",
		FormatPoints(result.Amount), result.EventName, FormatPoints(result.NewTotal)), true)
}

// handleSetGames updates the guild's game broadcast preferences
func (b *Bot) handleSetGames(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command can only be used in a server.")
		return
	}

	var raw string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "games" {
			raw = opt.StringValue()
		}
	}

	var games []string
	for _, game := range strings.Split(raw, ",") {
		game = strings.TrimSpace(game)
		if game != "" {
			games = append(games, game)
		}
	}

	if err := b.settingsService.SetGamePreferences(ctx, guildID, games); err != nil {
		if service.IsValidationError(err) {
			b.respondWithError(s, i, "You must specify at least one game.")
			return
		}
		log.Errorf("Error setting game preferences: %v", err)
		b.respondWithError(s, i, "Unable to update preferences. Please try again.")
		return
	}

	b.respond(s, i, fmt.Sprintf("✅ Event preferences updated: %s", strings.Join(games, ", ")), true)
}

// validationMessage maps a validation error to a user-facing message
func validationMessage(ve *service.ValidationError) string {
	switch ve.Field {
	case "start_time":
		return "Invalid start time. Use: `YYYY-MM-DD HH:MM`"
	case "end_time":
		return "Invalid end time. Use: `YYYY-MM-DD HH:MM`"
	case "reward":
		return "DKP reward cannot be negative."
	case "limit":
		return "Participant limit must be positive."
	default:
		return fmt.Sprintf("Invalid %s.", ve.Field)
	}
}
