package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dkpbot/service"
)

// handleDKPCommand dispatches the /dkp subcommands
func (b *Bot) handleDKPCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Please specify a subcommand.")
		return
	}

	switch options[0].Name {
	case "check":
		b.handleDKPCheck(s, i, options[0].Options)
	case "add":
		b.handleDKPChange(s, i, options[0].Options, true)
	case "remove":
		b.handleDKPChange(s, i, options[0].Options, false)
	case "top":
		b.handleDKPTop(s, i, options[0].Options)
	case "history":
		b.handleDKPHistory(s, i, options[0].Options)
	default:
		b.respondWithError(s, i, "Unknown subcommand.")
	}
}

// handleDKPCheck shows the invoker's or another user's current total
func (b *Bot) handleDKPCheck(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := b.resolveTarget(s, i, options)
	if err != nil {
		b.respondWithError(s, i, "Unable to resolve user.")
		return
	}

	points, err := b.ledgerService.GetPoints(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error getting points: %v", err)
		b.respondWithError(s, i, "Unable to retrieve DKP. Please try again.")
		return
	}

	b.respond(s, i, fmt.Sprintf("<@%d> has **%s DKP**.", userID, FormatPoints(points)), false)
}

// handleDKPChange applies /dkp add or /dkp remove. Requires Manage
// Server permission, matching the original operator commands.
func (b *Bot) handleDKPChange(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption, add bool) {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageGuild == 0 {
		b.respondWithError(s, i, "You need **Manage Server** permissions to use this command.")
		return
	}

	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command can only be used in a server.")
		return
	}

	var targetID int64
	var amount int64
	var reason string
	for _, opt := range options {
		switch opt.Name {
		case "user":
			user := opt.UserValue(s)
			targetID, err = parseSnowflake(user.ID)
			if err != nil {
				b.respondWithError(s, i, "Unable to resolve user.")
				return
			}
		case "amount":
			amount = opt.IntValue()
		case "reason":
			reason = opt.StringValue()
		}
	}

	var newTotal int64
	if add {
		newTotal, err = b.ledgerService.AddPoints(ctx, guildID, targetID, amount, reason)
	} else {
		newTotal, err = b.ledgerService.RemovePoints(ctx, guildID, targetID, amount, reason)
	}
	if err != nil {
		if service.IsValidationError(err) {
			b.respondWithError(s, i, "Amount must be a positive number.")
			return
		}
		log.Errorf("Error changing points: %v", err)
		b.respondWithError(s, i, "Unable to update DKP. Please try again.")
		return
	}

	verb := "Added"
	direction := "to"
	if !add {
		verb = "Removed"
		direction = "from"
	}

	msg := fmt.Sprintf("%s **%s DKP** %s <@%d>. New total: **%s**.",
		verb, FormatPoints(amount), direction, targetID, FormatPoints(newTotal))
	if reason != "" {
		msg += fmt.Sprintf("\nReason: %s", reason)
	}

	b.respond(s, i, msg, false)
}

// handleDKPTop shows the guild leaderboard
func (b *Bot) handleDKPTop(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command can only be used in a server.")
		return
	}

	limit := b.config.DefaultLeaderboardSize
	for _, opt := range options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > b.config.MaxLeaderboardSize {
		limit = b.config.MaxLeaderboardSize
	}

	entries, err := b.ledgerService.GetLeaderboard(ctx, guildID, limit)
	if err != nil {
		log.Errorf("Error getting leaderboard: %v", err)
		b.respondWithError(s, i, "Unable to retrieve leaderboard. Please try again.")
		return
	}

	if len(entries) == 0 {
		b.respond(s, i, "No DKP data for this server yet.", false)
		return
	}

	var lines []string
	for rank, entry := range entries {
		lines = append(lines, fmt.Sprintf("**%d.** <@%d> — **%s DKP**",
			rank+1, entry.UserID, FormatPoints(entry.Points)))
	}

	guildName := ""
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildName = guild.Name + " "
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%sDKP Leaderboard", guildName),
		Description: strings.Join(lines, "\n"),
		Color:       0xFFD700,
	}

	b.respondWithEmbed(s, i, embed)
}

// handleDKPHistory shows the most recent ledger entries for a user
func (b *Bot) handleDKPHistory(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := b.resolveTarget(s, i, options)
	if err != nil {
		b.respondWithError(s, i, "Unable to resolve user.")
		return
	}

	entries, err := b.ledgerService.GetHistory(ctx, guildID, userID, b.config.DefaultLeaderboardSize)
	if err != nil {
		log.Errorf("Error getting ledger history: %v", err)
		b.respondWithError(s, i, "Unable to retrieve history. Please try again.")
		return
	}

	if len(entries) == 0 {
		b.respond(s, i, fmt.Sprintf("No DKP history for <@%d> yet.", userID), true)
		return
	}

	var lines []string
	for _, entry := range entries {
		change := FormatPoints(entry.Change)
		if entry.Change > 0 {
			change = "+" + change
		}
		line := fmt.Sprintf("%s **%s**", FormatDiscordTimestamp(entry.CreatedAt, "f"), change)
		if entry.Reason != nil {
			line += fmt.Sprintf(" — %s", *entry.Reason)
		}
		lines = append(lines, line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Recent DKP Changes",
		Description: strings.Join(lines, "\n"),
		Color:       0x5865F2,
	}

	b.respondWithEmbed(s, i, embed)
}

// resolveTarget returns the guild id and the target user id for
// commands taking an optional user option, defaulting to the invoker.
func (b *Bot) resolveTarget(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) (int64, int64, error) {
	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		return 0, 0, err
	}

	targetUserID := i.Member.User.ID
	for _, opt := range options {
		if opt.Name == "user" {
			targetUserID = opt.UserValue(s).ID
		}
	}

	userID, err := parseSnowflake(targetUserID)
	if err != nil {
		return 0, 0, err
	}

	return guildID, userID, nil
}
