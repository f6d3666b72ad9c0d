package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"dkpbot/models"
)

// buildEventEmbed renders an event announcement embed
func buildEventEmbed(s *discordgo.Session, event *models.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎮 Event: %s", event.Name),
		Description: "A new event has been created.",
		Color:       0x5865F2,
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Genre", Value: event.Genre, Inline: true},
		&discordgo.MessageEmbedField{Name: "Game", Value: event.Game, Inline: true},
	)

	if event.StartTime != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Start Time",
			Value: event.StartTime.Format(models.EventTimeLayout),
		})
	}

	if event.EndTime != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "End Time",
			Value: event.EndTime.Format(models.EventTimeLayout),
		})
	}

	if event.ParticipantLimit != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Participants",
			Value:  fmt.Sprintf("%d", *event.ParticipantLimit),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Event Type",
		Value:  capitalize(string(event.Type)),
		Inline: true,
	})

	if event.RewardAmount > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "DKP Reward",
			Value:  fmt.Sprintf("%s DKP (via reward code)", FormatPoints(event.RewardAmount)),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Description",
		Value: event.Description,
	})

	creatorName := fmt.Sprintf("<@%d>", event.CreatorID)
	if user, err := s.User(fmt.Sprintf("%d", event.CreatorID)); err == nil {
		creatorName = user.Username
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Event ID: %d • Created by %s", event.ID, creatorName),
	}

	return embed
}

// copyEmbedWithOrigin clones an embed for broadcast, appending the
// origin guild's name to the footer.
func copyEmbedWithOrigin(embed *discordgo.MessageEmbed, originName string) *discordgo.MessageEmbed {
	cloned := *embed
	cloned.Fields = append([]*discordgo.MessageEmbedField{}, embed.Fields...)

	footerText := ""
	if embed.Footer != nil {
		footerText = embed.Footer.Text
	}
	if originName != "" {
		if footerText != "" {
			footerText += " • "
		}
		footerText += fmt.Sprintf("From: %s", originName)
	}
	cloned.Footer = &discordgo.MessageEmbedFooter{Text: footerText}

	return &cloned
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
