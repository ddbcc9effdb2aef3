// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bot

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// EmbedColor is the banana yellow of every embed.
const EmbedColor = 0xDBA250

// Discord connects a Bot to a Discord gateway session and answers through
// the same session.
type Discord struct {
	session *discordgo.Session
	logger  *zap.Logger
}

var (
	_ Replier   = (*Discord)(nil)
	_ Directory = (*Discord)(nil)
)

// NewDiscord prepares a session for the bot token. Call Open to connect.
func NewDiscord(token string, logger *zap.Logger) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discord{session: s, logger: logger}, nil
}

// Attach routes every created message to b through q.
func (d *Discord) Attach(b *Bot, q *Queue) {
	d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		msg := Message{
			ID:          m.ID,
			ChannelID:   m.ChannelID,
			AuthorID:    m.Author.ID,
			AuthorIsBot: m.Author.Bot,
			Content:     m.Content,
		}
		if msg.AuthorIsBot {
			return
		}
		q.Submit(func(ctx context.Context) error {
			return b.Handle(ctx, msg)
		})
	})
	d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.logger.Info("connected to discord", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
}

// Open connects to the gateway.
func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *Discord) Close() error {
	return d.session.Close()
}

// React implements Replier.
func (d *Discord) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

// SendEmbed implements Replier.
func (d *Discord) SendEmbed(ctx context.Context, channelID string, e Embed) error {
	_, err := d.session.ChannelMessageSendEmbed(channelID, toDiscordEmbed(e), discordgo.WithContext(ctx))
	return err
}

// SendText implements Replier.
func (d *Discord) SendText(ctx context.Context, channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

// SendFile implements Replier.
func (d *Discord) SendFile(ctx context.Context, channelID, name string, r io.Reader) error {
	_, err := d.session.ChannelFileSend(channelID, name, r, discordgo.WithContext(ctx))
	return err
}

// User implements Directory.
func (d *Discord) User(ctx context.Context, id string) (User, error) {
	u, err := d.session.User(id, discordgo.WithContext(ctx))
	if err != nil {
		return User{}, err
	}
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return User{ID: u.ID, Name: name, AvatarURL: u.AvatarURL("")}, nil
}

func toDiscordEmbed(e Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{Title: e.Title, Color: EmbedColor}
	if e.Author != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author, IconURL: e.AuthorIconURL}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}
