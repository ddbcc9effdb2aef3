// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bot

import (
	"context"
	"io"
	"strings"
)

// Message is an inbound chat message.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
}

// Field is one name/value row of an Embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a titled card of fields.
type Embed struct {
	Title         string
	Author        string
	AuthorIconURL string
	Fields        []Field
}

// Add appends a field and returns e for chaining.
func (e *Embed) Add(name, value string) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
	return e
}

// AddInline appends an inline field.
func (e *Embed) AddInline(name, value string) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: true})
	return e
}

// Replier sends answers back to the chat.
type Replier interface {
	React(ctx context.Context, channelID, messageID, emoji string) error
	SendEmbed(ctx context.Context, channelID string, e Embed) error
	SendText(ctx context.Context, channelID, text string) error
	SendFile(ctx context.Context, channelID, name string, r io.Reader) error
}

// User is a chat user as shown in embeds.
type User struct {
	ID        string
	Name      string
	AvatarURL string
}

// Directory looks users up by id.
type Directory interface {
	User(ctx context.Context, id string) (User, error)
}

// ParseMention returns the user id of a "<@id>" or "<@!id>" mention.
func ParseMention(s string) (string, bool) {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return "", false
	}
	id := strings.TrimPrefix(s[2:len(s)-1], "!")
	if id == "" {
		return "", false
	}
	return id, true
}
