// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package bot turns chat commands into wallet operations. Every user gets a
// custodial account derived from their user id; balance affecting commands
// first receive whatever is pending on that account.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complex-gh/bantip"
	"github.com/complex-gh/bantip/internal/banano"
	"github.com/holiman/uint256"
	"github.com/segmentio/ksuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// CrossMark is the reaction for malformed commands.
const CrossMark = "❌"

// Wallet is the ledger the bot works against.
type Wallet interface {
	bantip.Ledger
	Send(ctx context.Context, secret, destination string, amount *uint256.Int) (string, error)
}

// Config holds the bot settings taken from the configuration file.
type Config struct {
	Prefix string
	Emoji  string
	// Representative is named in every receive block.
	Representative string
	Drain          bantip.DrainOptions
}

// Bot handles commands. Handle is not safe for concurrent use with itself
// on the same account; the Queue serializes calls.
type Bot struct {
	cfg     Config
	deriver *bantip.Deriver
	wallet  Wallet
	replier Replier
	users   Directory
	logger  *zap.Logger
}

// New returns a Bot. A nil logger discards logs.
func New(cfg Config, deriver *bantip.Deriver, w Wallet, r Replier, users Directory, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{cfg: cfg, deriver: deriver, wallet: w, replier: r, users: users, logger: logger}
}

// command is the state shared by the handlers of one message.
type command struct {
	msg     Message
	words   []string
	secret  string
	account string
	logger  *zap.Logger
}

// Handle runs the command in m, if any. Failures are reported to the channel
// and returned.
func (b *Bot) Handle(ctx context.Context, m Message) error {
	if m.AuthorIsBot || !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return nil
	}
	words := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.Prefix))
	if len(words) == 0 {
		return nil
	}

	var handler func(context.Context, *command) error
	switch words[0] {
	case "help":
		handler = b.help
	case "account":
		handler = b.showAccount
	case "accountinfo":
		handler = b.accountInfo
	case "recieve":
		handler = b.misspelledReceive
	case "receive":
		handler = b.receive
	case "send":
		handler = b.send
	case "tip":
		handler = b.tip
	default:
		return nil
	}

	logger := b.logger.With(
		zap.String("cid", ksuid.New().String()),
		zap.String("user", m.AuthorID),
		zap.String("command", words[0]),
	)
	c := &command{msg: m, words: words, logger: logger}

	start := time.Now()
	err := b.identify(c)
	if err != nil {
		b.react(ctx, c, CrossMark)
		err = b.fail(ctx, c, Embed{Title: words[0] + " failed"}, err)
	} else {
		err = handler(ctx, c)
	}
	if err != nil {
		logger.Warn("command failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return err
	}
	logger.Info("command done", zap.Duration("took", time.Since(start)))
	return nil
}

// identify fills in the author's secret and account.
func (b *Bot) identify(c *command) error {
	secret, err := b.deriver.Secret(c.msg.AuthorID)
	if err != nil {
		return fmt.Errorf("could not derive account: %w", err)
	}
	account, err := b.wallet.AccountFromSecret(secret)
	if err != nil {
		return fmt.Errorf("could not derive account: %w", err)
	}
	c.secret, c.account = secret, account
	return nil
}

func (b *Bot) help(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	e := Embed{Title: "help commands"}
	e.Add(b.cfg.Prefix+"help", "show help").
		Add(b.cfg.Prefix+"account", "show account").
		Add(b.cfg.Prefix+"accountinfo", "show account and pending block info").
		Add(b.cfg.Prefix+"receive", "receive pending").
		Add(b.cfg.Prefix+"send", "send <amount> <account>").
		Add(b.cfg.Prefix+"tip", "tip <amount> <@user>")
	return b.replier.SendEmbed(ctx, c.msg.ChannelID, e)
}

func (b *Bot) showAccount(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	if err := b.replier.SendText(ctx, c.msg.ChannelID, c.account); err != nil {
		return err
	}
	png, err := qrcode.Encode(c.account, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("could not render account qr code: %w", err)
	}
	return b.replier.SendFile(ctx, c.msg.ChannelID, "account.png", bytes.NewReader(png))
}

func (b *Bot) accountInfo(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	if err := b.drain(ctx, c); err != nil {
		return err
	}

	e := Embed{Title: "account info"}
	e.Add("account", c.account)
	info, err := b.wallet.AccountInfo(ctx, c.account)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	if info.Error != "" {
		e.Add("error", info.Error)
	}
	if info.Balance != nil {
		e.Add("balance", banano.Describe(info.Balance))
	}
	if !info.ModifiedTimestamp.IsZero() {
		e.Add("last change", info.ModifiedTimestamp.UTC().Format("2006-01-02T15:04:05.000Z"))
	}

	// Blocks that arrived after the drain are listed, not received.
	blocks, err := b.wallet.Pending(ctx, c.account, b.cfg.Drain.MaxPending)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	for i, blk := range blocks {
		if i > 0 {
			e.Add("\u200b", "\u200b")
		}
		e.Add("pending block", fmt.Sprintf("%d of %d", i+1, len(blocks)))
		e.AddInline("hash", blk.Hash)
		e.AddInline("source", orDash(blk.Source))
		e.AddInline("amount", banano.Describe(blk.Amount))
	}
	return b.replier.SendEmbed(ctx, c.msg.ChannelID, e)
}

func (b *Bot) misspelledReceive(ctx context.Context, c *command) error {
	b.react(ctx, c, CrossMark)
	e := Embed{Title: "help command for receive"}
	e.Add(b.cfg.Prefix+"receive", "receive pending")
	return b.replier.SendEmbed(ctx, c.msg.ChannelID, e)
}

func (b *Bot) receive(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	return b.drain(ctx, c)
}

func (b *Bot) send(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	if len(c.words) < 3 {
		return b.usage(ctx, c, "send", "send <amount> <account>")
	}
	if err := b.drain(ctx, c); err != nil {
		return err
	}

	amount, destination := c.words[1], c.words[2]
	e := Embed{Title: "send"}
	e.Add("amount", amount)
	raw, err := banano.ParseAmount(amount)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	e.Add("description", banano.Describe(raw))
	e.Add("to account", destination)
	return b.transfer(ctx, c, e, destination, raw)
}

func (b *Bot) tip(ctx context.Context, c *command) error {
	b.react(ctx, c, b.cfg.Emoji)
	if len(c.words) < 3 {
		return b.usage(ctx, c, "tip", "tip <amount> <@user>")
	}
	if err := b.drain(ctx, c); err != nil {
		return err
	}

	amount := c.words[1]
	e := Embed{Title: "send"}
	e.Add("amount", amount)
	raw, err := banano.ParseAmount(amount)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	e.Add("description", banano.Describe(raw))

	toID, ok := ParseMention(c.words[2])
	if !ok {
		return b.fail(ctx, c, e, fmt.Errorf("%q is not a user mention", c.words[2]))
	}
	if b.users != nil {
		if u, err := b.users.User(ctx, toID); err == nil {
			e.Author, e.AuthorIconURL = u.Name, u.AvatarURL
		} else {
			c.logger.Debug("could not look up tipped user", zap.String("to", toID), zap.Error(err))
		}
	}
	toSecret, err := b.deriver.Secret(toID)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	toAccount, err := b.wallet.AccountFromSecret(toSecret)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	e.Add("to user", "<@"+toID+">")
	e.Add("to account", toAccount)
	return b.transfer(ctx, c, e, toAccount, raw)
}

// transfer sends raw to destination and posts e with the outcome.
func (b *Bot) transfer(ctx context.Context, c *command, e Embed, destination string, raw *uint256.Int) error {
	hash, err := b.wallet.Send(ctx, c.secret, destination, raw)
	if err != nil {
		return b.fail(ctx, c, e, err)
	}
	c.logger.Info("sent", zap.String("to", destination), zap.String("hash", hash), zap.String("raw", raw.Dec()))
	e.Add("response", hash)
	return b.replier.SendEmbed(ctx, c.msg.ChannelID, e)
}

// drain receives everything pending on the caller's account, posting one
// embed per receive.
func (b *Bot) drain(ctx context.Context, c *command) error {
	opts := b.cfg.Drain
	opts.Logger = c.logger
	var sendErr error
	err := bantip.DrainPending(ctx, b.wallet, b.cfg.Representative, c.secret, opts, func(r bantip.ReceiveResult) {
		e := Embed{Title: "receive"}
		e.Add("account", c.account)
		if r.PendingMessage != "" {
			e.Add("Pending", r.PendingMessage)
		}
		if r.ReceiveMessage != "" {
			e.Add("Receive", r.ReceiveMessage)
		}
		if err := b.replier.SendEmbed(ctx, c.msg.ChannelID, e); err != nil && sendErr == nil {
			sendErr = err
		}
	})
	if err != nil {
		var timeout *bantip.DrainTimeoutError
		title := "receive failed"
		if errors.As(err, &timeout) {
			title = "receive incomplete"
		}
		return b.fail(ctx, c, Embed{Title: title}, err)
	}
	if sendErr != nil {
		c.logger.Warn("could not post receive", zap.Error(sendErr))
	}
	return nil
}

func (b *Bot) usage(ctx context.Context, c *command, name, usage string) error {
	b.react(ctx, c, CrossMark)
	e := Embed{Title: "help command for " + name}
	e.Add(b.cfg.Prefix+name, usage)
	return b.replier.SendEmbed(ctx, c.msg.ChannelID, e)
}

// fail posts e with an error field and returns err.
func (b *Bot) fail(ctx context.Context, c *command, e Embed, err error) error {
	e.Add("error", err.Error())
	if sendErr := b.replier.SendEmbed(ctx, c.msg.ChannelID, e); sendErr != nil {
		c.logger.Warn("could not post error", zap.Error(sendErr))
	}
	return err
}

func (b *Bot) react(ctx context.Context, c *command, emoji string) {
	if err := b.replier.React(ctx, c.msg.ChannelID, c.msg.ID, emoji); err != nil {
		c.logger.Debug("could not react", zap.String("emoji", emoji), zap.Error(err))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
