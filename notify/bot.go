package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// CommandFunc runs a chat command invoked in channelID.
type CommandFunc func(ctx context.Context, channelID string) error

// Bot is a Discord bot user. It posts cards to channels and answers
// prefixed chat commands such as "!nightmarket".
type Bot struct {
	session *discordgo.Session
	prefix  string
	logger  *zap.Logger

	mu       sync.RWMutex
	ctx      context.Context
	commands map[string]CommandFunc
}

func NewBot(token, prefix string, logger *zap.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	b := newBot(prefix, logger)
	b.session = s
	s.AddHandler(b.onMessage)
	return b, nil
}

func newBot(prefix string, logger *zap.Logger) *Bot {
	if prefix == "" {
		prefix = "!"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		prefix:   prefix,
		logger:   logger,
		ctx:      context.Background(),
		commands: map[string]CommandFunc{},
	}
}

// Handle registers fn for the command name, without prefix.
func (b *Bot) Handle(name string, fn CommandFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[strings.ToLower(name)] = fn
}

// Open connects to the gateway. Commands run with ctx until Close.
func (b *Bot) Open(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Post sends card as an embed to channelID.
func (b *Bot) Post(ctx context.Context, channelID string, card Card) error {
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed(card), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed to %s: %w", channelID, err)
	}
	return nil
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.mu.RLock()
	ctx := b.ctx
	b.mu.RUnlock()
	if _, err := b.handle(ctx, m.ChannelID, m.Content); err != nil {
		b.logger.Error("chat command failed", zap.String("channel", m.ChannelID), zap.Error(err))
	}
}

// handle dispatches content to a registered command. It reports whether a
// command matched.
func (b *Bot) handle(ctx context.Context, channelID, content string) (bool, error) {
	name, ok := parseCommand(b.prefix, content)
	if !ok {
		return false, nil
	}
	b.mu.RLock()
	fn, ok := b.commands[name]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	b.logger.Info("chat command", zap.String("command", name), zap.String("channel", channelID))
	return true, fn(ctx, channelID)
}

// parseCommand returns the lowercased command name of a prefixed message.
func parseCommand(prefix, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", false
	}
	return strings.ToLower(fields[0]), true
}
