package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Poster delivers a single card to a channel.
type Poster interface {
	Post(ctx context.Context, channelID string, card Card) error
}

// Deliver posts cards in order and stops at the first failure.
func Deliver(ctx context.Context, p Poster, channelID string, cards []Card) error {
	for i, card := range cards {
		if err := p.Post(ctx, channelID, card); err != nil {
			return fmt.Errorf("post card %d/%d: %w", i+1, len(cards), err)
		}
	}
	return nil
}

// Console prints cards as text. It is used when no Discord sink is configured.
type Console struct {
	W io.Writer
}

func (c *Console) Post(_ context.Context, channelID string, card Card) error {
	var b strings.Builder
	if channelID != "" {
		fmt.Fprintf(&b, "[#%s] ", channelID)
	}
	fmt.Fprintf(&b, "**%s**\n", card.Title)
	if card.Description != "" {
		fmt.Fprintf(&b, "%s\n", card.Description)
	}
	if card.ImageURL != "" {
		fmt.Fprintf(&b, "%s\n", card.ImageURL)
	}
	_, err := io.WriteString(c.W, b.String())
	return err
}
