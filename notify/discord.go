package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const webhookPrefix = "https://discord.com/api/webhooks/"

// ValidWebhookURL reports whether u looks like a Discord webhook URL.
func ValidWebhookURL(u string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u)), webhookPrefix)
}

func embed(card Card) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       card.Title,
		Description: card.Description,
		Color:       card.Color,
	}
	if card.ImageURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: card.ImageURL}
	}
	return e
}

// Discord posts cards through a Discord webhook, one embed per message. The
// channel is fixed by the webhook, so the channel id passed to Post is ignored.
type Discord struct {
	WebhookURL string

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewDiscord returns a webhook sink paced to Discord's limit of five
// requests per two seconds.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		WebhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(400*time.Millisecond), 5),
	}
}

// Post sends one card to the webhook.
func (d *Discord) Post(ctx context.Context, _ string, card Card) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed(card)},
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
