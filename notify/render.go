package notify

import (
	"fmt"
	"time"

	"github.com/kyoukaya/valorant-daily/riot"
)

// Red is the embed colour of every card.
const Red = 0xe74c3c

const dateLayout = "02.01.2006"

// Card is one display unit posted to a channel.
type Card struct {
	Title       string
	Description string
	ImageURL    string
	Color       int
}

// FormatDuration renders whole seconds as days, hours and minutes using floor
// division. Days are omitted when zero; seconds are never shown.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	seconds %= 86400
	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	if days == 0 {
		return fmt.Sprintf("%d hours and %d minutes", hours, minutes)
	}
	return fmt.Sprintf("%d days, %d hours and %d minutes", days, hours, minutes)
}

// RenderStore converts a store into a header card followed by one card per offer.
func RenderStore(store *riot.Store, username string, asOf time.Time) []Card {
	cards := make([]Card, 0, len(store.Offers)+1)
	cards = append(cards, Card{
		Title:       fmt.Sprintf("%s's store (%s)", username, asOf.Format(dateLayout)),
		Description: "Offer ends in " + FormatDuration(store.RemainingDurationSeconds),
		Color:       Red,
	})
	for _, offer := range store.Offers {
		cards = append(cards, Card{
			Title:       offer.Skin.DisplayName,
			Description: fmt.Sprintf("Price: %d VP", offer.Cost),
			ImageURL:    offer.ImageURL,
			Color:       Red,
		})
	}
	return cards
}

// RenderNightMarket is RenderStore for the night market.
func RenderNightMarket(nm *riot.NightMarket, username string, asOf time.Time) []Card {
	cards := make([]Card, 0, len(nm.Offers)+1)
	cards = append(cards, Card{
		Title:       fmt.Sprintf("%s's nightmarket (%s)", username, asOf.Format(dateLayout)),
		Description: "Offer ends in " + FormatDuration(nm.RemainingDurationSeconds),
		Color:       Red,
	})
	for _, offer := range nm.Offers {
		cards = append(cards, Card{
			Title: offer.Skin.DisplayName,
			Description: fmt.Sprintf("~~%d VP~~ %d VP (-%d%%)",
				offer.OriginalCost, offer.DiscountedCost, offer.DiscountPercent),
			ImageURL: offer.ImageURL,
			Color:    Red,
		})
	}
	return cards
}
