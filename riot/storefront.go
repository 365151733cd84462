package riot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GetStore returns the daily rotating shop for the session's account.
func (c *Client) GetStore(ctx context.Context, s *Session) (*Store, error) {
	doc, err := c.storefront(ctx, s)
	if err != nil {
		return nil, err
	}

	panel := doc.SkinsPanelLayout
	if panel == nil {
		return nil, upstreamf("storefront: missing SkinsPanelLayout")
	}
	if panel.SingleItemOffersRemainingDurationInSeconds == nil {
		return nil, upstreamf("storefront: missing SingleItemOffersRemainingDurationInSeconds")
	}
	if len(panel.SingleItemOffers) != len(panel.SingleItemStoreOffers) {
		return nil, upstreamf("storefront: %d offer ids but %d store offers",
			len(panel.SingleItemOffers), len(panel.SingleItemStoreOffers))
	}

	skins, err := c.lookupSkins(ctx, panel.SingleItemOffers)
	if err != nil {
		return nil, err
	}

	offers := make([]Offer, len(skins))
	for i, skin := range skins {
		// SingleItemStoreOffers is positionally aligned with SingleItemOffers.
		cost, err := pickCost(panel.SingleItemStoreOffers[i].Cost)
		if err != nil {
			return nil, fmt.Errorf("offer %s: %w", skin.ID, err)
		}
		offers[i] = Offer{
			Skin:     skin,
			Cost:     cost,
			ImageURL: c.endpoints.ImageURL(panel.SingleItemOffers[i]),
		}
	}

	return &Store{
		Offers:                   offers,
		RemainingDurationSeconds: *panel.SingleItemOffersRemainingDurationInSeconds,
	}, nil
}

// GetNightMarket returns the night market, or ErrNotAvailable when the
// storefront has no bonus store.
func (c *Client) GetNightMarket(ctx context.Context, s *Session) (*NightMarket, error) {
	doc, err := c.storefront(ctx, s)
	if err != nil {
		return nil, err
	}
	if doc.BonusStore == nil {
		return nil, ErrNotAvailable
	}
	if doc.BonusStore.BonusStoreRemainingDurationInSeconds == nil {
		return nil, upstreamf("storefront: missing BonusStoreRemainingDurationInSeconds")
	}

	entries := doc.BonusStore.BonusStoreOffers
	ids := make([]string, len(entries))
	for i, e := range entries {
		if e.Offer.OfferID == "" {
			return nil, upstreamf("bonus store offer %d has no OfferID", i)
		}
		if e.DiscountPercent == nil {
			return nil, upstreamf("bonus store offer %s has no DiscountPercent", e.Offer.OfferID)
		}
		ids[i] = e.Offer.OfferID
	}

	skins, err := c.lookupSkins(ctx, ids)
	if err != nil {
		return nil, err
	}

	offers := make([]NightMarketOffer, len(entries))
	for i, e := range entries {
		discounted, err := pickCost(e.DiscountCosts)
		if err != nil {
			return nil, fmt.Errorf("bonus offer %s discount: %w", skins[i].ID, err)
		}
		original, err := pickCost(e.Offer.Cost)
		if err != nil {
			return nil, fmt.Errorf("bonus offer %s cost: %w", skins[i].ID, err)
		}
		offers[i] = NightMarketOffer{
			Skin:            skins[i],
			DiscountedCost:  discounted,
			OriginalCost:    original,
			DiscountPercent: *e.DiscountPercent,
			ImageURL:        c.endpoints.ImageURL(ids[i]),
		}
	}

	return &NightMarket{
		Offers:                   offers,
		RemainingDurationSeconds: *doc.BonusStore.BonusStoreRemainingDurationInSeconds,
	}, nil
}

func (c *Client) storefront(ctx context.Context, s *Session) (*storefrontResponse, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil session", ErrUpstream)
	}
	if s.region == "" {
		return nil, ErrRegionNotFound
	}
	if c.endpoints.Storefront == nil {
		return nil, fmt.Errorf("storefront endpoint not configured")
	}

	u := c.endpoints.Storefront(s.region) + "/store/v2/storefront/" + url.PathEscape(s.userID)
	var doc storefrontResponse
	status, err := c.doJSON(ctx, c.httpClient, http.MethodGet, u, s.header, nil, &doc)
	if err != nil {
		return nil, fmt.Errorf("storefront: %w", err)
	}
	if err := checkStatus("storefront", status); err != nil {
		return nil, err
	}
	return &doc, nil
}

// lookupSkins resolves catalog entries concurrently. The result has the same
// order as ids regardless of completion order; any failure aborts the rest.
func (c *Client) lookupSkins(ctx context.Context, ids []string) ([]Skin, error) {
	skins := make([]Skin, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.lookupConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			skin, err := c.lookupSkin(gctx, id)
			if err != nil {
				return err
			}
			skins[i] = skin
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return skins, nil
}

func (c *Client) lookupSkin(ctx context.Context, id string) (Skin, error) {
	u := c.endpoints.Catalog + "/" + url.PathEscape(strings.ToLower(id))
	h := http.Header{}
	h.Set("Accept", "application/json")

	var resp skinLevelResponse
	status, err := c.doJSON(ctx, c.httpClient, http.MethodGet, u, h, nil, &resp)
	if err != nil {
		return Skin{}, fmt.Errorf("catalog %s: %w", id, err)
	}
	if err := checkStatus("catalog "+id, status); err != nil {
		return Skin{}, err
	}
	if resp.Data == nil || resp.Data.DisplayName == "" {
		return Skin{}, upstreamf("catalog %s: missing displayName", id)
	}

	skinID := resp.Data.UUID
	if skinID == "" {
		skinID = id
	}
	c.logger.Debug("resolved skin", zap.String("id", id), zap.String("name", resp.Data.DisplayName))
	return Skin{ID: strings.ToLower(skinID), DisplayName: resp.Data.DisplayName}, nil
}

// pickCost returns a single amount from a currency-keyed cost map. Valorant
// Points win when present; otherwise the smallest currency id is used so the
// choice is stable.
func pickCost(cost map[string]int) (int, error) {
	if len(cost) == 0 {
		return 0, upstreamf("empty cost map")
	}
	if v, ok := cost[ValorantPoints]; ok {
		return v, nil
	}
	keys := make([]string, 0, len(cost))
	for k := range cost {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return cost[keys[0]], nil
}
