package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kyoukaya/valorant-daily/notify"
	"github.com/kyoukaya/valorant-daily/riot"
)

// storefront is the part of *riot.Client the pipeline needs.
type storefront interface {
	Authenticate(ctx context.Context, creds riot.Credentials, codes riot.CodeProvider) (*riot.Session, error)
	GetStore(ctx context.Context, s *riot.Session) (*riot.Store, error)
	GetNightMarket(ctx context.Context, s *riot.Session) (*riot.NightMarket, error)
}

// app runs the authenticate, fetch, render and deliver pipeline for one
// account. Runs are serialized: the vendor's handshake state is per account.
type app struct {
	creds  riot.Credentials
	riot   storefront
	codes  riot.CodeProvider
	poster notify.Poster
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

type renderFunc func(ctx context.Context, s *riot.Session, asOf time.Time) ([]notify.Card, error)

func (a *app) renderStore(ctx context.Context, s *riot.Session, asOf time.Time) ([]notify.Card, error) {
	store, err := a.riot.GetStore(ctx, s)
	if err != nil {
		return nil, err
	}
	return notify.RenderStore(store, a.creds.Username, asOf), nil
}

func (a *app) renderNightMarket(ctx context.Context, s *riot.Session, asOf time.Time) ([]notify.Card, error) {
	nm, err := a.riot.GetNightMarket(ctx, s)
	if err != nil {
		return nil, err
	}
	return notify.RenderNightMarket(nm, a.creds.Username, asOf), nil
}

// PostStore posts the daily store to channelID.
func (a *app) PostStore(ctx context.Context, channelID string) error {
	return a.run(ctx, "store", channelID, a.renderStore)
}

// PostNightMarket posts the night market to channelID. Nothing is posted
// when the night market is not running.
func (a *app) PostNightMarket(ctx context.Context, channelID string) error {
	err := a.run(ctx, "nightmarket", channelID, a.renderNightMarket)
	if errors.Is(err, riot.ErrNotAvailable) {
		return nil
	}
	return err
}

func (a *app) run(ctx context.Context, kind, channelID string, render renderFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	logger := a.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("kind", kind),
		zap.String("username", a.creds.Username),
	)
	start := a.now()

	session, err := a.riot.Authenticate(ctx, a.creds, a.codes)
	if err != nil {
		logger.Error("authentication failed", zap.Error(err))
		return err
	}
	logger.Info("authenticated", zap.String("region", session.Region()))

	cards, err := render(ctx, session, start.UTC())
	if errors.Is(err, riot.ErrNotAvailable) {
		logger.Info("nothing to post", zap.Error(err))
		return err
	}
	if err != nil {
		logger.Error("storefront retrieval failed", zap.Error(err))
		return err
	}

	if err := notify.Deliver(ctx, a.poster, channelID, cards); err != nil {
		logger.Error("delivery failed", zap.Error(err))
		return err
	}
	logger.Info("posted", zap.Int("cards", len(cards)), zap.Duration("took", a.now().Sub(start)))
	return nil
}

// command adapts a pipeline to a chat command, replying with a short
// explanation when it fails.
func (a *app) command(post func(ctx context.Context, channelID string) error) notify.CommandFunc {
	return func(ctx context.Context, channelID string) error {
		err := post(ctx, channelID)
		if err == nil {
			return nil
		}
		reply := notify.Card{Title: "Request failed", Description: riot.UserMessage(err), Color: notify.Red}
		if perr := a.poster.Post(ctx, channelID, reply); perr != nil {
			a.logger.Warn("failed to post error reply", zap.Error(perr))
		}
		return err
	}
}
