package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kyoukaya/valorant-daily/notify"
	"github.com/kyoukaya/valorant-daily/riot"
)

const (
	flagEnvFile = "env-file"
	flagDebug   = "debug"
	flagInitial = "initial"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "valorant-daily: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type service struct {
	cfg    config
	logger *zap.Logger
	app    *app
	bot    *notify.Bot
}

func newRootCommand() *cobra.Command {
	rt := &service{}
	var envFile string
	var debug bool

	root := &cobra.Command{
		Use:           "valorant-daily",
		Short:         "Post a Valorant account's daily store to Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}
			return rt.setup(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, flagEnvFile, ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().BoolVar(&debug, flagDebug, false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "store",
		Short: "Post the daily store once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.PostStore(cmd.Context(), rt.cfg.ChannelID)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "nightmarket",
		Short: "Post the night market once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.PostNightMarket(cmd.Context(), rt.cfg.ChannelID)
		},
	})

	var initial bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Post the store on SCHEDULE (default \"" + defaultSchedule + "\", UTC) and answer chat commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.serve(cmd.Context(), initial)
		},
	}
	run.Flags().BoolVar(&initial, flagInitial, true, "post once immediately on startup")
	root.AddCommand(run)

	return root
}

func (rt *service) setup(cfg config) error {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}

	var poster notify.Poster
	switch {
	case cfg.DiscordToken != "":
		bot, err := notify.NewBot(cfg.DiscordToken, cfg.CommandPrefix, logger.Named("discord"))
		if err != nil {
			return err
		}
		rt.bot = bot
		poster = bot
	case cfg.Webhook != "":
		poster = notify.NewDiscord(cfg.Webhook)
	default:
		logger.Warn("no Discord sink configured, printing to stdout")
		poster = &notify.Console{W: os.Stdout}
	}

	client := riot.NewClient(
		riot.WithTimeout(cfg.HTTPTimeout),
		riot.WithLogger(logger.Named("riot")),
	)

	rt.cfg = cfg
	rt.logger = logger
	rt.app = &app{
		creds: riot.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			Region:   cfg.Region,
		},
		riot:   client,
		codes:  &terminalCodes{in: os.Stdin, out: os.Stdout, timeout: defaultCodeTimeout},
		poster: poster,
		logger: logger,
		now:    time.Now,
	}
	return nil
}

// serve runs scheduled mode until ctx is done.
func (rt *service) serve(ctx context.Context, initial bool) error {
	gron := gronx.New()
	if !gron.IsValid(rt.cfg.Schedule) {
		return fmt.Errorf("invalid cron expression: %s", rt.cfg.Schedule)
	}

	if rt.bot != nil {
		rt.bot.Handle("store", rt.app.command(rt.app.PostStore))
		rt.bot.Handle("nightmarket", rt.app.command(rt.app.PostNightMarket))
		if err := rt.bot.Open(ctx); err != nil {
			return err
		}
		defer rt.bot.Close()
		rt.logger.Info("listening for chat commands", zap.String("prefix", rt.cfg.CommandPrefix))
	}

	rt.logger.Info("starting scheduled mode", zap.String("schedule", rt.cfg.Schedule))
	if initial {
		rt.postScheduled(ctx)
	}

	for {
		next, err := nextRun(rt.cfg.Schedule, time.Now())
		if err != nil {
			return fmt.Errorf("compute next tick: %w", err)
		}
		rt.logger.Info("next run", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			rt.logger.Info("received signal, shutting down")
			return nil
		case <-timer.C:
			rt.postScheduled(ctx)
		}
	}
}

// postScheduled runs one scheduled post. Failures are logged only; the next
// tick starts from scratch.
func (rt *service) postScheduled(ctx context.Context) {
	if err := rt.app.PostStore(ctx, rt.cfg.ChannelID); err != nil {
		rt.logger.Error("scheduled post failed", zap.String("reason", riot.UserMessage(err)))
	}
}

// nextRun returns the next tick of expr strictly after now, in UTC. The store
// rotates at 00:00 UTC.
func nextRun(expr string, now time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, now.UTC(), false)
}
