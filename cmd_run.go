package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"RSVPBot/config"
	"RSVPBot/handler"
	"RSVPBot/pages"
	"RSVPBot/repo"
	"RSVPBot/wizard"
)

var runFlags struct {
	httpAddr  string
	logLevel  string
	logFormat string
	pagesFile string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot",
	Long: `Run the bot until interrupted.

Required environment:
  TELEGRAM_BOT_TOKEN   Bot API token
  RSVP_ENDPOINT_URL    Form-processing endpoint RSVPs are posted to

Optional environment:
  RSVP_SUBMIT_TIMEOUT      Submission timeout (default 15s)
  NOT_ATTENDING_LINK_URL   Guestbook link shown to guests who decline
  PAGES_FILE               YAML page catalog replacing the built-in one
  FIREBASE_SERVICE_ACCOUNT_KEY_PATH, FIREBASE_DATABASE_URL
                           Mirror accepted RSVPs into Firebase
  ORGANISER_CHAT_IDS       Comma-separated chats notified of new RSVPs
  WEBHOOK_URL, WEBHOOK_SECRET
                           Receive updates by webhook instead of polling
  HTTP_ADDR                Health check and webhook listener (default :8080)
  LOG_LEVEL, LOG_FORMAT    Logging (default info, json)`,
	RunE: runBot,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.httpAddr, "http-addr", "", "override HTTP_ADDR")
	f.StringVar(&runFlags.logLevel, "log-level", "", "override LOG_LEVEL")
	f.StringVar(&runFlags.logFormat, "log-format", "", "override LOG_FORMAT")
	f.StringVar(&runFlags.pagesFile, "pages", "", "override PAGES_FILE")
}

// applyRunFlags lets explicit flags win over the environment.
func applyRunFlags(cfg *config.Config) {
	if runFlags.httpAddr != "" {
		cfg.HTTPAddr = runFlags.httpAddr
	}
	if runFlags.logLevel != "" {
		cfg.LogLevel = runFlags.logLevel
	}
	if runFlags.logFormat != "" {
		cfg.LogFormat = runFlags.logFormat
	}
	if runFlags.pagesFile != "" {
		cfg.PagesFile = runFlags.pagesFile
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyRunFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	catalog, err := pages.Load(cfg.PagesFile)
	if err != nil {
		return err
	}

	var fc *repo.FirebaseConnector
	if cfg.FirebaseEnabled() {
		fc, err = repo.NewFirebaseConnectorFromKeyFile(ctx, cfg.FirebaseKeyPath, cfg.FirebaseDatabaseURL)
		if err != nil {
			return err
		}
		logger.Info().Str("database_url", cfg.FirebaseDatabaseURL).Msg("mirroring rsvps to firebase")
	}

	h := newRSVPHandler(cfg, catalog, fc, logger)

	opts := []bot.Option{bot.WithDefaultHandler(h.Handler)}
	if cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var webhook http.Handler
	if cfg.WebhookEnabled() {
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:         cfg.WebhookURL,
			SecretToken: cfg.WebhookSecret,
		}); err != nil {
			return fmt.Errorf("error setting webhook: %w", err)
		}
		webhook = b.WebhookHandler()
		g.Go(func() error {
			b.StartWebhook(gctx)
			return nil
		})
		logger.Info().Str("url", cfg.WebhookURL).Msg("receiving updates by webhook")
	} else {
		g.Go(func() error {
			b.Start(gctx)
			return nil
		})
		logger.Info().Msg("receiving updates by long polling")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(webhook),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		return serve(gctx, srv, logger)
	})

	err = g.Wait()
	logger.Info().Msg("bot stopped")
	return err
}

// newRSVPHandler wires the submission pipeline. fc may be nil.
func newRSVPHandler(cfg config.Config, catalog *pages.Catalog, fc *repo.FirebaseConnector, logger zerolog.Logger) *handler.RSVPBotHandler {
	var submitter wizard.Submitter = repo.NewEndpointSubmitter(cfg.EndpointURL, cfg.SubmitTimeout, logger)
	var responses handler.SubmissionLister
	if fc != nil {
		submitter = &repo.MirroredSubmitter{
			Primary: submitter,
			Mirrors: []wizard.Submitter{fc},
			Logger:  logger,
		}
		responses = fc
	}

	h := handler.NewRSVPBotHandler(submitter, catalog, logger,
		wizard.WithNotAttendingLink(cfg.NotAttendingURL),
	)
	if len(cfg.OrganiserChatIDs) > 0 {
		h.Organiser = handler.NewOrganiserBotHandler(cfg.OrganiserChatIDs, responses, logger)
	}
	return h
}

// runContext is the context cobra hands to commands when none was set.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
