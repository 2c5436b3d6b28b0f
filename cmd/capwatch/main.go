package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/core-coin/capwatch/internal/capwatch"
	"github.com/core-coin/capwatch/internal/config"
	"github.com/core-coin/capwatch/internal/http_api"
	"github.com/core-coin/capwatch/internal/marketdata"
	"github.com/core-coin/capwatch/internal/metrics"
	"github.com/core-coin/capwatch/internal/models"
	"github.com/core-coin/capwatch/internal/notificator"
	"github.com/core-coin/capwatch/pkg/logger"
)

const metricsNamespace = "capwatch"

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Aliases: []string{"P"}, Usage: "Webhook listener port"},
		&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		&cli.StringFlag{Name: "market-cap-min", Aliases: []string{"m"}, Usage: "Lower market cap bound in USD (inclusive)"},
		&cli.StringFlag{Name: "market-cap-max", Aliases: []string{"M"}, Usage: "Upper market cap bound in USD (inclusive)"},
		&cli.StringFlag{Name: "telegram-chat-id", Aliases: []string{"c"}, Usage: "Telegram chat that receives alerts"},
		&cli.StringFlag{Name: "moralis-base-url", Usage: "Moralis API base URL"},
		&cli.StringFlag{Name: "telegram-api-base", Usage: "Telegram Bot API base URL"},
		&cli.DurationFlag{Name: "http-timeout", Usage: "Timeout for outbound API calls"},
	}
}

func main() {
	app := &cli.App{
		Name:  "capwatch",
		Usage: "Relays Solana transaction webhooks to Telegram, filtered by token market cap",
		Flags: flags(),
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.ReadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := applyFlags(c, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Infow("Starting capwatch",
		"port", cfg.APIPort,
		"market_cap_min", cfg.MarketCapBounds.Min,
		"market_cap_max", cfg.MarketCapBounds.Max,
		"chat_id", cfg.TelegramChatID,
	)

	// Initialize market data client
	marketData := marketdata.NewClient(cfg.MoralisAPIKey, cfg.MoralisBaseURL, marketdata.WithTimeout(cfg.HTTPTimeout))
	// Initialize notificator
	telegram, err := notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramAPIBase, cfg.HTTPTimeout)
	if err != nil {
		return errors.Wrap(err, "failed to initialize telegram notificator")
	}

	pipelineMetrics := metrics.NewMetrics(metricsNamespace)

	// Create Capwatch instance
	capwatchApp := capwatch.NewCapwatch(
		marketData,
		telegram,
		log,
		capwatch.Settings{ChatID: cfg.TelegramChatID, Bounds: cfg.MarketCapBounds},
		pipelineMetrics,
	)

	var apiServer models.APIServer = http_api.NewHTTPServer(capwatchApp, cfg.APIPort, cfg.MaxConcurrentEvents, log, pipelineMetrics)
	go apiServer.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Infow("Received shutdown signal", "signal", sig.String())

	return apiServer.Shutdown()
}

// applyFlags overrides environment configuration with explicitly set flags
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("port") {
		cfg.APIPort = c.Int("port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("market-cap-min") {
		bound, err := config.ParseBound(c.String("market-cap-min"))
		if err != nil {
			return errors.Wrap(err, "invalid --market-cap-min")
		}
		cfg.MarketCapBounds.Min = bound
	}
	if c.IsSet("market-cap-max") {
		bound, err := config.ParseBound(c.String("market-cap-max"))
		if err != nil {
			return errors.Wrap(err, "invalid --market-cap-max")
		}
		cfg.MarketCapBounds.Max = bound
	}
	if c.IsSet("telegram-chat-id") {
		cfg.TelegramChatID = c.String("telegram-chat-id")
	}
	if c.IsSet("moralis-base-url") {
		cfg.MoralisBaseURL = c.String("moralis-base-url")
	}
	if c.IsSet("telegram-api-base") {
		cfg.TelegramAPIBase = c.String("telegram-api-base")
	}
	if c.IsSet("http-timeout") {
		cfg.HTTPTimeout = c.Duration("http-timeout")
	}
	return nil
}
