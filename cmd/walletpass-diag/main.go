package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"walletpass/config"
	"walletpass/db"
	"walletpass/db/catalog"
	"walletpass/db/orders"
	"walletpass/db/passes"
	"walletpass/db/settings"
	"walletpass/diagnostics"
	"walletpass/extractor"
	"walletpass/gateway"
	"walletpass/locks"
	passService "walletpass/passes"
	"walletpass/pubsub"
	"walletpass/render"
)

type Handler struct {
	dbconn       *sqlx.DB
	redisClient  *redis.Client
	settingsRepo *settings.PostgresRepository
	diagnostics  diagnostics.Diagnostics
}

// NewHandler builds the diagnostics from the same environment the service reads.
func NewHandler() (*Handler, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}

	dbconn, err := db.Open(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}

	redisClient := pubsub.NewRedisClient(cfg.RedisAddr)

	catalogRepo := catalog.NewPostgresRepository(dbconn)
	ordersRepo := orders.NewPostgresRepository(dbconn)
	passesRepo := passes.NewPostgresRepository(dbconn)
	settingsRepo := settings.NewPostgresRepository(dbconn)

	service := passService.NewService(
		gateway.NewPassSourceClient(cfg.PassSource.BaseURL, cfg.PassSource.Timeout),
		passesRepo,
		locks.NewRedisLocker(redisClient, cfg.PassLockTTL),
		cfg.OrganizationName,
	)

	return &Handler{
		dbconn:       dbconn,
		redisClient:  redisClient,
		settingsRepo: settingsRepo,
		diagnostics: diagnostics.New(
			settingsRepo,
			service,
			ordersRepo,
			extractor.NewExtractor(ordersRepo, catalogRepo),
			passesRepo,
			render.NewRenderer(cfg.AssetsBaseURL),
		),
	}, nil
}

func (h *Handler) Close() {
	_ = h.redisClient.Close()
	_ = h.dbconn.Close()
}

func withHandler(action func(ctx context.Context, h *Handler) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		h, err := NewHandler()
		if err != nil {
			return err
		}
		defer h.Close()

		out, err := action(c.Context, h)
		if err != nil {
			return err
		}

		return printJSON(out)
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	logrus.SetLevel(logrus.WarnLevel)

	app := &cli.App{
		Name:  "walletpass-diag",
		Usage: "Check the wallet pass integration",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run every check",
				Action: func(c *cli.Context) error {
					h, err := NewHandler()
					if err != nil {
						return err
					}
					defer h.Close()

					report, err := h.diagnostics.Run(c.Context)
					if err != nil {
						return err
					}

					if err := printJSON(report); err != nil {
						return err
					}
					if !report.OK() {
						return cli.Exit("some checks failed", 1)
					}

					return nil
				},
			},
			{
				Name:  "settings",
				Usage: "check the required settings",
				Action: withHandler(func(ctx context.Context, h *Handler) (any, error) {
					current, err := h.settingsRepo.Get(ctx)
					if err != nil {
						return nil, err
					}
					return h.diagnostics.CheckSettings(current), nil
				}),
			},
			{
				Name:  "verify",
				Usage: "verify the PassSource credentials",
				Action: withHandler(func(ctx context.Context, h *Handler) (any, error) {
					current, err := h.settingsRepo.Get(ctx)
					if err != nil {
						return nil, err
					}
					return h.diagnostics.CheckConnection(ctx, current), nil
				}),
			},
			{
				Name:  "extract",
				Usage: "extract ticket data of the most recent order with tickets",
				Action: withHandler(func(ctx context.Context, h *Handler) (any, error) {
					return h.diagnostics.CheckExtraction(ctx), nil
				}),
			},
			{
				Name:  "generate",
				Usage: "generate the pass of the first ticket of the most recent order with tickets",
				Action: withHandler(func(ctx context.Context, h *Handler) (any, error) {
					current, err := h.settingsRepo.Get(ctx)
					if err != nil {
						return nil, err
					}
					return h.diagnostics.CheckPassGeneration(ctx, current, h.diagnostics.CheckExtraction(ctx)), nil
				}),
			},
			{
				Name:      "render",
				ArgsUsage: "[order_id]",
				Usage:     "render the wallet buttons of an order, or of a sample pass",
				Action: func(c *cli.Context) error {
					h, err := NewHandler()
					if err != nil {
						return err
					}
					defer h.Close()

					current, err := h.settingsRepo.Get(c.Context)
					if err != nil {
						return err
					}

					check := h.diagnostics.CheckRendering(c.Context, current, c.Args().First())
					if !check.OK {
						return fmt.Errorf("rendering failed: %s", check.Message)
					}

					return printJSON(check)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
