package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/chatpay/walletvault/internal/config"
	"github.com/chatpay/walletvault/internal/crypto"
	"github.com/chatpay/walletvault/internal/idempotency"
	"github.com/chatpay/walletvault/internal/identity"
	"github.com/chatpay/walletvault/internal/middleware"
	"github.com/chatpay/walletvault/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg          config.Config
	DB           *pgxpool.Pool
	PrivilegedDB *pgxpool.Pool
	Cache        *redis.Client
	Logger       *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	cipher, err := buildCipher(d.Cfg, d.Logger)
	if err != nil {
		return err
	}

	var userRepo identity.Repository
	var credRepo wallet.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		credRepo = wallet.NewPostgresRepository(d.DB, d.PrivilegedDB, d.Cfg.StoreAttemptTimeout, d.Logger)
	} else {
		userRepo = identity.NewMemoryRepository()
		credRepo = wallet.NewMemoryRepository()
	}

	resolver := identity.NewService(userRepo)
	store := wallet.NewStore(credRepo, cipher, d.Logger)

	var throttle wallet.Throttle
	if d.Cache != nil {
		throttle = wallet.NewRedisThrottle(d.Cache, d.Cfg.CreationCooldown)
	} else {
		throttle = wallet.NewMemoryThrottle(d.Cfg.CreationCooldown)
	}

	var provider wallet.Provider
	if d.Cfg.ProviderURL != "" {
		provider = wallet.NewHTTPProvider(d.Cfg.ProviderURL, d.Cfg.ProviderTimeout)
	} else {
		provider = wallet.StaticProvider{}
	}

	credentialSvc := wallet.NewService(resolver, store, wallet.NewCache(), throttle, provider, idempotency.NewGenerator(), d.Cfg.ChainNetwork, d.Logger)
	walletHandler := wallet.NewHandler(credentialSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterWalletRoutes(api, walletHandler)

	return nil
}

// buildCipher prefers the configured encryption key and falls back to a
// deterministic derivation from other server secrets. The fallback weakens
// the at-rest guarantee to the strength of those secrets, so it is refused in
// production and logged loudly everywhere else.
func buildCipher(cfg config.Config, log *slog.Logger) (*crypto.Cipher, error) {
	if len(cfg.EncryptionKey) >= crypto.KeySize {
		return crypto.NewCipher(cfg.EncryptionKey)
	}

	if cfg.IsProduction() {
		return nil, fmt.Errorf("encryption key missing or under %d bytes; fallback derivation is not allowed in production", crypto.KeySize)
	}

	log.Warn("ENCRYPTION KEY MISSING OR UNDERSIZED: deriving credential key from fallback secrets; at-rest protection is only as strong as those secrets")
	key, err := crypto.DeriveFallbackKey(cfg.EncryptionFallbackInput...)
	if err != nil {
		return nil, err
	}
	return crypto.NewCipher(key)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
