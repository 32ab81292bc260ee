package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

type Config struct {
	HTTPAddr    string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"PostgreSQL connection string"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address"`

	PassSource PassSource `group:"PassSource" namespace:"passsource" env-namespace:"PASSSOURCE"`

	AssetsBaseURL    string `long:"assets-base-url" env:"ASSETS_BASE_URL" default:"/assets/" description:"base URL of the wallet button images"`
	OrganizationName string `long:"organization-name" env:"ORGANIZATION_NAME" default:"Events" description:"organization name printed on passes"`

	RecheckDelay          time.Duration `long:"recheck-delay" env:"RECHECK_DELAY" default:"10s" description:"delay of the post-checkout re-check"`
	SchedulerPollInterval time.Duration `long:"scheduler-poll-interval" env:"SCHEDULER_POLL_INTERVAL" default:"1s"`
	PassLockTTL           time.Duration `long:"pass-lock-ttl" env:"PASS_LOCK_TTL" default:"60s" description:"expiry of the per attendee pass creation lock"`

	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"tracing is disabled when empty"`
}

type PassSource struct {
	BaseURL      string        `long:"base-url" env:"BASE_URL" default:"https://www.passsource.com/api/"`
	Timeout      time.Duration `long:"timeout" env:"TIMEOUT" default:"30s"`
	ClientHash   string        `long:"client-hash" env:"CLIENT_HASH" description:"seeds the settings on first start"`
	TemplateHash string        `long:"template-hash" env:"TEMPLATE_HASH" description:"seeds the settings on first start"`
}

// Load parses args and the environment. Unknown flags are an error.
func Load(args []string) (Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}

	return cfg, nil
}
