// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"runners-bot/internal/rank"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNoToken is returned when DISCORD_TOKEN is not set.
var ErrNoToken = errors.New("DISCORD_TOKEN is not set")

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!"`
	LivenessAddr string `env:"LIVENESS_ADDR" envDefault:":8080"`

	// Head, Executive and Archivist Runner.
	StaffRoleIDs []string `env:"STAFF_ROLE_IDS" envSeparator:"," envDefault:"1447712026775392357,1467220717056823369,1465730843090616448"`

	PromoLogChannelID string `env:"PROMO_LOG_CHANNEL_ID" envDefault:"1462640325712547997"`
	LogChannelID      string `env:"LOG_CHANNEL_ID" envDefault:"1469817201904058430"`

	// Lowest first.
	Ranks       []string `env:"RANKS" envSeparator:"," envDefault:"Entrance Runner,Basic Runner,Skilled Runner,Master Runner,Diligent Runner,Lead Runner,Archivist Runner"`
	RankRoleIDs []string `env:"RANK_ROLE_IDS" envSeparator:","`
}

// Parse reads the configuration from the environment without requiring a
// token. Offline tools use it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.DiscordToken = strings.TrimSpace(cfg.DiscordToken)
	cfg.StaffRoleIDs = compact(cfg.StaffRoleIDs)
	cfg.Ranks = compact(cfg.Ranks)
	cfg.RankRoleIDs = compact(cfg.RankRoleIDs)

	if _, err := cfg.Ladder(); err != nil {
		return nil, fmt.Errorf("invalid RANKS: %w", err)
	}
	return &cfg, nil
}

// Load is Parse plus the checks the bot needs to connect.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if cfg.DiscordToken == "" {
		return nil, ErrNoToken
	}
	return cfg, nil
}

// New is Load for process startup: any error is fatal.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	return cfg
}

// Ladder builds the rank ladder from Ranks and RankRoleIDs.
func (c *Config) Ladder() (*rank.Ladder, error) {
	return rank.NewLadder(c.Ranks, c.RankRoleIDs)
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
