package authsvc

import (
	"time"
)

// AuthConfig contains configuration parameters for the authentication service.
// It is read once at startup and never modified afterwards.
type AuthConfig struct {
	// SigningSecret is the HS256 secret. If empty, it is read from SigningKeyFile.
	SigningSecret string `env:"SIGNING_SECRET" envDefault:"" toml:"signing_secret"`

	// SigningKeyFile is the path to the secret file, created on first start
	SigningKeyFile string `env:"SIGNING_KEY_FILE" envDefault:"var/storage/authsvc.key" toml:"signing_key_file"`

	// TokenTTL is the validity duration of every issued token
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h" toml:"token_ttl"`

	// HashCost is the bcrypt work factor
	HashCost int `env:"HASH_COST" envDefault:"10" toml:"hash_cost"`
}
