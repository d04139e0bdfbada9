// Package config loads service configuration from the environment. Each
// concern gets its own struct with env tags so main stays lean and tests can
// construct partial configs directly.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"VOUCH_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"VOUCH_JWT_SIGNING_KEY" envDefault:"dev-secret-change-in-production"`
	// PublicBaseURL is used to build the verification links embedded in
	// notification emails.
	PublicBaseURL string `env:"VOUCH_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
}

// Postgres configures the credential, template, and issuer record stores.
// An empty DSN selects the in-memory stores.
type Postgres struct {
	DSN string `env:"VOUCH_POSTGRES_DSN"`
}

// Redis configures the ledger validity cache. An empty URL disables caching.
type Redis struct {
	URL          string        `env:"VOUCH_REDIS_URL"`
	PoolSize     int           `env:"VOUCH_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"VOUCH_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"VOUCH_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"VOUCH_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"VOUCH_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	ValidityTTL  time.Duration `env:"VOUCH_REDIS_VALIDITY_TTL" envDefault:"1m"`
}

// Ledger configures the Fabric-backed ledger client and the shared signer.
type Ledger struct {
	ConnectionProfile string        `env:"VOUCH_LEDGER_CONNECTION_PROFILE"`
	Channel           string        `env:"VOUCH_LEDGER_CHANNEL" envDefault:"credentials"`
	Chaincode         string        `env:"VOUCH_LEDGER_CHAINCODE" envDefault:"certregistry"`
	MSPID             string        `env:"VOUCH_LEDGER_MSP_ID" envDefault:"OperatorMSP"`
	CertPath          string        `env:"VOUCH_LEDGER_CERT_PATH"`
	KeyPath           string        `env:"VOUCH_LEDGER_KEY_PATH"`
	SubmitTimeout     time.Duration `env:"VOUCH_LEDGER_SUBMIT_TIMEOUT" envDefault:"45s"`
	QueryTimeout      time.Duration `env:"VOUCH_LEDGER_QUERY_TIMEOUT" envDefault:"10s"`
	// SignerWait bounds how long a queued issuance waits for the shared
	// signing identity before failing loudly.
	SignerWait time.Duration `env:"VOUCH_LEDGER_SIGNER_WAIT" envDefault:"90s"`
}

// ContentStore configures the IPFS-backed content-addressed store.
type ContentStore struct {
	APIURL        string        `env:"VOUCH_IPFS_API_URL" envDefault:"http://localhost:5001"`
	GatewayURL    string        `env:"VOUCH_IPFS_GATEWAY_URL" envDefault:"https://ipfs.io"`
	UploadTimeout time.Duration `env:"VOUCH_IPFS_UPLOAD_TIMEOUT" envDefault:"15s"`
}

// Render configures the headless render engine.
type Render struct {
	Timeout time.Duration `env:"VOUCH_RENDER_TIMEOUT" envDefault:"30s"`
	// AssetRoots are the historical upload directories searched, in order,
	// when an asset reference is a bare filename or relative path.
	AssetRoots []string `env:"VOUCH_ASSET_ROOTS" envSeparator:":" envDefault:"uploads:uploads/templates"`
}

// Email configures the best-effort issuance notification.
type Email struct {
	Host        string `env:"VOUCH_EMAIL_HOST"`
	Port        int    `env:"VOUCH_EMAIL_PORT" envDefault:"25"`
	Username    string `env:"VOUCH_EMAIL_USERNAME"`
	Password    string `env:"VOUCH_EMAIL_PASSWORD"`
	FromAddress string `env:"VOUCH_EMAIL_FROM_ADDRESS" envDefault:"no-reply@vouch.local"`
	FromName    string `env:"VOUCH_EMAIL_FROM_NAME" envDefault:"Vouch Credentials"`
}

// Kafka configures the lifecycle event publisher. Empty brokers disable it.
type Kafka struct {
	Brokers []string `env:"VOUCH_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"VOUCH_KAFKA_TOPIC" envDefault:"vouch.credential.events"`
}

// Config is the root configuration for the service.
type Config struct {
	Server       Server
	Postgres     Postgres
	Redis        Redis
	Ledger       Ledger
	ContentStore ContentStore
	Render       Render
	Email        Email
	Kafka        Kafka
}

// Load reads all configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	for name, target := range map[string]any{
		"server":       &cfg.Server,
		"postgres":     &cfg.Postgres,
		"redis":        &cfg.Redis,
		"ledger":       &cfg.Ledger,
		"contentstore": &cfg.ContentStore,
		"render":       &cfg.Render,
		"email":        &cfg.Email,
		"kafka":        &cfg.Kafka,
	} {
		if err := env.Parse(target); err != nil {
			return Config{}, fmt.Errorf("load %s config: %w", name, err)
		}
	}
	return cfg, nil
}
