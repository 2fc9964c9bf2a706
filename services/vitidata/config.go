package vitidata

import (
	"os"
	"time"

	"vitibrasil-backend/lib/configutil"
	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/snapshotstore"
)

type PolicyConfig struct {
	Retries               *uint64  `json:"retries"`
	BackoffBaseMs         *int     `json:"backoff_base_ms"`
	AttemptTimeoutSeconds *int     `json:"attempt_timeout_seconds"`
	DropThreshold         *float64 `json:"drop_threshold"`
}

type Config struct {
	// defaults to the public site
	BaseUrl string `json:"base_url"`
	// sqlite path or libsql url, defaults to ./vitibrasil.db
	SnapshotDb             string       `json:"snapshot_db"`
	RefreshIntervalMinutes int          `json:"refresh_interval_minutes"`
	Policy                 PolicyConfig `json:"policy"`
}

func (c PolicyConfig) Policy() Policy {
	policy := DefaultPolicy()
	if c.Retries != nil {
		policy.Retries = *c.Retries
	}
	if c.BackoffBaseMs != nil {
		policy.BackoffBase = time.Millisecond * time.Duration(*c.BackoffBaseMs)
	}
	if c.AttemptTimeoutSeconds != nil {
		policy.AttemptTimeout = time.Second * time.Duration(*c.AttemptTimeoutSeconds)
	}
	if c.DropThreshold != nil {
		policy.DropThreshold = *c.DropThreshold
	}
	return policy
}

func (c Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalMinutes <= 0 {
		return time.Hour * 6
	}
	return time.Minute * time.Duration(c.RefreshIntervalMinutes)
}

// LoadConfig searches up the filesystem for vitibrasil.json5; a missing
// file just means defaults.
func LoadConfig() (Config, error) {
	config, err := configutil.ReadRecursively[Config]("vitibrasil.json5")
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	return config, err
}

// NewServiceFromConfig wires up the scraper client and snapshot store a
// binary needs to serve this engine.
func NewServiceFromConfig(config Config) (Service, error) {
	dbPath := config.SnapshotDb
	if dbPath == "" {
		dbPath = "vitibrasil.db"
	}
	store, err := snapshotstore.Open(dbPath)
	if err != nil {
		return Service{}, err
	}

	client := vitibrasil.NewClient(vitibrasil.ClientOptions{
		BaseUrl: config.BaseUrl,
	})

	return NewService(client, store, config.Policy.Policy()), nil
}
