package config

import (
	"errors"
	"time"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	Port        string `mapstructure:"port"`
	Analyze     bool   `mapstructure:"analyze"`
	DatabaseURL string `mapstructure:"databaseURL"`

	Sanity  Sanity  `mapstructure:"sanity"`
	Cache   Cache   `mapstructure:"cache"`
	Preview Preview `mapstructure:"preview"`
	Log     Log     `mapstructure:"log"`
}

type Sanity struct {
	ProjectID  string        `mapstructure:"projectID"`
	Dataset    string        `mapstructure:"dataset"`
	APIVersion string        `mapstructure:"apiVersion"`
	UseCDN     *bool         `mapstructure:"useCDN"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Preview holds bcrypt hashes of the shared secrets; the plain secrets never
// live in configuration.
type Preview struct {
	SecretHash        string        `mapstructure:"secretHash"`
	WebhookSecretHash string        `mapstructure:"webhookSecretHash"`
	SessionTTL        time.Duration `mapstructure:"sessionTTL"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

// CDN reports whether published reads go through the API CDN. Unset, it
// follows the environment.
func (c Config) CDN() bool {
	if c.Sanity.UseCDN != nil {
		return *c.Sanity.UseCDN
	}
	return c.Production()
}

func (c Config) Validate() error {
	var errs []error
	if c.Sanity.ProjectID == "" {
		errs = append(errs, errors.New("sanity.projectID is required"))
	}
	if c.Sanity.Dataset == "" {
		errs = append(errs, errors.New("sanity.dataset is required"))
	}
	if c.Sanity.APIVersion == "" {
		errs = append(errs, errors.New("sanity.apiVersion is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, errors.New("log.format must be text or json"))
	}
	return errors.Join(errs...)
}
