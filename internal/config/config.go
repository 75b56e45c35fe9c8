package config

import (
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Configuration struct {
	// Listen is the address the HTTP server binds to.
	Listen string
	// DbUrl is the path to the database file.
	DbUrl string
	// MigrationsFolder is where the SQL migration files live.
	MigrationsFolder string
	// Debug, if true, makes the application log every request and query.
	Debug bool
	// Name of the network.
	Name string
	// Domain is the name of the host running the application.
	Domain string
	Https  bool
	// Url is the service's external URL; boost and credential URIs are
	// minted under it.
	Url *url.URL
}

// ReadConfig loads the configuration from boostnet.yaml in the working
// directory, with every key overridable through BOOSTNET_* environment
// variables.
func ReadConfig() (Configuration, error) {
	v := viper.New()
	v.SetConfigName("boostnet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/boostnet")

	v.SetDefault("listen", ":8080")
	v.SetDefault("dburl", "boostnet.db")
	v.SetDefault("migrationsfolder", "migrations")
	v.SetDefault("name", "boostnet")
	v.SetDefault("domain", "localhost:8080")
	v.SetDefault("https", false)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("boostnet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Configuration{}, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, err
	}

	scheme := "http"
	if cfg.Https {
		scheme = "https"
	}
	u, err := url.Parse(scheme + "://" + cfg.Domain)
	if err != nil {
		return Configuration{}, err
	}
	cfg.Url = u

	return cfg, nil
}
