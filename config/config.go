package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Bun        BunConfig
	Store      Store
	LoggerMode LoggerMode
	Auth       Auth
	Ledger     Ledger
	Sync       Sync
	Realtime   Realtime
	Sweeper    Sweeper
	Outbox     Outbox
	Settlement Settlement
}

type Server struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

type BunConfig struct {
	DSN string
}

type Store struct {
	// Driver is "postgres" or "memory".
	Driver string
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

type Auth struct {
	MaxClockSkew time.Duration
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
}

type Ledger struct {
	MinBreadcrumbs int
	MinTrustScore  float64
	ReservationTTL time.Duration
	WelcomeGrant   bool
}

type Sync struct {
	NodeID         string
	Peers          []string
	PullInterval   time.Duration
	BatchLimit     int
	UnhealthyAfter int
}

type Realtime struct {
	HeartbeatInterval time.Duration
	SendBuffer        int
}

type Sweeper struct {
	Interval time.Duration
}

type Outbox struct {
	Workers     int
	MaxAttempts int
	BaseBackoff time.Duration
	QueueSize   int
}

type Settlement struct {
	URL string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.maxBodyBytes", int64(1<<20))

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("loggerMode.development", true)
	v.SetDefault("loggerMode.level", "info")

	v.SetDefault("auth.maxClockSkew", 5*time.Minute)
	v.SetDefault("auth.sessionTTL", 24*time.Hour)
	v.SetDefault("auth.challengeTTL", 5*time.Minute)

	v.SetDefault("ledger.minBreadcrumbs", 100)
	v.SetDefault("ledger.minTrustScore", 20.0)
	v.SetDefault("ledger.reservationTTL", 30*24*time.Hour)
	v.SetDefault("ledger.welcomeGrant", true)

	v.SetDefault("sync.nodeID", "gns-node-local")
	v.SetDefault("sync.peers", []string{})
	v.SetDefault("sync.pullInterval", time.Duration(0))
	v.SetDefault("sync.batchLimit", 500)
	v.SetDefault("sync.unhealthyAfter", 5)

	v.SetDefault("realtime.heartbeatInterval", 30*time.Second)
	v.SetDefault("realtime.sendBuffer", 64)

	v.SetDefault("sweeper.interval", time.Minute)

	v.SetDefault("outbox.workers", 2)
	v.SetDefault("outbox.maxAttempts", 5)
	v.SetDefault("outbox.baseBackoff", 500*time.Millisecond)
	v.SetDefault("outbox.queueSize", 1024)
}

var ErrConfigNotFound = errors.New("config file not found")

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")

	v.SetEnvPrefix("GNS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	return &c, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	c, _ := ParseConfig(v)
	return c
}
