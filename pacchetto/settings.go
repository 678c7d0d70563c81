package pacchetto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type CORSSettings struct {
	Origins []string `mapstructure:"origins" validate:"min=1,dive,url"`
	Methods []string `mapstructure:"methods" validate:"min=1,dive,oneof=GET POST PUT DELETE OPTIONS PATCH HEAD"`
	Headers []string `mapstructure:"headers" validate:"min=1,dive,baseheader"`
}

type HTTPSettings struct {
	Port   string       `mapstructure:"port" validate:"required,numeric"`
	Prefix string       `mapstructure:"prefix" validate:"required"`
	IP     string       `mapstructure:"ip" validate:"required,ip"`
	CORS   CORSSettings `mapstructure:"cors" validate:"required"`
}

type GRPCClientSettings struct {
	Address                              string `mapstructure:"address" validate:"required"`
	Retries                              uint   `mapstructure:"retries" validate:"min=0,max=10"`
	ExponentialBackoffBaseInMilliseconds int    `mapstructure:"exponential-backoff-base-in-milliseconds" validate:"min=0"`
}

type GRPCServerSettings struct {
	EnableReflection             bool   `mapstructure:"enable-reflection"`
	AsyncHealthIntervalInSeconds int    `mapstructure:"async-health-interval-in-seconds" validate:"required,min=5"`
	Port                         int    `mapstructure:"port" validate:"required,min=1"`
	Host                         string `mapstructure:"host" validate:"required,ip"`
}

type NatsSettings struct {
	UseCredentials bool `mapstructure:"usecredentials"`
	// Only used if UseCredentials is true
	Username string `mapstructure:"username" validate:"required_if=UseCredentials true"`
	Password string `mapstructure:"password" validate:"required_if=UseCredentials true"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,min=1"`
	Stream   string `mapstructure:"stream" validate:"required"`
	Subject  string `mapstructure:"subject" validate:"required"`
}

func (n *NatsSettings) GetNatsClient() (*nats.Conn, error) {
	portStr := strconv.Itoa(n.Port)
	opts := []nats.Option{nats.Name("jollof")}
	if n.UseCredentials {
		opts = append(opts, nats.UserInfo(n.Username, n.Password))
	}
	return nats.Connect(n.Host+":"+portStr, opts...)
}

type DatabaseSettings struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN                      string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns             int    `mapstructure:"max-open-conns" validate:"min=0"`
	MaxIdleConns             int    `mapstructure:"max-idle-conns" validate:"min=0"`
	ConnMaxLifetimeInMinutes int    `mapstructure:"conn-max-lifetime-in-minutes" validate:"min=0"`
}

// Open connects gorm to the configured driver and applies the pool limits.
func (d *DatabaseSettings) Open(cfg *gorm.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch d.Driver {
	case "sqlite":
		dialector = sqlite.Open(d.DSN)
	case "postgres":
		dialector = postgres.Open(d.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}

	if cfg == nil {
		cfg = &gorm.Config{}
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(d.MaxOpenConns)
	}
	if d.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(d.MaxIdleConns)
	}
	if d.ConnMaxLifetimeInMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(d.ConnMaxLifetimeInMinutes) * time.Minute)
	}
	return db, nil
}

type AuthSettings struct {
	JWTSecret         string `mapstructure:"jwt-secret" validate:"required,min=16"`
	TokenTTLInMinutes int    `mapstructure:"token-ttl-in-minutes" validate:"required,min=1"`
	Issuer            string `mapstructure:"issuer" validate:"required"`
}

func (a AuthSettings) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLInMinutes) * time.Minute
}

type AppSettings struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
}

type OpenTelemetryLogSettings struct {
	TimeoutInSec  int64 `mapstructure:"timeout"`
	IntervalInSec int64 `mapstructure:"interval"`
	MaxQueueSize  int   `mapstructure:"maxqueuesize"`
	BatchSize     int   `mapstructure:"batchsize"`
}

type OpenTelemetryTraceSettings struct {
	TimeoutInSec int64   `mapstructure:"timeout"`
	MaxQueueSize int     `mapstructure:"maxqueuesize"`
	BatchSize    int     `mapstructure:"batchsize"`
	SampleRate   float64 `mapstructure:"samplerate" validate:"gte=0,lte=1"`
}

type OpenTelemetryMetricSettings struct {
	IntervalInSec int64 `mapstructure:"interval"`
	TimeoutInSec  int64 `mapstructure:"timeout"`
}

type OpenTelemetrySettings struct {
	Enabled  bool                        `mapstructure:"enabled"`
	Endpoint string                      `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Metrics  OpenTelemetryMetricSettings `mapstructure:"metrics"`
	Traces   OpenTelemetryTraceSettings  `mapstructure:"traces"`
	Logs     OpenTelemetryLogSettings    `mapstructure:"logs"`
}
