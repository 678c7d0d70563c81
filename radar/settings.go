package main

import (
	_ "embed"
	"time"

	"github.com/taldoflemis/jollof/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type RadarSettings struct {
	// SubscriberBuffer is how many events a slow dashboard may lag behind
	// before it starts missing them.
	SubscriberBuffer   int  `mapstructure:"subscriber-buffer" validate:"required,min=1"`
	HeartbeatInSeconds int  `mapstructure:"heartbeat-in-seconds" validate:"required,min=1"`
	ReplayOnStart      bool `mapstructure:"replay-on-start"`
}

func (r RadarSettings) Heartbeat() time.Duration {
	return time.Duration(r.HeartbeatInSeconds) * time.Second
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	Ordini        pacchetto.GRPCClientSettings    `mapstructure:"ordini" validate:"required"`
	Auth          pacchetto.AuthSettings          `mapstructure:"auth" validate:"required"`
	Radar         RadarSettings                   `mapstructure:"radar" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("RADAR", baseConfig)
}
