package main

import (
	_ "embed"

	"github.com/shopspring/decimal"

	"github.com/taldoflemis/jollof/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type OrdiniSettings struct {
	DriverCommissionRate float64 `mapstructure:"driver-commission-rate" validate:"gte=0,lte=1"`
	TaxRate              float64 `mapstructure:"tax-rate" validate:"gte=0,lte=1"`
	SeedDemoData         bool    `mapstructure:"seed-demo-data"`
}

func (o OrdiniSettings) Commission() decimal.Decimal {
	return decimal.NewFromFloat(o.DriverCommissionRate)
}

func (o OrdiniSettings) Tax() decimal.Decimal {
	return decimal.NewFromFloat(o.TaxRate)
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	GRPCServer    pacchetto.GRPCServerSettings    `mapstructure:"grpc-server" validate:"required"`
	Database      pacchetto.DatabaseSettings      `mapstructure:"database" validate:"required"`
	Auth          pacchetto.AuthSettings          `mapstructure:"auth" validate:"required"`
	Ordini        OrdiniSettings                  `mapstructure:"ordini" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("ORDINI", baseConfig)
}
