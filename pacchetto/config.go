package pacchetto

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var allowedCORSHeaders = map[string]struct{}{
	"Accept": {}, "Authorization": {}, "Content-Type": {}, "X-CSRF-Token": {},
}

// NewValidator returns a validator with the custom rules used by the settings structs.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("baseheader", func(fl validator.FieldLevel) bool {
		_, ok := allowedCORSHeaders[fl.Field().String()]
		return ok
	})
	return validate
}

// LoadConfig reads the embedded yaml, lets environment variables prefixed with
// envPrefix override any key and validates the result.
//
// A .env file in the working directory is loaded first when present.
func LoadConfig[T any](envPrefix string, baseConfig []byte) (*T, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("err", err))
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(baseConfig)); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	v.AutomaticEnv()

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
