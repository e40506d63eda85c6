package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	defaultConfigFile = "configs/values_local.yaml"
	redacted          = "***"
)

// явные имена переменных окружения поверх автоматических SECTION_KEY
var envBindings = map[string]string{
	"alerts.telegram.token":   "TELEGRAM_TOKEN",
	"alerts.telegram.chat_id": "TELEGRAM_CHAT_ID",
	"journal.dsn":             "DATABASE_DSN",
	"service.port":            "PORT",
	"exchange.api_key":        "EXCHANGE_API_KEY",
	"exchange.api_secret":     "EXCHANGE_API_SECRET",
	"exchange.passphrase":     "EXCHANGE_PASSPHRASE",
	"cache.addr":              "REDIS_ADDR",
}

// NewConfig: провайдер для fx: .env, затем файл из CONFIG_FILE, затем окружение.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv(configFilePathENV)
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load собирает конфиг из дефолтов, YAML-файла (если path не пуст) и окружения.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	base, err := yaml.Marshal(Default())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal defaults")
	}
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, pkgerrors.Wrap(err, "read defaults")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, pkgerrors.Wrapf(err, "read config file %s", path)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, pkgerrors.Wrapf(err, "bind env %s", env)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "decode config")
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Scan.Intervals = helper.NormTFs(c.Scan.Intervals)
	c.Scan.EntryInterval = helper.NormTF(c.Scan.EntryInterval)
	c.Strategy.Rule = strings.ToLower(c.Strategy.Rule)
	c.Strategy.TrendLine = strings.ToLower(c.Strategy.TrendLine)
	c.Strategy.RSISmoothing = strings.ToLower(c.Strategy.RSISmoothing)
	c.Risk.Policy = strings.ToLower(c.Risk.Policy)
	c.Exchange.Name = strings.ToLower(c.Exchange.Name)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет теги и правила между полями. Ошибка всегда ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", models.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}

	entry := c.EntryTF()
	found := false
	for _, tf := range c.Scan.Intervals {
		if tf == entry {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: entry interval %q is not in %v", models.ErrInvalidConfig, entry, c.Scan.Intervals)
	}

	if c.Risk.Policy == "percent" && (c.Risk.StopPct <= 0 || c.Risk.TakePct <= 0) {
		return fmt.Errorf("%w: percent policy needs stop_pct and take_pct > 0", models.ErrInvalidConfig)
	}
	if c.Execution.Enabled && (c.Exchange.APIKey == "" || c.Exchange.APISecret == "") {
		return fmt.Errorf("%w: execution needs exchange api key and secret", models.ErrInvalidConfig)
	}
	if c.Execution.Enabled && c.Exchange.Name == "okx" && c.Exchange.Passphrase == "" {
		return fmt.Errorf("%w: okx execution needs a passphrase", models.ErrInvalidConfig)
	}
	return nil
}

// Dump: эффективный конфиг в YAML без секретов, для лога на старте.
func (c *Config) Dump() (string, error) {
	cp := *c
	cp.Exchange.APIKey = redact(cp.Exchange.APIKey)
	cp.Exchange.APISecret = redact(cp.Exchange.APISecret)
	cp.Exchange.Passphrase = redact(cp.Exchange.Passphrase)
	cp.Alerts.Telegram.Token = redact(cp.Alerts.Telegram.Token)
	cp.Journal.DSN = redact(cp.Journal.DSN)
	cp.Cache.Password = redact(cp.Cache.Password)

	out, err := yaml.Marshal(cp)
	if err != nil {
		return "", pkgerrors.Wrap(err, "marshal config")
	}
	return string(out), nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
