package config

import (
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/risk"
	"signal_bot/internal/strategy"
	"signal_bot/internal/universe"
)

// Config ...
type Config struct {
	Service    ServiceConfig    `mapstructure:"service" yaml:"service"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Exchange   ExchangeConfig   `mapstructure:"exchange" yaml:"exchange"`
	Scan       ScanConfig       `mapstructure:"scan" yaml:"scan"`
	FetchRetry RetryConfig      `mapstructure:"fetch_retry" yaml:"fetch_retry"`
	Universe   UniverseConfig   `mapstructure:"universe" yaml:"universe"`
	Strategy   StrategyConfig   `mapstructure:"strategy" yaml:"strategy"`
	Risk       RiskConfig       `mapstructure:"risk" yaml:"risk"`
	Alerts     AlertsConfig     `mapstructure:"alerts" yaml:"alerts"`
	Execution  ExecutionConfig  `mapstructure:"execution" yaml:"execution"`
	Journal    JournalConfig    `mapstructure:"journal" yaml:"journal"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name" yaml:"name" validate:"required"`
	Host string `mapstructure:"host" yaml:"host"`
	// PORT из окружения, как у хостингов
	Port int `mapstructure:"port" yaml:"port" validate:"gt=0,lte=65535"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

type ExchangeConfig struct {
	Name       string        `mapstructure:"name" yaml:"name" validate:"oneof=binance okx"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	APISecret  string        `mapstructure:"api_secret" yaml:"api_secret"`
	Passphrase string        `mapstructure:"passphrase" yaml:"passphrase"`
	Testnet    bool          `mapstructure:"testnet" yaml:"testnet"`
	RateLimit  float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gt=0"` // запросов в секунду
	Burst      int           `mapstructure:"burst" yaml:"burst" validate:"gte=1"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

type ScanConfig struct {
	Intervals []string `mapstructure:"intervals" yaml:"intervals" validate:"required,min=1,dive,required"`
	// пусто: последний из intervals
	EntryInterval string        `mapstructure:"entry_interval" yaml:"entry_interval"`
	CandleLimit   int           `mapstructure:"candle_limit" yaml:"candle_limit" validate:"gtefield=MinBars"`
	MinBars       int           `mapstructure:"min_bars" yaml:"min_bars" validate:"gte=2"`
	Sleep         time.Duration `mapstructure:"sleep" yaml:"sleep" validate:"gt=0"`
	Workers       int           `mapstructure:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	Cooldown      time.Duration `mapstructure:"cooldown" yaml:"cooldown" validate:"gte=0"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1"`
	Backoff     time.Duration `mapstructure:"backoff" yaml:"backoff" validate:"gte=0"`
}

type UniverseConfig struct {
	QuoteSuffix string `mapstructure:"quote_suffix" yaml:"quote_suffix" validate:"required"`
	TopN        int    `mapstructure:"top_n" yaml:"top_n" validate:"gte=1"`
}

type StrategyConfig struct {
	Rule          string  `mapstructure:"rule" yaml:"rule" validate:"oneof=crossover reversal"`
	TrendLine     string  `mapstructure:"trend_line" yaml:"trend_line" validate:"oneof=ema sma"`
	FastWindow    int     `mapstructure:"fast_window" yaml:"fast_window" validate:"gt=0,ltfield=SlowWindow"`
	SlowWindow    int     `mapstructure:"slow_window" yaml:"slow_window" validate:"gt=0"`
	RSIWindow     int     `mapstructure:"rsi_window" yaml:"rsi_window" validate:"gt=0"`
	RSISmoothing  string  `mapstructure:"rsi_smoothing" yaml:"rsi_smoothing" validate:"oneof=wilder simple"`
	VolumeWindow  int     `mapstructure:"volume_window" yaml:"volume_window" validate:"gt=0"`
	Overbought    float64 `mapstructure:"overbought" yaml:"overbought" validate:"gt=0,lte=100"`
	Oversold      float64 `mapstructure:"oversold" yaml:"oversold" validate:"gte=0,ltfield=Overbought"`
	VolumeConfirm bool    `mapstructure:"volume_confirm" yaml:"volume_confirm"`
}

type RiskConfig struct {
	Policy              string  `mapstructure:"policy" yaml:"policy" validate:"oneof=swing percent"`
	SwingLookback       int     `mapstructure:"swing_lookback" yaml:"swing_lookback" validate:"gt=0"`
	SwingIncludeCurrent bool    `mapstructure:"swing_include_current" yaml:"swing_include_current"`
	RiskMultiple        float64 `mapstructure:"risk_multiple" yaml:"risk_multiple" validate:"gt=0"`
	StopPct             float64 `mapstructure:"stop_pct" yaml:"stop_pct" validate:"gte=0,lt=100"`
	TakePct             float64 `mapstructure:"take_pct" yaml:"take_pct" validate:"gte=0,lt=100"`
	Notional            float64 `mapstructure:"notional" yaml:"notional" validate:"gt=0"`
	Leverage            float64 `mapstructure:"leverage" yaml:"leverage" validate:"gt=0,lte=125"`
	QtyPrecision        int32   `mapstructure:"qty_precision" yaml:"qty_precision" validate:"gte=0,lte=12"`
	PricePrecision      int32   `mapstructure:"price_precision" yaml:"price_precision" validate:"gte=0,lte=12"`
}

type AlertsConfig struct {
	Stdout bool `mapstructure:"stdout" yaml:"stdout"`
	// дедлайн одной отправки, общий для всех каналов: чат, журнал, ордера
	Timeout  time.Duration  `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Token   string `mapstructure:"token" yaml:"token" validate:"required_if=Enabled true"`
	ChatID  int64  `mapstructure:"chat_id" yaml:"chat_id" validate:"required_if=Enabled true"`
}

// ExecutionConfig: отправка ордеров на ту же биржу, откуда берём свечи.
type ExecutionConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	MarginMode string `mapstructure:"margin_mode" yaml:"margin_mode" validate:"oneof=isolated cross"`
}

type JournalConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	DSN            string        `mapstructure:"dsn" yaml:"dsn" validate:"required_if=Enabled true"`
	MaxConns       int32         `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr      string        `mapstructure:"addr" yaml:"addr" validate:"required_if=Enabled true"`
	Password  string        `mapstructure:"password" yaml:"password"`
	DB        int           `mapstructure:"db" yaml:"db" validate:"gte=0"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`
	Namespace string        `mapstructure:"namespace" yaml:"namespace"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Host       string  `mapstructure:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port       int     `mapstructure:"port" yaml:"port"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Default: рабочие значения по умолчанию, их же видит viper.
func Default() Config {
	return Config{
		Service: ServiceConfig{Name: "signal_bot", Port: 10000},
		Log:     LogConfig{Level: "info"},
		Exchange: ExchangeConfig{
			Name:      "binance",
			RateLimit: 10,
			Burst:     5,
			Timeout:   10 * time.Second,
		},
		Scan: ScanConfig{
			Intervals:   []string{"4h", "15m", "5m"},
			CandleLimit: 200,
			MinBars:     50,
			Sleep:       120 * time.Second,
			Workers:     1,
		},
		FetchRetry: RetryConfig{MaxAttempts: 3, Backoff: 2 * time.Second},
		Universe:   UniverseConfig{QuoteSuffix: "USDT", TopN: 20},
		Strategy: StrategyConfig{
			Rule:          string(models.StrategyReversal),
			TrendLine:     string(strategy.TrendEMA),
			FastWindow:    9,
			SlowWindow:    21,
			RSIWindow:     14,
			RSISmoothing:  "wilder",
			VolumeWindow:  20,
			Overbought:    70,
			Oversold:      30,
			VolumeConfirm: true,
		},
		Risk: RiskConfig{
			Policy:         risk.PolicySwing,
			SwingLookback:  5,
			RiskMultiple:   1.5,
			StopPct:        1,
			TakePct:        2,
			Notional:       10,
			Leverage:       10,
			QtyPrecision:   3,
			PricePrecision: 4,
		},
		Alerts:    AlertsConfig{Stdout: true, Timeout: 10 * time.Second},
		Execution: ExecutionConfig{MarginMode: "isolated"},
		Journal:   JournalConfig{MaxConns: 4, ConnectTimeout: 5 * time.Second},
		Cache:     CacheConfig{TTL: 30 * time.Second, Namespace: "signal_bot:candles"},
		Tracing:   TracingConfig{Host: "localhost", Port: 6831, SampleRate: 1},
	}
}

// EntryTF: таймфрейм, на котором считаем вход и стоп.
func (c *Config) EntryTF() string {
	if c.Scan.EntryInterval != "" {
		return c.Scan.EntryInterval
	}
	if n := len(c.Scan.Intervals); n > 0 {
		return c.Scan.Intervals[n-1]
	}
	return ""
}

func (s StrategyConfig) Engine() strategy.Config {
	return strategy.Config{
		Rule:          models.StrategyType(s.Rule),
		TrendLine:     strategy.TrendLine(s.TrendLine),
		FastWindow:    s.FastWindow,
		SlowWindow:    s.SlowWindow,
		RSIWindow:     s.RSIWindow,
		Smoothing:     s.RSISmoothing,
		VolumeWindow:  s.VolumeWindow,
		Overbought:    s.Overbought,
		Oversold:      s.Oversold,
		VolumeConfirm: s.VolumeConfirm,
	}
}

func (r RiskConfig) Sizer() risk.Config {
	return risk.Config{
		Policy:              r.Policy,
		SwingLookback:       r.SwingLookback,
		SwingIncludeCurrent: r.SwingIncludeCurrent,
		RiskMultiple:        r.RiskMultiple,
		StopPct:             r.StopPct,
		TakePct:             r.TakePct,
		Notional:            r.Notional,
		Leverage:            r.Leverage,
		QtyPrecision:        r.QtyPrecision,
		PricePrecision:      r.PricePrecision,
	}
}

func (u UniverseConfig) Ranker() universe.Ranker {
	return universe.Ranker{QuoteSuffix: u.QuoteSuffix, TopN: u.TopN}
}
