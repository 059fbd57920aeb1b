// Package config loads nanopipe socket settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/funkygao/nanopipe"
	"github.com/funkygao/nanopipe/logging"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// Prefix is the environment prefix, e.g. NANOPIPE_SNDHWM.
const Prefix = "NANOPIPE"

// Timeout is a send or receive deadline as the sockets understand it:
// zero waits forever, a negative value does not wait at all.  In the
// environment it is written "infinite", "immediate" or a Go duration.
type Timeout time.Duration

// Decode implements envconfig.Decoder.
func (t *Timeout) Decode(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "infinite", "block":
		*t = 0
		return nil
	case "immediate", "nonblock":
		*t = -1
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("timeout %q: %w", value, err)
	}
	if d < 0 {
		d = -1
	}
	*t = Timeout(d)
	return nil
}

// Mode returns the socket mode the timeout stands for.
func (t Timeout) Mode() nanopipe.Mode {
	if t < 0 {
		return nanopipe.NonBlocking
	}
	return nanopipe.Mode(t)
}

func (t Timeout) String() string {
	switch {
	case t < 0:
		return "immediate"
	case t == 0:
		return "infinite"
	}
	return time.Duration(t).String()
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Config holds the socket settings.
type Config struct {
	SendHWM     int           `envconfig:"SNDHWM" default:"1000"`
	RecvHWM     int           `envconfig:"RCVHWM" default:"1000"`
	SendTimeout Timeout       `envconfig:"SNDTIMEO" default:"infinite"`
	RecvTimeout Timeout       `envconfig:"RCVTIMEO" default:"infinite"`
	Linger      time.Duration `envconfig:"LINGER" default:"1s"`
	RedialTime  time.Duration `envconfig:"REDIAL_TIME" default:"100ms"`
	RedialMax   time.Duration `envconfig:"REDIAL_MAX" default:"1m"`

	LogConfig
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		SendHWM:    1000,
		RecvHWM:    1000,
		Linger:     time.Second,
		RedialTime: 100 * time.Millisecond,
		RedialMax:  time.Minute,
		LogConfig: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if c.SendHWM < 0 {
		err = multierr.Append(err, errors.New("SNDHWM must not be negative"))
	}
	if c.RecvHWM < 0 {
		err = multierr.Append(err, errors.New("RCVHWM must not be negative"))
	}
	if c.RedialTime <= 0 {
		err = multierr.Append(err, errors.New("REDIAL_TIME must be positive"))
	}
	if c.RedialMax < c.RedialTime {
		err = multierr.Append(err, errors.New("REDIAL_MAX must not be below REDIAL_TIME"))
	}
	return err
}

// Apply sets the options on sock.  Options should be applied before the
// socket dials or listens, since HWMs only affect new pipes.
func (c *Config) Apply(sock nanopipe.Socket) error {
	return multierr.Combine(
		sock.SetOption(nanopipe.OptionSendHWM, c.SendHWM),
		sock.SetOption(nanopipe.OptionRecvHWM, c.RecvHWM),
		sock.SetOption(nanopipe.OptionSendDeadline, time.Duration(c.SendTimeout)),
		sock.SetOption(nanopipe.OptionRecvDeadline, time.Duration(c.RecvTimeout)),
		sock.SetOption(nanopipe.OptionLinger, c.Linger),
		sock.SetOption(nanopipe.OptionRedialTime, c.RedialTime),
		sock.SetOption(nanopipe.OptionRedialMax, c.RedialMax),
	)
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Development = c.Development
	return cfg
}
