// Package config loads the game's tunables from an optional YAML file and a
// few environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/supply-lines/internal/game"
)

var validate = validator.New()

// Config is the full set of user-tunable values.
type Config struct {
	LogLevel    string            `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	Dev         bool              `yaml:"dev"`
	Network     NetworkConfig     `yaml:"network"`
	Movement    MovementConfig    `yaml:"movement"`
	ActionPhase ActionPhaseConfig `yaml:"action_phase"`
	Level       LevelConfig       `yaml:"level"`
}

type NetworkConfig struct {
	MaxEdgeLength   float64 `yaml:"max_edge_length" validate:"gt=0"`
	BridgeThreshold float64 `yaml:"bridge_threshold" validate:"gt=0,ltefield=MaxEdgeLength"`
	PickRadius      float64 `yaml:"pick_radius" validate:"gt=0"`
}

type MovementConfig struct {
	Speed            float64 `yaml:"speed" validate:"gt=0,lte=1"`
	ArrivalThreshold float64 `yaml:"arrival_threshold" validate:"gt=0"`
}

type ActionPhaseConfig struct {
	Policy string `yaml:"policy" validate:"oneof=timer settled"`
	Ticks  int    `yaml:"ticks" validate:"gt=0"`
}

type LevelConfig struct {
	Start      []float64 `yaml:"start" validate:"len=2"`
	CityBlocks int       `yaml:"city_blocks" validate:"gte=0,lte=64"`
	Roster     []string  `yaml:"roster" validate:"min=1,dive,oneof=rifle assault marksman"`
	// Deploy is "start" or the name of a building, e.g. "building01".
	Deploy string `yaml:"deploy"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Network: NetworkConfig{
			MaxEdgeLength:   game.DefaultMaxEdgeLength,
			BridgeThreshold: game.DefaultBridgeThreshold,
			PickRadius:      game.DefaultPickRadius,
		},
		Movement: MovementConfig{
			Speed:            game.DefaultUnitSpeed,
			ArrivalThreshold: game.DefaultArrivalThreshold,
		},
		ActionPhase: ActionPhaseConfig{
			Policy: game.ActionTimer.String(),
			Ticks:  game.DefaultActionPhaseTicks,
		},
		Level: LevelConfig{
			Start:      []float64{0, 0},
			CityBlocks: 4,
			Roster:     []string{"rifle", "assault", "marksman"},
			Deploy:     "start",
		},
	}
}

// Load returns the defaults overlaid by the YAML file at path (skipped when
// path is empty) and then by the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("DEV"); v != "" {
		c.Dev = v == "true" || v == "1"
	}
	if v := os.Getenv("ACTION_PHASE_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACTION_PHASE_TICKS=%q: %w", v, err)
		}
		c.ActionPhase.Ticks = n
	}
	return nil
}

// Validate checks the struct tags and reports the first few failures in one
// error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Tuning converts the numeric settings into simulation tuning.
func (c *Config) Tuning() game.Tuning {
	policy := game.ActionTimer
	if c.ActionPhase.Policy == game.ActionSettled.String() {
		policy = game.ActionSettled
	}
	return game.Tuning{
		MaxEdgeLength:    c.Network.MaxEdgeLength,
		BridgeThreshold:  c.Network.BridgeThreshold,
		PickRadius:       c.Network.PickRadius,
		UnitSpeed:        c.Movement.Speed,
		ArrivalThreshold: c.Movement.ArrivalThreshold,
		ActionPolicy:     policy,
		ActionPhaseTicks: c.ActionPhase.Ticks,
	}
}

// LevelSpec converts the level section into a layout request.
func (c *Config) LevelSpec() (game.LevelSpec, error) {
	spec := game.LevelSpec{
		CityBlocks: c.Level.CityBlocks,
		Roster:     make([]game.SquadKind, 0, len(c.Level.Roster)),
	}
	if len(c.Level.Start) == 2 {
		spec.Start = game.V(c.Level.Start[0], c.Level.Start[1])
	}
	for _, name := range c.Level.Roster {
		k, err := game.ParseSquadKind(name)
		if err != nil {
			return game.LevelSpec{}, err
		}
		spec.Roster = append(spec.Roster, k)
	}
	if c.Level.Deploy != "" && c.Level.Deploy != "start" {
		spec.Deploy = c.Level.Deploy
	}
	return spec, nil
}
