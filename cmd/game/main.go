package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/supply-lines/internal/config"
	"github.com/Garsondee/supply-lines/internal/game"
	"github.com/Garsondee/supply-lines/internal/logger"
	"github.com/Garsondee/supply-lines/internal/viewer"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.LogLevel, cfg.Dev)

	spec, err := cfg.LevelSpec()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid level config")
	}
	sim, err := game.BuildLevel(spec,
		game.WithTuning(cfg.Tuning()),
		game.WithLogger(logger.For("sim")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build level")
	}

	g := viewer.New(sim, logger.For("viewer"))
	ebiten.SetWindowTitle("Supply Lines")
	ebiten.SetWindowSize(g.Size())
	log.Info().Int("buildings", len(sim.Buildings())).Int("squads", len(sim.Army.Squads())).Msg("Starting")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("Game exited")
	}
}
