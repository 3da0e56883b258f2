package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	service "github.com/okian/fightelo/internal/app"
	"github.com/okian/fightelo/internal/config"
	"github.com/okian/fightelo/pkg/logger"
)

// runtimeEnv carries what every command needs once flags are parsed.
type runtimeEnv struct {
	cfg *config.Config
	log logger.Logger
}

func newApp() *cli.App {
	env := &runtimeEnv{}
	return &cli.App{
		Name:  "fightelo",
		Usage: "Elo ratings for combat sports match histories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "match history file (.csv or .xlsx); overrides data_path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error; overrides log_level",
			},
		},
		Before:         env.setup,
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(env),
			rankingsCommand(env),
			plotCommand(env),
			exportCommand(env),
			generateCommand(env),
		},
	}
}

// setup loads configuration (defaults -> optional file -> env -> flags)
// and initializes logging.
func (e *runtimeEnv) setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("data") {
		cfg.DataPath = c.String("data")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	// Logs go to stderr so table output on stdout stays clean.
	if err := logger.Init(logger.WithWriter(c.App.ErrWriter), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	e.cfg = cfg
	e.log = log
	return nil
}

// newService builds the rating service from configuration without loading it.
func (e *runtimeEnv) newService() (*service.Service, error) {
	policy, err := e.cfg.RatingPolicy()
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithLogger(e.log),
		service.WithDataPath(e.cfg.DataPath),
		service.WithPolicy(policy),
		service.WithSkipMalformed(e.cfg.SkipMalformed),
		service.WithDefaultCategory(e.cfg.DefaultCategory),
		service.WithDedupeSize(e.cfg.DedupeSize),
		service.WithMaxLimit(e.cfg.MaxRankingsLimit),
		service.WithMinFights(e.cfg.DivisionMinFights, e.cfg.P4PMinFights),
	)
}

// loadService builds the service and runs the first load.
func (e *runtimeEnv) loadService(c *cli.Context) (*service.Service, error) {
	svc, err := e.newService()
	if err != nil {
		return nil, err
	}
	if err := svc.Start(c.Context); err != nil {
		return nil, err
	}
	return svc, nil
}
