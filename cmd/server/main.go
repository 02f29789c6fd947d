package main

import (
	"os"
	"os/signal"
	"syscall"

	"forecast-go/internal/app"
	"forecast-go/internal/config"
	"forecast-go/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "forecast-server",
		Usage: "HTTP API for indicator forecasts and policy outlooks",
		Flags: config.Flags(),
		Action: func(c *cli.Context) error {
			cfg := config.FromContext(c)
			if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
