package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"forecast-go/internal/analysis"
	"forecast-go/internal/app"
	"forecast-go/internal/archive"
	"forecast-go/internal/config"
	"forecast-go/internal/export"
	"forecast-go/internal/forecast"
	"forecast-go/internal/logging"
	"forecast-go/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// Exit codes for scripting
const (
	ExitSuccess            = 0
	ExitFailure            = 1
	ExitUsage              = 2
	ExitDatasetNotFound    = 10
	ExitNoValidSeriesData  = 11
	ExitUnresolvable       = 12
	ExitInvalidHorizon     = 13
	ExitNoUsableIndicators = 20
	ExitInvalidProfile     = 21
)

var errUsage = errors.New("usage")

func main() {
	cliApp := newApp()
	if err := cliApp.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                      "forecaster",
		Usage:                     "Forecast development indicators and build policy outlooks",
		Flags:                     config.Flags(),
		DisableSliceFlagSeparator: true,
		Before: func(c *cli.Context) error {
			return logging.Setup(c.String("log-level"), c.String("log-format"))
		},
		Commands: []*cli.Command{
			forecastCommand(),
			outlookCommand(),
			personalCommand(),
			inspectCommand(),
			runsCommand(),
			serveCommand(),
		},
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var fe *forecast.Error
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &fe):
		switch fe.Kind {
		case forecast.KindDatasetNotFound:
			return ExitDatasetNotFound
		case forecast.KindNoValidSeriesData:
			return ExitNoValidSeriesData
		case forecast.KindUnresolvableColumns:
			return ExitUnresolvable
		case forecast.KindInvalidHorizon:
			return ExitInvalidHorizon
		}
	case errors.Is(err, service.ErrNoUsableIndicators):
		return ExitNoUsableIndicators
	case errors.Is(err, service.ErrInvalidProfile):
		return ExitInvalidProfile
	case errors.Is(err, errUsage):
		return ExitUsage
	}
	return ExitFailure
}

func withApp(c *cli.Context, archiveEnabled bool, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config.FromContext(c), archiveEnabled)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// output opens the --out file, or stdout when none is given.
func output(c *cli.Context) (io.Writer, func() error, error) {
	path := c.String("out")
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	formatFlag = &cli.StringFlag{Name: "format", Value: "json", Usage: "Output format (json, table)"}
	outFlag    = &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write output to a file"}
)

// ============================================================================
// Commands
// ============================================================================

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast one dataset column",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Dataset name"},
			&cli.StringFlag{Name: "column", Aliases: []string{"c"}, Required: true, Usage: "Metric column"},
			&cli.IntFlag{Name: "years", Aliases: []string{"y"}, Value: service.DefaultOutlookYears, Usage: "Years ahead"},
			formatFlag,
			outFlag,
		},
		Action: func(c *cli.Context) error {
			return withApp(c, false, func(ctx context.Context, a *app.App) error {
				res, err := a.Resolver.Forecast(ctx, c.String("file"), c.String("column"), c.Int("years"))
				if err != nil {
					return err
				}

				w, closeOut, err := output(c)
				if err != nil {
					return err
				}
				defer closeOut()

				switch c.String("format") {
				case "json":
					return printJSON(w, res)
				case "table":
					return export.WriteForecastTable(w, res)
				default:
					return fmt.Errorf("%w: unknown format %q", errUsage, c.String("format"))
				}
			})
		},
	}
}

func outlookCommand() *cli.Command {
	return &cli.Command{
		Name:  "outlook",
		Usage: "Forecast every catalogue indicator and summarise the country outlook",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "years", Aliases: []string{"y"}, Value: service.DefaultOutlookYears, Usage: "Years ahead (1-50)"},
			&cli.StringFlag{Name: "country", Value: service.DefaultCountry, Usage: "Country named in the advice prompt"},
			&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format (json, table, xlsx)"},
			outFlag,
			&cli.BoolFlag{Name: "archive", Usage: "Store the run in the ClickHouse archive"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			switch format {
			case "json", "table":
			case "xlsx":
				if c.String("out") == "" {
					return fmt.Errorf("%w: xlsx output needs --out", errUsage)
				}
			default:
				return fmt.Errorf("%w: unknown format %q", errUsage, format)
			}

			return withApp(c, c.Bool("archive"), func(ctx context.Context, a *app.App) error {
				if c.Bool("archive") && a.Archive == nil {
					return fmt.Errorf("%w: --archive needs --clickhouse-host", errUsage)
				}

				out, err := a.Outlook.Run(ctx, service.OutlookRequest{Years: c.Int("years"), Country: c.String("country")})
				if errors.Is(err, service.ErrNoUsableIndicators) {
					for _, p := range out.Problems {
						log.Warn().Msg(p)
					}
					return err
				}
				if err != nil {
					return err
				}

				if a.Archive != nil {
					if err := a.Archive.SaveOutlook(ctx, out); err != nil {
						return fmt.Errorf("archive outlook: %w", err)
					}
				}

				w, closeOut, err := output(c)
				if err != nil {
					return err
				}
				defer closeOut()

				switch format {
				case "table":
					return export.WriteOutlookTable(w, out)
				case "xlsx":
					return export.WriteOutlookXLSX(w, out)
				default:
					return printJSON(w, out)
				}
			})
		},
	}
}

func personalCommand() *cli.Command {
	return &cli.Command{
		Name:  "personal",
		Usage: "Score a personal profile and ask the advisor for next steps",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "age", Required: true},
			&cli.StringFlag{Name: "gender", Required: true, Usage: strings.Join(service.Genders, ", ")},
			&cli.StringFlag{Name: "education", Required: true, Usage: strings.Join(service.EducationLevels, ", ")},
			&cli.StringFlag{Name: "family", Required: true, Usage: strings.Join(service.FamilyStatuses, ", ")},
			&cli.Float64Flag{Name: "income", Usage: "Monthly income in USD"},
			&cli.StringSliceFlag{Name: "factor", Usage: `Factor rating as "Name=7" (repeatable)`},
			formatFlag,
			outFlag,
		},
		Action: func(c *cli.Context) error {
			factors, err := parseFactors(c.StringSlice("factor"))
			if err != nil {
				return err
			}
			profile := service.PersonalProfile{
				Age:          c.Int("age"),
				Gender:       c.String("gender"),
				Education:    c.String("education"),
				FamilyStatus: c.String("family"),
				Income:       c.Float64("income"),
				Factors:      factors,
			}

			return withApp(c, false, func(ctx context.Context, a *app.App) error {
				res, err := a.Personal.Assess(ctx, profile)
				if err != nil {
					return err
				}

				w, closeOut, err := output(c)
				if err != nil {
					return err
				}
				defer closeOut()

				if c.String("format") == "table" {
					return export.WritePersonalTable(w, res)
				}
				return printJSON(w, res)
			})
		},
	}
}

// parseFactors reads "Name=7" pairs.
func parseFactors(raw []string) (map[string]int, error) {
	factors := make(map[string]int, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: factor %q must look like Name=7", errUsage, item)
		}
		rating, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: factor %q has a non-integer rating", errUsage, item)
		}
		factors[name] = rating
	}
	return factors, nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Describe a dataset's columns, detected aliases and statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Dataset name"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, false, func(ctx context.Context, a *app.App) error {
				df, err := a.Resolver.Load(ctx, c.String("file"))
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, analysis.Inspect(df))
			})
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List archived outlook runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: archive.DefaultListLimit},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, true, func(ctx context.Context, a *app.App) error {
				if a.Archive == nil {
					return fmt.Errorf("%w: run archive needs --clickhouse-host", errUsage)
				}
				runs, err := a.Archive.ListOutlooks(ctx, c.Int("limit"))
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, runs)
			})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(c *cli.Context) error {
			return withApp(c, true, func(ctx context.Context, a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}
