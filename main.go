package main

import (
	"context"
	"errors"
	"io/fs"
	stdlog "log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rubiojr/searchfields/cmd"
	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdlog.Printf("Warning: failed to load .env: %v", err)
	}

	app := &cli.Command{
		Name:  "searchfields",
		Usage: "Declarative search fields over SQLite tables",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Value:   false,
				Sources: cli.EnvVars("SEARCHFIELDS_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Configuration file path (TOML, or YAML with a .yaml extension)",
				Value:   getDefaultConfigPathOrExit(),
				Sources: cli.EnvVars("SEARCHFIELDS_CONFIG"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			log.SetColor(isTerminal(os.Stderr))
			if c.Bool("debug") {
				log.SetGlobalDebug(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.FieldsCommand(),
			cmd.QueryCommand(),
			cmd.ImportCommand(),
			cmd.ServeCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		stdlog.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		stdlog.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
