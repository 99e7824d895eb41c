package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import JSON records into a table",
		ArgsUsage: "<table> [file]",
		Description: "Reads one JSON object per line, or a JSON array of objects, " +
			"from file or standard input.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Records inserted per transaction",
				Value: 500,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("table name is required")
			}
			table := c.Args().Get(0)

			var in io.Reader = os.Stdin
			if path := c.Args().Get(1); path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				defer f.Close()
				in = f
			}

			n, err := importRecords(ctx, c.String("config"), table, in, c.Int("batch-size"))
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d records into %s\n", n, table)
			return nil
		},
	}
}

func importRecords(ctx context.Context, configPath, table string, in io.Reader, batchSize int) (int, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return 0, err
	}

	if _, ok := cfg.Table(table); !ok {
		return 0, fmt.Errorf("table %s is not configured", table)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
		}
	}()

	n, err := store.Import(ctx, table, in, batchSize)
	if err != nil {
		return n, fmt.Errorf("importing into %s: %w", table, err)
	}
	return n, nil
}
