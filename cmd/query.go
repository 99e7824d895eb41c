package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/search"
	"github.com/urfave/cli/v3"
)

// QueryCommand creates the query command
func QueryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Search a filter from the command line",
		ArgsUsage: "<filter> <search>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of rows",
				Value: search.DefaultLimit,
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print rows as JSON",
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "Print the resolved conditions without querying",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 1 {
				return fmt.Errorf("filter name is required")
			}
			opts := queryOptions{
				filter:  c.Args().Get(0),
				search:  strings.Join(c.Args().Tail(), " "),
				limit:   c.Int("limit"),
				page:    c.Int("page"),
				json:    c.Bool("json"),
				explain: c.Bool("explain"),
			}
			return runQuery(ctx, os.Stdout, c.String("config"), opts)
		},
	}
}

type queryOptions struct {
	filter  string
	search  string
	limit   int
	page    int
	json    bool
	explain bool
}

func runQuery(ctx context.Context, w io.Writer, configPath string, opts queryOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return fmt.Errorf("building filters: %w", err)
	}
	entry, ok := catalog.Get(opts.filter)
	if !ok {
		return fmt.Errorf("filter %s not found", opts.filter)
	}

	filter := entry.Class.New()
	if opts.explain {
		conditions, err := filter.Parse(opts.search)
		if err != nil {
			return err
		}
		printConditions(w, conditions)
		return nil
	}

	if !entry.Searchable() {
		return fmt.Errorf("filter %s is not bound to a table", opts.filter)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
		}
	}()

	results, err := filter.Search(ctx, store, entry.Table, search.Params{
		Search: opts.search,
		Page:   opts.page,
		Limit:  min(opts.limit, search.MaxLimit),
	})
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results.Rows)
	}

	printRows(w, cfg, entry, results)
	return nil
}

func printConditions(w io.Writer, conditions []search.Condition) {
	if len(conditions) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No conditions, every row matches"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Conditions (OR)"))
	for _, cond := range conditions {
		fmt.Fprintf(w, "  %s = %q\n", cond.Path, cond.Term)
	}
}

func printRows(w io.Writer, cfg *config.Config, entry *config.FilterEntry, results *search.Results) {
	printConditions(w, results.Conditions)
	fmt.Fprintln(w)

	if len(results.Rows) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No rows found"))
		return
	}

	var paths []string
	if table, ok := cfg.Table(entry.Table); ok {
		for _, c := range table.Columns {
			paths = append(paths, c.Path)
		}
	} else {
		for path := range results.Rows[0] {
			paths = append(paths, path)
		}
		sort.Strings(paths)
	}

	for i, row := range results.Rows {
		if i > 0 {
			fmt.Fprintln(w)
		}
		for _, path := range paths {
			if v := row[path]; v != nil {
				fmt.Fprintf(w, "%s: %v\n", headerStyle.Render(path), v)
			}
		}
	}

	more := ""
	if results.HasMore {
		more = fmt.Sprintf(", more on page %d", results.Page+1)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%d rows on page %d%s", results.Count, results.Page, more)))
}
