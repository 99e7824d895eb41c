package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	defaultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32"))
)

// FieldsCommand creates the fields command
func FieldsCommand() *cli.Command {
	return &cli.Command{
		Name:      "fields",
		Usage:     "List filters and the selectors they accept",
		ArgsUsage: "[filter...]",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			catalog, err := cfg.BuildCatalog()
			if err != nil {
				return fmt.Errorf("building filters: %w", err)
			}
			return printFields(os.Stdout, catalog, c.Args().Slice())
		},
	}
}

// printFields writes every selector of the named filters, or of all
// filters when names is empty.
func printFields(w io.Writer, catalog *config.Catalog, names []string) error {
	if len(names) == 0 {
		names = catalog.Names()
	}
	if len(names) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No filters configured"))
		return nil
	}

	title := cases.Title(language.English)
	for i, name := range names {
		entry, ok := catalog.Get(name)
		if !ok {
			return fmt.Errorf("filter %s not found", name)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintln(w, titleStyle.Render(title.String(strings.ReplaceAll(name, "_", " "))))
		meta := "base only"
		if entry.Searchable() {
			meta = "table " + entry.Table
		}
		if bases := entry.Class.Bases(); len(bases) > 0 {
			meta += ", extends " + strings.Join(bases, ", ")
		}
		fmt.Fprintln(w, metaStyle.Render(meta))

		registry := entry.Class.Registry()
		fmt.Fprintf(w, "%s\n", headerStyle.Render(fmt.Sprintf("%-16s %-10s %s", "Selector", "Kind", "Path")))
		for _, key := range registry.Keys() {
			field, _ := registry.Get(key)
			line := fmt.Sprintf("%-16s %-10s %s", key, title.String(field.Kind()), field.Path())
			if primary, _ := registry.Primary(key); primary != key {
				line += metaStyle.Render(" (alias of " + primary + ")")
			}
			if field.IsDefault() {
				line += " " + defaultStyle.Render("default")
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}
