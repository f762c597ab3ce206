package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/config"
)

// sourceFlags registers the configuration source flags on fs.
func sourceFlags(fs *pflag.FlagSet) *config.Source {
	src := &config.Source{}
	fs.StringVarP(&src.Path, "config", "c", "", `commands file (JSON or YAML); "-" reads stdin`)
	fs.StringVar(&src.Inline, "config-json", "", "inline commands JSON document")
	return src
}

// loadCommands resolves the schema validator once and loads src.
func loadCommands(src config.Source) ([]command.Command, error) {
	validator, err := config.NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return config.NewLoader(validator).Load(src)
}

func runValidate(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("validate")
	src := sourceFlags(fs)
	if code, ok := parseFlags(fs, args, errOut); !ok {
		return code
	}

	cmds, err := loadCommands(*src)
	if err != nil {
		fmt.Fprintf(errOut, "configuration error: %v\n", err) //nolint:errcheck
		return exitFailure
	}
	fmt.Fprintf(out, "OK: %d commands\n", len(cmds)) //nolint:errcheck
	return exitOK
}

func runList(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("list")
	src := sourceFlags(fs)
	if code, ok := parseFlags(fs, args, errOut); !ok {
		return code
	}

	cmds, err := loadCommands(*src)
	if err != nil {
		fmt.Fprintf(errOut, "configuration error: %v\n", err) //nolint:errcheck
		return exitFailure
	}
	fmt.Fprintln(out, renderCommandTable(cmds)) //nolint:errcheck
	return exitOK
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderCommandTable(cmds []command.Command) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TOOL", "COMMAND", "ARGUMENTS", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, c := range cmds {
		t.Row(c.Name, c.Command, describeArguments(c.Arguments), c.Description)
	}
	return t.String()
}

// describeArguments renders name:type, with * for required and =default.
func describeArguments(args []command.Argument) string {
	if len(args) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s := a.Name + ":" + string(a.Type)
		if a.Required {
			s += "*"
		}
		if a.Default != nil {
			s += "=" + a.Default.String()
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}
