package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
)

var (
	ErrNoConfigSource   = errors.New("no configuration provided: use --config, --config-json or " + EnvKeyCommandsConfig)
	ErrStdinIsTerminal  = errors.New("refusing to read configuration from an interactive terminal")
	ErrInvalidJSON      = errors.New("configuration is not valid JSON")
	ErrInvalidYAML      = errors.New("configuration is not valid YAML")
	ErrInvalidCommands  = errors.New("invalid command declarations")
	ErrValidatorMissing = errors.New("schema validator not configured")
)

// StdinPath selects standard input as the configuration file.
const StdinPath = "-"

var argumentNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Source names where the commands document comes from. The first non-empty
// field wins: Path, then Inline, then the MCP_COMMANDS_CONFIG env var.
type Source struct {
	Path   string
	Inline string
}

// Loader turns a Source into validated command declarations.
type Loader struct {
	validator *SchemaValidator
	stdin     io.Reader
	isTTY     func() bool
	getenv    func(string) string
}

type LoaderOption func(*Loader)

// WithStdin replaces standard input. isTerminal reports whether the reader
// is interactive; pass nil for readers that never are.
func WithStdin(r io.Reader, isTerminal func() bool) LoaderOption {
	return func(l *Loader) {
		l.stdin = r
		if isTerminal == nil {
			isTerminal = func() bool { return false }
		}
		l.isTTY = isTerminal
	}
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) LoaderOption {
	return func(l *Loader) { l.getenv = fn }
}

// NewLoader builds a loader that checks documents with validator.
func NewLoader(validator *SchemaValidator, opts ...LoaderOption) *Loader {
	l := &Loader{
		validator: validator,
		stdin:     os.Stdin,
		isTTY: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		getenv: os.Getenv,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load reads, validates and converts the commands document named by src.
func (l *Loader) Load(src Source) ([]command.Command, error) {
	data, isYAML, err := l.read(src)
	if err != nil {
		return nil, err
	}
	return l.Parse(data, isYAML)
}

// Parse validates a raw document and converts it to command declarations.
// YAML input is normalized to JSON before validation.
func (l *Loader) Parse(data []byte, isYAML bool) ([]command.Command, error) {
	if l.validator == nil {
		return nil, ErrValidatorMissing
	}
	if isYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}
	if err := l.validator.Validate(data); err != nil {
		return nil, err
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return doc.commands()
}

func (l *Loader) read(src Source) ([]byte, bool, error) {
	switch {
	case src.Path == StdinPath:
		if l.isTTY() {
			return nil, false, ErrStdinIsTerminal
		}
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, false, fmt.Errorf("read configuration from stdin: %w", err)
		}
		return data, false, nil
	case src.Path != "":
		return readFile(src.Path)
	case strings.TrimSpace(src.Inline) != "":
		return []byte(src.Inline), false, nil
	}

	env := strings.TrimSpace(l.getenv(EnvKeyCommandsConfig))
	switch {
	case env == "":
		return nil, false, ErrNoConfigSource
	case strings.HasPrefix(env, "{"):
		return []byte(env), false, nil
	default:
		return readFile(env)
	}
}

func readFile(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read configuration file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return data, ext == ".yaml" || ext == ".yml", nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return out, nil
}

type document struct {
	Commands []commandDoc `json:"commands"`
}

type commandDoc struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Command     string        `json:"command"`
	Arguments   []argumentDoc `json:"arguments"`
}

type argumentDoc struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue any    `json:"defaultValue"`
}

// commands applies the checks the structural schema cannot express and
// converts the document. All problems are reported together.
func (d document) commands() ([]command.Command, error) {
	var problems []string
	out := make([]command.Command, 0, len(d.Commands))
	seen := make(map[string]struct{}, len(d.Commands))

	for i, c := range d.Commands {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("commands[%d]: name is required", i))
		} else if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("commands[%d] %q: duplicate name", i, name))
		}
		seen[name] = struct{}{}

		if strings.TrimSpace(c.Command) == "" {
			problems = append(problems, fmt.Sprintf("commands[%d] %q: command must name an executable", i, name))
		}

		cmd := command.Command{
			Name:        name,
			Description: c.Description,
			Command:     c.Command,
			Arguments:   make([]command.Argument, 0, len(c.Arguments)),
		}
		argSeen := make(map[string]struct{}, len(c.Arguments))
		for j, a := range c.Arguments {
			where := fmt.Sprintf("commands[%d] %q arguments[%d]", i, name, j)
			if !argumentNamePattern.MatchString(a.Name) {
				problems = append(problems, fmt.Sprintf("%s: name %q must match %s", where, a.Name, argumentNamePattern))
			}
			if _, dup := argSeen[a.Name]; dup {
				problems = append(problems, fmt.Sprintf("%s: duplicate argument %q", where, a.Name))
			}
			argSeen[a.Name] = struct{}{}

			typ := command.ArgType(a.Type)
			if !typ.Valid() {
				problems = append(problems, fmt.Sprintf("%s: unknown type %q", where, a.Type))
			}

			arg := command.Argument{
				Name:        a.Name,
				Description: a.Description,
				Type:        typ,
				Required:    a.Required,
			}
			if a.DefaultValue != nil {
				v, ok := command.ValueOf(a.DefaultValue)
				if !ok || (typ.Valid() && !command.Conforms(typ, v)) {
					problems = append(problems, fmt.Sprintf("%s: default value is not a %s", where, a.Type))
				} else {
					arg.Default = &v
				}
			}
			cmd.Arguments = append(cmd.Arguments, arg)
		}
		out = append(out, cmd)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCommands, strings.Join(problems, "; "))
	}
	return out, nil
}
