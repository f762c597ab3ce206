package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
)

func newTestLoader(t *testing.T, opts ...LoaderOption) *Loader {
	t.Helper()
	v, err := NewSchemaValidator()
	require.NoError(t, err)
	base := []LoaderOption{
		WithGetenv(func(string) string { return "" }),
		WithStdin(strings.NewReader(""), nil),
	}
	return NewLoader(v, append(base, opts...)...)
}

func envWith(value string) LoaderOption {
	return WithGetenv(func(key string) string {
		if key == EnvKeyCommandsConfig {
			return value
		}
		return ""
	})
}

func TestLoader_JSONFile(t *testing.T) {
	t.Parallel()

	cmds, err := newTestLoader(t).Load(Source{Path: "testdata/commands.json"})
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	echo := cmds[0]
	assert.Equal(t, "echo-test", echo.Name)
	assert.Equal(t, "echo", echo.Command)
	require.Len(t, echo.Arguments, 1)
	assert.True(t, echo.Arguments[0].Required)
	assert.Equal(t, command.ArgString, echo.Arguments[0].Type)
	assert.Nil(t, echo.Arguments[0].Default)

	counter := cmds[1]
	assert.Equal(t, "seq -s ,", counter.Command)
	require.Len(t, counter.Arguments, 2)
	require.NotNil(t, counter.Arguments[0].Default)
	assert.Equal(t, "10", counter.Arguments[0].Default.String())
	assert.Equal(t, command.ArgBoolean, counter.Arguments[1].Type)
}

func TestLoader_YAMLFile(t *testing.T) {
	t.Parallel()

	cmds, err := newTestLoader(t).Load(Source{Path: "testdata/commands.yaml"})
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	assert.Equal(t, "git-log", cmds[0].Name)
	require.Len(t, cmds[0].Arguments, 2)
	assert.Equal(t, "max-count", cmds[0].Arguments[0].Name)
	assert.False(t, cmds[0].Arguments[0].Required)
	require.NotNil(t, cmds[0].Arguments[0].Default)
	assert.Equal(t, "5", cmds[0].Arguments[0].Default.String())
}

func TestLoader_SourcePrecedence(t *testing.T) {
	t.Parallel()

	inline := `{"commands":[{"name":"inline","command":"true"}]}`
	fromEnv := `{"commands":[{"name":"env","command":"true"}]}`

	cmds, err := newTestLoader(t, envWith(fromEnv)).Load(Source{Path: "testdata/commands.yaml", Inline: inline})
	require.NoError(t, err)
	assert.Equal(t, "git-log", cmds[0].Name)

	cmds, err = newTestLoader(t, envWith(fromEnv)).Load(Source{Inline: inline})
	require.NoError(t, err)
	assert.Equal(t, "inline", cmds[0].Name)

	cmds, err = newTestLoader(t, envWith(fromEnv)).Load(Source{})
	require.NoError(t, err)
	assert.Equal(t, "env", cmds[0].Name)
}

func TestLoader_EnvPath(t *testing.T) {
	t.Parallel()

	cmds, err := newTestLoader(t, envWith("testdata/commands.json")).Load(Source{})
	require.NoError(t, err)
	assert.Len(t, cmds, 2)
}

func TestLoader_NoSource(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader(t).Load(Source{})
	assert.ErrorIs(t, err, ErrNoConfigSource)
}

func TestLoader_Stdin(t *testing.T) {
	t.Parallel()

	doc := `{"commands":[{"name":"piped","command":"cat"}]}`
	cmds, err := newTestLoader(t, WithStdin(strings.NewReader(doc), nil)).Load(Source{Path: StdinPath})
	require.NoError(t, err)
	assert.Equal(t, "piped", cmds[0].Name)
	assert.Empty(t, cmds[0].Arguments)

	tty := WithStdin(strings.NewReader(doc), func() bool { return true })
	_, err = newTestLoader(t, tty).Load(Source{Path: StdinPath})
	assert.ErrorIs(t, err, ErrStdinIsTerminal)
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader(t).Load(Source{Path: "testdata/does-not-exist.json"})
	assert.Error(t, err)
}

func TestLoader_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := newTestLoader(t).Load(Source{Inline: `{"commands": [`})
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestLoader_SchemaMismatch(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing commands": `{}`,
		"bad type enum":    `{"commands":[{"name":"x","command":"y","arguments":[{"name":"a","type":"array"}]}]}`,
		"unknown field":    `{"commands":[{"name":"x","command":"y","shell":true}]}`,
		"object default":   `{"commands":[{"name":"x","command":"y","arguments":[{"name":"a","type":"string","defaultValue":{}}]}]}`,
		"empty command":    `{"commands":[{"name":"x","command":""}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestLoader(t).Load(Source{Inline: doc})
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestLoader_SemanticChecks(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc  string
		want string
	}{
		"duplicate command": {
			doc:  `{"commands":[{"name":"x","command":"a"},{"name":"x","command":"b"}]}`,
			want: "duplicate name",
		},
		"duplicate argument": {
			doc:  `{"commands":[{"name":"x","command":"a","arguments":[{"name":"n","type":"string"},{"name":"n","type":"number"}]}]}`,
			want: "duplicate argument",
		},
		"flag-like argument name": {
			doc:  `{"commands":[{"name":"x","command":"a","arguments":[{"name":"--rm","type":"string"}]}]}`,
			want: "must match",
		},
		"default not representable": {
			doc:  `{"commands":[{"name":"x","command":"a","arguments":[{"name":"n","type":"number","defaultValue":"many"}]}]}`,
			want: "default value is not a number",
		},
		"blank template": {
			doc:  `{"commands":[{"name":"x","command":"   "}]}`,
			want: "must name an executable",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestLoader(t).Load(Source{Inline: tc.doc})
			require.ErrorIs(t, err, ErrInvalidCommands)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoader_WithoutValidator(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(nil).Parse([]byte(`{"commands":[]}`), false)
	assert.ErrorIs(t, err, ErrValidatorMissing)
}

func TestSchema_IsValidJSON(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(Schema()), `"defaultValue"`)
}
