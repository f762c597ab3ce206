package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoCommand() Command {
	return Command{
		Name:    "echo-test",
		Command: "echo",
		Arguments: []Argument{
			{Name: "message", Type: ArgString, Required: true},
		},
	}
}

func typedCommand() Command {
	ten := NumberValue(10)
	return Command{
		Name:    "typed",
		Command: "printf",
		Arguments: []Argument{
			{Name: "label", Type: ArgString},
			{Name: "count", Type: ArgNumber, Default: &ten},
			{Name: "verbose", Type: ArgBoolean},
		},
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	t.Parallel()

	errs := Validate(echoCommand(), Params{})

	require.Equal(t, []string{"Required argument 'message' is missing"}, errs)
}

func TestValidate_ValidParams_NoErrors(t *testing.T) {
	t.Parallel()

	errs := Validate(echoCommand(), Params{"message": StringValue("hello")})

	assert.Empty(t, errs)
}

func TestValidate_UnknownKeyIgnored(t *testing.T) {
	t.Parallel()

	errs := Validate(echoCommand(), Params{
		"message": StringValue("hello"),
		"rm-rf":   BoolValue(true),
		"extra":   NumberValue(3),
	})

	assert.Empty(t, errs)
}

func TestValidate_MissingOptionalIsFine(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Validate(typedCommand(), Params{}))
}

func TestValidate_StringType(t *testing.T) {
	t.Parallel()

	errs := Validate(echoCommand(), Params{"message": NumberValue(5)})

	require.Equal(t, []string{"Argument 'message' must be a string"}, errs)
}

func TestValidate_NumberType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value Value
		ok    bool
	}{
		{"native number", NumberValue(42), true},
		{"numeric string", StringValue("42"), true},
		{"float string", StringValue("-3.25"), true},
		{"exponent string", StringValue("1e3"), true},
		{"padded string", StringValue("  7 "), true},
		{"blank string", StringValue(""), true},
		{"hex string", StringValue("0x1F"), true},
		{"overflowing string", StringValue("1e400"), true},
		{"infinity string", StringValue("Infinity"), true},
		{"negative infinity string", StringValue("-Infinity"), true},
		{"leading dot", StringValue(".5"), true},
		{"octal string", StringValue("0o17"), true},
		{"binary string", StringValue("0b101"), true},
		{"word", StringValue("forty-two"), false},
		{"nan string", StringValue("NaN"), false},
		{"trailing garbage", StringValue("42abc"), false},
		{"digit separators", StringValue("1_000"), false},
		{"separated hex", StringValue("0x1_0"), false},
		{"short inf", StringValue("inf"), false},
		{"upper inf", StringValue("INF"), false},
		{"lowercase infinity", StringValue("infinity"), false},
		{"lowercase nan", StringValue("nan"), false},
		{"hex float", StringValue("0x1p4"), false},
		{"signed hex", StringValue("-0x10"), false},
		{"boolean", BoolValue(true), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			errs := Validate(typedCommand(), Params{"count": tc.value})
			if tc.ok {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, []string{"Argument 'count' must be a number"}, errs)
		})
	}
}

func TestValidate_BooleanType(t *testing.T) {
	t.Parallel()

	accepted := []Value{BoolValue(true), BoolValue(false), StringValue("true"), StringValue("false")}
	for _, v := range accepted {
		assert.Empty(t, Validate(typedCommand(), Params{"verbose": v}), "value %v", v.Any())
	}

	rejected := []Value{StringValue("yes"), StringValue("TRUE"), StringValue("1"), NumberValue(1)}
	for _, v := range rejected {
		assert.Equal(t,
			[]string{"Argument 'verbose' must be a boolean"},
			Validate(typedCommand(), Params{"verbose": v}),
			"value %v", v.Any(),
		)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cmd := typedCommand()
	cmd.Arguments = append(cmd.Arguments, Argument{Name: "target", Type: ArgString, Required: true})

	errs := Validate(cmd, Params{
		"count":   StringValue("many"),
		"verbose": StringValue("maybe"),
		"label":   BoolValue(false),
	})

	assert.Equal(t, []string{
		"Required argument 'target' is missing",
		"Argument 'count' must be a number",
		"Argument 'label' must be a string",
		"Argument 'verbose' must be a boolean",
	}, errs)
	assert.Equal(t,
		"Required argument 'target' is missing, Argument 'count' must be a number, Argument 'label' must be a string, Argument 'verbose' must be a boolean",
		JoinErrors(errs),
	)
}
