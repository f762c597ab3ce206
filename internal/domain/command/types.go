// Package command holds the declared-command model plus the two pieces that
// act on it per tool call: the parameter validator and the process executor.
//
// Command declarations are built once from the loaded configuration and are
// never mutated afterwards, so they are shared read-only between calls.
package command

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ArgType is the declared scalar type of an argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgNumber  ArgType = "number"
	ArgBoolean ArgType = "boolean"
)

// Valid reports whether t is one of the supported scalar types.
func (t ArgType) Valid() bool {
	switch t {
	case ArgString, ArgNumber, ArgBoolean:
		return true
	default:
		return false
	}
}

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// Value is a scalar parameter: exactly one of String, Number or Bool.
// The zero Value is invalid and never produced by the constructors.
type Value struct {
	kind Kind
	str  string
	num  float64
	bit  bool
}

func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, bit: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.bit, v.kind == KindBool }

// String renders the value as it is passed on the command line.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.bit)
	default:
		return ""
	}
}

// Any returns the value as a plain Go scalar suitable for JSON encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.bit
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return json.Marshal(formatNumber(v.num))
	}
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, ok := ValueOf(raw)
	if !ok {
		return fmt.Errorf("value %s is not a string, number or boolean", data)
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON scalar into a Value. It reports false for
// nil, arrays, objects and any other non-scalar.
func ValueOf(raw any) (Value, bool) {
	switch x := raw.(type) {
	case string:
		return StringValue(x), true
	case bool:
		return BoolValue(x), true
	case float64:
		return NumberValue(x), true
	case float32:
		return NumberValue(float64(x)), true
	case int:
		return NumberValue(float64(x)), true
	case int64:
		return NumberValue(float64(x)), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, false
		}
		return NumberValue(f), true
	default:
		return Value{}, false
	}
}

// formatNumber mirrors the usual textual form of a double: integral values
// carry no fraction and exponent notation is reserved for very large or
// very small magnitudes.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		// 'g' pads the exponent to two digits: 1e-07 becomes 1e-7.
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) > i+3 && s[i+2] == '0' {
			s = s[:i+2] + s[i+3:]
		}
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Argument is one declared, named argument of a command.
type Argument struct {
	Name        string
	Description string
	Type        ArgType
	Required    bool
	Default     *Value
}

// Command is a tool declaration: the invocation template plus its ordered
// argument schema.
type Command struct {
	Name        string
	Description string
	// Command is the executable name followed by space separated fixed
	// arguments, e.g. "git log --oneline".
	Command   string
	Arguments []Argument
}

// Argument looks up a declared argument by name.
func (c Command) Argument(name string) (Argument, bool) {
	for _, a := range c.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// Params maps argument names to caller supplied values for a single call.
type Params map[string]Value

// Result is the outcome of one execution.
type Result struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`

	// Truncated is set when an output cap was configured and hit.
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"-"`
}
