package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validate checks params against the argument schema of cmd and returns
// every problem found. An empty result means the params are acceptable.
//
// Params that do not match a declared argument are ignored here; BuildArgv
// never forwards them.
func Validate(cmd Command, params Params) []string {
	return validate(cmd, params, nil)
}

// validate is Validate plus the names of declared arguments whose supplied
// value could not be represented as a Value at all. Those get a type error
// and no missing-argument error.
func validate(cmd Command, params Params, rejected map[string]bool) []string {
	var errs []string

	for _, arg := range cmd.Arguments {
		if !arg.Required || rejected[arg.Name] {
			continue
		}
		if _, ok := params[arg.Name]; !ok {
			errs = append(errs, fmt.Sprintf("Required argument '%s' is missing", arg.Name))
		}
	}

	names := make([]string, 0, len(params)+len(rejected))
	for name := range params {
		names = append(names, name)
	}
	for name := range rejected {
		if _, ok := params[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		arg, ok := cmd.Argument(name)
		if !ok {
			continue
		}
		if rejected[name] || !Conforms(arg.Type, params[name]) {
			errs = append(errs, typeError(arg))
		}
	}

	return errs
}

// JoinErrors renders a validation error list for display.
func JoinErrors(errs []string) string {
	return strings.Join(errs, ", ")
}

func typeError(arg Argument) string {
	return fmt.Sprintf("Argument '%s' must be a %s", arg.Name, arg.Type)
}

// Conforms reports whether v is acceptable for an argument of type t.
func Conforms(t ArgType, v Value) bool {
	switch t {
	case ArgString:
		return v.Kind() == KindString
	case ArgNumber:
		switch v.Kind() {
		case KindNumber:
			return true
		case KindString:
			s, _ := v.AsString()
			return numeric(s)
		default:
			return false
		}
	case ArgBoolean:
		switch v.Kind() {
		case KindBool:
			return true
		case KindString:
			s, _ := v.AsString()
			return s == "true" || s == "false"
		default:
			return false
		}
	default:
		return false
	}
}

// numeric reports whether s reads as a number. Surrounding whitespace is
// ignored and a blank string counts as zero. Accepted forms are decimal
// literals with an optional exponent, unsigned 0x/0o/0b integers and the
// exact spellings Infinity, +Infinity and -Infinity. Out of range literals
// such as "1e400" still count; they overflow to infinity rather than NaN.
func numeric(s string) bool {
	s = strings.TrimSpace(s)
	switch s {
	case "", "Infinity", "+Infinity", "-Infinity":
		return true
	}
	// ParseFloat also takes Go literal syntax: digit separators, inf, nan
	// and hex floats. None of those are numbers here.
	if strings.Contains(s, "_") {
		return false
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		_, err := strconv.ParseUint(s, 0, 64)
		return err == nil || errors.Is(err, strconv.ErrRange)
	}
	if strings.ContainsAny(s, "xXpPiInN") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
