package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrParamsNotObject is returned when a tool call payload is not a JSON object.
var ErrParamsNotObject = errors.New("tool arguments must be a json object")

// DecodeParams turns the raw JSON arguments of a tool call into Params.
//
// JSON null counts as absent. A non-scalar value for a declared argument is
// reported with the same message Validate uses for a type mismatch; for an
// undeclared key it is dropped like any other unknown parameter.
func DecodeParams(cmd Command, raw json.RawMessage) (Params, []string, error) {
	params, rejected, err := decodeParams(cmd, raw)
	if err != nil {
		return nil, nil, err
	}
	var errs []string
	for _, name := range sortedKeys(rejected) {
		arg, _ := cmd.Argument(name)
		errs = append(errs, typeError(arg))
	}
	return params, errs, nil
}

// DecodeAndValidate decodes raw and validates the result against cmd in one
// pass. An argument whose value was rejected while decoding is reported once,
// as a type error, even when it is also required.
func DecodeAndValidate(cmd Command, raw json.RawMessage) (Params, []string, error) {
	params, rejected, err := decodeParams(cmd, raw)
	if err != nil {
		return nil, nil, err
	}
	return params, validate(cmd, params, rejected), nil
}

// decodeParams returns the scalar params plus the declared argument names
// whose values were arrays or objects.
func decodeParams(cmd Command, raw json.RawMessage) (Params, map[string]bool, error) {
	params := Params{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return params, nil, nil
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParamsNotObject, err)
	}

	var rejected map[string]bool
	for name, rawValue := range fields {
		if rawValue == nil {
			continue
		}
		if v, ok := ValueOf(rawValue); ok {
			params[name] = v
			continue
		}
		if _, declared := cmd.Argument(name); declared {
			if rejected == nil {
				rejected = map[string]bool{}
			}
			rejected[name] = true
		}
	}
	return params, rejected, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
