package command

import (
	"errors"
	"strings"
)

// ErrEmptyInvocation is returned for a command template with no program.
var ErrEmptyInvocation = errors.New("command template is empty")

// BuildArgv translates params into the per-call argument vector.
//
// Only declared arguments are walked, in declaration order, so a caller can
// never smuggle in a flag the configuration does not name. Each resolved
// value becomes two tokens, "--<name>" and its textual form; arguments with
// neither a supplied value nor a default are left out.
func BuildArgv(cmd Command, params Params) []string {
	argv := make([]string, 0, 2*len(cmd.Arguments))
	for _, arg := range cmd.Arguments {
		v, ok := params[arg.Name]
		if !ok {
			if arg.Default == nil {
				continue
			}
			v = *arg.Default
		}
		argv = append(argv, "--"+arg.Name, v.String())
	}
	return argv
}

// SplitInvocation splits a command template on whitespace into the program
// and its fixed leading arguments. No shell quoting is interpreted.
func SplitInvocation(template string) (string, []string, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return "", nil, ErrEmptyInvocation
	}
	return fields[0], fields[1:], nil
}
