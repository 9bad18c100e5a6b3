package main

import (
	"fmt"
	"strings"
)

// cmdArgs holds the parsed arguments of one subcommand.
type cmdArgs struct {
	values     map[string]string // --flag value
	switches   map[string]bool   // --flag
	positional []string
}

// parseCmdArgs splits args into flags and positional arguments. valueFlags
// lists the flags that take a value; any other flag is a switch. A value may
// follow the flag or be attached with '=': --out x.db, --out=x.db.
// "--" ends flag parsing.
func parseCmdArgs(args []string, valueFlags ...string) (*cmdArgs, error) {
	takesValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	parsed := &cmdArgs{values: make(map[string]string), switches: make(map[string]bool)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			parsed.positional = append(parsed.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			parsed.positional = append(parsed.positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.Index(name, "="); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}

		if !takesValue[name] {
			if hasValue {
				return nil, fmt.Errorf("flag --%s does not take a value", name)
			}
			parsed.switches[name] = true
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", name)
			}
			i++
			value = args[i]
		}
		parsed.values[name] = value
	}
	return parsed, nil
}

func (a *cmdArgs) value(name, def string) string {
	if v, ok := a.values[name]; ok {
		return v
	}
	return def
}

func (a *cmdArgs) has(name string) bool {
	return a.switches[name]
}
