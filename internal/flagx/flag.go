// Package flagx helps several flag sets share one command line: each set
// only sees the flags it owns.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belong to the named flags.
// Names are given without dashes; both "-name" and "--name" spellings are
// recognised, in separate ("-d dsn") or joined ("-d=dsn") form. A following
// token is treated as the value unless it starts with a dash.
func FilterArgs(args []string, names []string) []string {
	owned := make(map[string]struct{}, len(names))
	for _, n := range names {
		owned[strings.TrimLeft(n, "-")] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, joined := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if _, ok := owned[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if joined {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFilePath extracts the JSON config path given with -c or -config.
// The last occurrence wins; an empty string means no config file.
func ConfigFilePath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return path
}
