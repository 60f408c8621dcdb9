package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/courseimage/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Flags owned by the upload command itself (-course, -f, ...) are filtered
// out first with flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"a", "t", "timeout"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-call timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
