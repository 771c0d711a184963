package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mymind/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   backend address
//	-i int      online check interval in seconds
//	-d string   local database path
//	-r bool     journal and replay failed remote writes
//
// Unknown arguments are filtered out first so other flag sets can coexist.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d"}, "-r")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.BoolVar(&cfg.Reconcile, "r", cfg.Reconcile, "replay failed remote writes on reload")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
