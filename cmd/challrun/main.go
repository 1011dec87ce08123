package main

import (
	"flag"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess      = 0
	ExitUsageError   = 1
	ExitConfigError  = 2
	ExitEngineError  = 3
	ExitFlagRejected = 4
)

const usage = `usage: challrun [flags] <command> [args]

Commands:
  build [dir]       build images, networks and volumes for a challenge
  start [dir]       start an already-built challenge and print its services
  solve [dir]       run the solution container against a started challenge
  validate <flag>   check a flag against the challenge configuration
  discover          list every challenge under the current CTF root

Flags:
  -config path      tool configuration file
  -version          print version and exit
`

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *showVersion {
		fmt.Printf("challrun %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return ExitUsageError
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg)

	return dispatch(cfg, logger, args[0], args[1:])
}
