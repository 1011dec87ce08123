package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/artpar/challrun/internal/core/challenge"
	"github.com/artpar/challrun/internal/shell/configfile"
	"github.com/artpar/challrun/internal/shell/docker"
)

// dispatch routes the command to the appropriate handler.
func dispatch(cfg *Config, logger *slog.Logger, cmd string, args []string) int {
	switch cmd {
	case "build":
		return buildCmd(cfg, logger, args)
	case "start":
		return startCmd(cfg, logger, args)
	case "solve":
		return solveCmd(cfg, logger, args)
	case "validate":
		return validateCmd(args)
	case "discover":
		return discoverCmd()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		return ExitUsageError
	}
}

// newOrchestrator wires the engine connector into an orchestrator.
func newOrchestrator(cfg *Config, logger *slog.Logger) *docker.Orchestrator {
	connect := func() (docker.Client, error) {
		cli, err := docker.NewDockerClient(cfg.Docker.Host)
		if err != nil {
			return nil, err
		}
		return cli, nil
	}
	return docker.NewOrchestrator(connect, logger, os.Stdout)
}

// loadChallenge loads the challenge for the optional dir argument and makes
// its directory the working directory, so relative image and script paths in
// the manifest resolve.
func loadChallenge(args []string) (*challenge.Config, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, root, err := configfile.LoadChallenge(dir, true)
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

func exitCode(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, configfile.ErrNotFound) {
		return ExitConfigError
	}
	return ExitEngineError
}

// =============================================================================
// Commands
// =============================================================================

func buildCmd(cfg *Config, logger *slog.Logger, args []string) int {
	chall, err := loadChallenge(args)
	if err != nil {
		return exitCode(err)
	}

	o := newOrchestrator(cfg, logger)
	defer o.Close()
	didWork, err := o.Build(context.Background(), chall)
	if err != nil {
		return exitCode(err)
	}

	if !didWork {
		fmt.Println("Nothing to do")
		return ExitSuccess
	}
	fmt.Println("Build complete")
	return ExitSuccess
}

func startCmd(cfg *Config, logger *slog.Logger, args []string) int {
	chall, err := loadChallenge(args)
	if err != nil {
		return exitCode(err)
	}

	o := newOrchestrator(cfg, logger)
	defer o.Close()
	containers, serviceStrings, err := o.Start(context.Background(), chall)
	if err != nil {
		return exitCode(err)
	}

	if len(containers) == 0 {
		fmt.Println("Nothing to start")
		return ExitSuccess
	}

	fmt.Println("Challenge started. Connect using:")
	for _, s := range serviceStrings {
		fmt.Printf("  %s\n", s)
	}
	return ExitSuccess
}

func solveCmd(cfg *Config, logger *slog.Logger, args []string) int {
	chall, err := loadChallenge(args)
	if err != nil {
		return exitCode(err)
	}

	o := newOrchestrator(cfg, logger)
	defer o.Close()
	ctx := context.Background()

	if _, _, err := o.Start(ctx, chall); err != nil {
		return exitCode(err)
	}

	sol, err := o.StartSolution(ctx, chall)
	if err != nil {
		return exitCode(err)
	}
	if sol == nil {
		fmt.Println("No solution image configured")
		return ExitSuccess
	}

	ok, output, err := o.AwaitSolution(ctx, chall, sol)
	if err != nil {
		return exitCode(err)
	}

	fmt.Print(output)
	if !ok {
		fmt.Println("Solution did not produce a valid flag")
		return ExitFlagRejected
	}
	fmt.Println("Challenge solved")
	return ExitSuccess
}

func validateCmd(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: validate <flag> [dir]")
		return ExitUsageError
	}

	chall, err := loadChallenge(args[1:])
	if err != nil {
		return exitCode(err)
	}

	if !challenge.ValidateFlag(chall, args[0]) {
		fmt.Println("Invalid flag")
		return ExitFlagRejected
	}
	fmt.Println("Valid flag")
	return ExitSuccess
}

func discoverCmd() int {
	ctfPath, err := configfile.FindCTFConfig(".")
	if err != nil {
		return exitCode(err)
	}

	challenges, err := configfile.DiscoverChallenges(filepath.Dir(ctfPath))
	if err != nil {
		return exitCode(err)
	}

	for _, path := range challenges {
		fmt.Println(path)
	}
	return ExitSuccess
}
