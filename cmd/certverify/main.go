package main

import (
	"context"
	"fmt"
	"os"
)

// All subcommand errors go to stderr with a non-zero exit code.
func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:])
	case "generate":
		return runGenerate(args[1:])
	case "analyze":
		return runAnalyze(ctx, args[1:])
	case "init-config":
		return runInitConfig(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `certverify - certificate authenticity demo

Usage:
  certverify serve        [-config config.yaml]
  certverify generate     -kind genuine|fake [-out file.png|file.pdf] [-config config.yaml]
  certverify analyze      -file path [-type mime] [-forced true|false] [-seed n] [-pdf report.pdf]
  certverify init-config  [-out config.yaml]
`)
}
