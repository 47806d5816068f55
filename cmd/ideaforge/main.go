package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/germanamz/ideaforge/pkg/generators"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

const usageText = `Usage: ideaforge [command] [flags]

Generate content ideas with a local Ollama or LM Studio model.

Commands:
  run      Interactive mode (default)
  blog     Generate a blog post outline
  social   Generate a social media calendar
  writing  Generate a creative writing prompt
  models   List the models a provider reports
  check    Test the connection to the configured provider
  mcp      Serve the generators as MCP tools over stdio

Run 'ideaforge <command> -h' for the flags of a command.
`

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func dispatch(args []string) error {
	name := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch name {
	case "run":
		return runInteractiveCmd(ctx, args)
	case string(generators.Blog), string(generators.Social), string(generators.Writing):
		return runGenerateCmd(ctx, generators.Kind(name), args)
	case "models":
		return runModelsCmd(ctx, args)
	case "check":
		return runCheckCmd(ctx, args)
	case "mcp":
		return runMCPCmd(ctx, args)
	case "help":
		fmt.Fprint(os.Stdout, usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", name)
	}
}

// globalFlags are accepted by every command.
type globalFlags struct {
	envFile    string
	configFile string
	verbose    bool
}

func newFlagSet(name, summary string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ideaforge %s [flags]\n\n%s\n\nFlags:\n", name, summary)
		fs.PrintDefaults()
	}

	g := &globalFlags{}
	fs.StringVar(&g.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.StringVar(&g.configFile, "config", "", "path to configuration file (default: ideaforge.yaml when present)")
	fs.BoolVar(&g.verbose, "verbose", false, "log debug output")

	return fs, g
}

func runInteractiveCmd(ctx context.Context, args []string) error {
	fs, g := newFlagSet("run", "Pick a generator, fill in its form and browse the result.")
	_ = fs.Parse(args)

	a, err := newApp(g, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.interactive(ctx)
}

func runGenerateCmd(ctx context.Context, kind generators.Kind, args []string) error {
	fs, g := newFlagSet(string(kind), "Generate a "+strings.ToLower(kind.Title())+" and print it.")
	in := bindGenerateFlags(fs, kind)
	_ = fs.Parse(args)

	if err := in.finish(fs); err != nil {
		return err
	}

	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.generateOnce(ctx, in)
}

func runModelsCmd(ctx context.Context, args []string) error {
	fs, g := newFlagSet("models", "List the models a provider reports.")
	prov := fs.String("provider", "", "ollama or lm_studio (default: the configured provider)")
	_ = fs.Parse(args)

	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.listModels(ctx, *prov)
}

func runCheckCmd(ctx context.Context, args []string) error {
	fs, g := newFlagSet("check", "Test the connection to the configured provider.")
	prov := fs.String("provider", "", "ollama or lm_studio (default: the configured provider)")
	_ = fs.Parse(args)

	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.check(ctx, *prov)
}

func runMCPCmd(ctx context.Context, args []string) error {
	fs, g := newFlagSet("mcp", "Serve the generators as MCP tools over stdio.")
	_ = fs.Parse(args)

	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.serveMCP(ctx)
}
