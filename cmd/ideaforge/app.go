package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/germanamz/ideaforge/pkg/config"
	"github.com/germanamz/ideaforge/pkg/export"
	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/logging"
	"github.com/germanamz/ideaforge/pkg/mcpserver"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
	"github.com/germanamz/ideaforge/pkg/session"
)

// version is reported to MCP clients. Overridden at build time with -ldflags.
var version = "dev"

// app wires the configured services for one command invocation.
type app struct {
	settings config.Settings
	log      *slog.Logger
	closeLog func() error
	gw       *gateway.Gateway
	gens     *generators.Service
	session  *session.Store
	stdout   io.Writer
	stderr   io.Writer
}

// newApp loads the configuration and builds the services. Interactive mode
// keeps console logging off the terminal the TUI draws on; the log file, when
// configured, still receives every record.
func newApp(g *globalFlags, interactive bool) (*app, error) {
	s, err := config.Load(config.LoadOptions{EnvFile: g.envFile, ConfigFile: g.configFile})
	if err != nil {
		return nil, err
	}

	level, err := s.Level()
	if err != nil {
		return nil, err
	}
	if g.verbose {
		level = slog.LevelDebug
	}

	var console io.Writer = os.Stderr
	if interactive {
		console = io.Discard
	}

	log, closeLog, err := logging.New(logging.Options{Level: level, Writer: console, File: s.LogFile})
	if err != nil {
		return nil, err
	}

	cfg, err := s.Gateway()
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	gw, err := gateway.New(cfg, gateway.WithLogger(logging.Component(log, "gateway")))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	log.Debug("configuration loaded",
		"provider", s.Provider,
		"max_tokens", s.MaxTokens,
		"temperature", s.Temperature,
		"export_dir", s.ExportDir,
	)

	return &app{
		settings: s,
		log:      log,
		closeLog: closeLog,
		gw:       gw,
		gens:     generators.New(gw, generators.WithLogger(logging.Component(log, "generators"))),
		session:  session.New(0),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}, nil
}

// Close releases the log file.
func (a *app) Close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(a.stderr, "error: close log: %v\n", err)
	}
}

// request is one generation job, built from flags or from the forms.
type request struct {
	kind    generators.Kind
	blog    generators.BlogInput
	social  generators.SocialInput
	writing generators.WritingInput
}

func (r *request) setOverrides(o gateway.Overrides) {
	r.blog.Overrides = o
	r.social.Overrides = o
	r.writing.Overrides = o
}

func (r request) overrides() gateway.Overrides {
	switch r.kind {
	case generators.Social:
		return r.social.Overrides
	case generators.Writing:
		return r.writing.Overrides
	default:
		return r.blog.Overrides
	}
}

// generate runs the request and records a successful result in the session.
func (a *app) generate(ctx context.Context, r request) (generators.Result, error) {
	var (
		res generators.Result
		err error
	)

	switch r.kind {
	case generators.Blog:
		res, err = a.gens.BlogOutline(ctx, r.blog)
	case generators.Social:
		res, err = a.gens.SocialCalendar(ctx, r.social)
	case generators.Writing:
		res, err = a.gens.WritingPrompt(ctx, r.writing)
	default:
		_, err = generators.ParseKind(string(r.kind))
	}

	if err != nil {
		return res, err
	}

	a.session.Add(res)

	return res, nil
}

// providerKind reports the backend a request with overrides o would reach.
func (a *app) providerKind(o gateway.Overrides) provider.Kind {
	if pc, err := a.gw.Resolve(o); err == nil {
		return pc.Kind
	}

	return a.gw.Config().Default
}

// reportFailure prints a generation error followed by troubleshooting hints.
// Input errors get no hints since the backend was never contacted.
func (a *app) reportFailure(o gateway.Overrides, err error) {
	fmt.Fprintln(a.stderr, errorBlockStyle.Render("Error generating content: "+err.Error()))

	if errors.Is(err, generators.ErrInvalidInput) || errors.Is(err, gateway.ErrInvalidRequest) {
		return
	}

	fmt.Fprintln(a.stderr, formatHints(troubleshootingHints(a.providerKind(o))))
}

// save exports r into the configured export directory.
func (a *app) save(r generators.Result, f export.Format, force bool) (string, error) {
	data, err := export.Render(r, f)
	if err != nil {
		return "", err
	}

	path, err := export.WriteFile(a.settings.ExportDir, export.ResultFilename(r, f), data, force)
	if err != nil {
		return "", err
	}

	a.log.Info("result exported", "kind", r.Kind, "format", f, "path", path)

	return path, nil
}

func (a *app) generateOnce(ctx context.Context, f *generateFlags) error {
	res, err := a.generate(ctx, f.req)
	if err != nil {
		a.reportFailure(f.req.overrides(), err)
		return errReported
	}

	md := res.ToMarkdown()
	if f.raw {
		fmt.Fprintln(a.stdout, md)
	} else {
		initMarkdownRenderer(0)
		fmt.Fprintln(a.stdout, renderMarkdown(md))
	}

	if e, ok := a.gw.Usage().Last(); ok {
		fmt.Fprintln(a.stderr, statusStyle.Render(usageLine(e)))
	}

	if f.format == "" {
		return nil
	}

	path, err := a.save(res, f.format, f.force)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stderr, "Saved %s\n", path)

	return nil
}

func (a *app) listModels(ctx context.Context, name string) error {
	var o gateway.Overrides
	if name != "" {
		k, err := provider.ParseKind(name)
		if err != nil {
			return err
		}
		o.Provider = &k
	}

	kind := a.providerKind(o)
	models := a.gw.ListModels(ctx, kind)

	if len(models) == 0 {
		fmt.Fprintf(a.stdout, "Models available on %s: unknown (the server could not be queried or reported none)\n", kind.DisplayName())
		return nil
	}

	fmt.Fprintf(a.stdout, "Models available on %s:\n", kind.DisplayName())
	for _, m := range models {
		fmt.Fprintf(a.stdout, "  %s\n", m)
	}

	return nil
}

func (a *app) check(ctx context.Context, name string) error {
	var o gateway.Overrides
	if name != "" {
		k, err := provider.ParseKind(name)
		if err != nil {
			return err
		}
		o.Provider = &k
	}

	pc, err := a.gw.Resolve(o)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Provider: %s\nBase URL: %s\nModel:    %s\n\n", pc.Kind.DisplayName(), pc.BaseURL, pc.Model)

	ok, msg := a.gw.TestProvider(ctx, o)
	if ok {
		fmt.Fprintln(a.stdout, okStyle.Render(msg))
		return nil
	}

	fmt.Fprintln(a.stdout, errorBlockStyle.Render(msg))
	fmt.Fprintln(a.stdout, formatHints(troubleshootingHints(pc.Kind)))

	return errReported
}

func (a *app) serveMCP(ctx context.Context) error {
	srv := mcpserver.New(version, logging.Component(a.log, "mcp"), mcpserver.Tools(mcpserver.Deps{
		Generators: a.gens,
		Gateway:    a.gw,
		Session:    a.session,
	})...)

	a.log.Info("serving MCP tools on stdio")

	return srv.ServeStdio(ctx)
}
