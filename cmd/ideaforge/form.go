package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/germanamz/ideaforge/pkg/export"
	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// interactive runs the pick, fill, generate and view loop until the user
// declines another round or aborts a form.
func (a *app) interactive(ctx context.Context) error {
	fmt.Fprintln(a.stdout, titleStyle.Render("ideaforge")+dimStyle.Render(" · content ideas from your local models"))

	for {
		err := a.round(ctx)
		if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		again := true
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Generate another?").Value(&again),
		)).RunWithContext(ctx); err != nil || !again {
			return nil
		}
	}
}

// round runs one generation. Generation failures are reported and do not end
// the loop.
func (a *app) round(ctx context.Context) error {
	kind, err := pickGenerator(ctx)
	if err != nil {
		return err
	}

	req, err := a.fillForm(ctx, kind)
	if err != nil {
		return err
	}

	res, err := a.generateWithSpinner(ctx, req)
	if err != nil {
		a.reportFailure(req.overrides(), err)
		return nil
	}

	return a.view(res)
}

func pickGenerator(ctx context.Context) (generators.Kind, error) {
	opts := make([]huh.Option[generators.Kind], 0, len(generators.Kinds()))
	for _, k := range generators.Kinds() {
		opts = append(opts, huh.NewOption(k.Title(), k))
	}

	var kind generators.Kind
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[generators.Kind]().Title("What do you want to generate?").Options(opts...).Value(&kind),
	)).RunWithContext(ctx)

	return kind, err
}

// labeled builds select options whose labels are the title-cased values.
func labeled(values []string, label func(string) string) []huh.Option[string] {
	if label == nil {
		label = generators.KeyTitle
	}

	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(label(v), v)
	}

	return opts
}

func (a *app) fillForm(ctx context.Context, kind generators.Kind) (request, error) {
	req := request{kind: kind}

	var fields []huh.Field

	switch kind {
	case generators.Blog:
		in := &req.blog
		in.Audience, in.Length, in.ContentType = "intermediate", "medium", "how-to"
		fields = []huh.Field{
			huh.NewInput().Title("Topic").Placeholder("e.g. Getting started with Go generics").Value(&in.Topic).Validate(validateTopic),
			huh.NewSelect[string]().Title("Target audience").Options(labeled(generators.Audiences, nil)...).Value(&in.Audience),
			huh.NewSelect[string]().Title("Article length").Options(labeled(generators.Lengths, func(v string) string {
				return fmt.Sprintf("%s (%s)", generators.KeyTitle(v), generators.LengthGuide(v))
			})...).Value(&in.Length),
			huh.NewSelect[string]().Title("Content type").Options(labeled(generators.ContentTypes, nil)...).Value(&in.ContentType),
			huh.NewText().Title("Custom context (optional)").Description("Notes, facts or sources the outline should draw on.").Value(&in.CustomContext),
		}
	case generators.Social:
		in := &req.social
		in.Frequency, in.Platform, in.Timeframe, in.Tone = "3x week", "linkedin", "month", "professional"
		fields = []huh.Field{
			huh.NewInput().Title("Theme").Placeholder("e.g. Sustainable coffee").Value(&in.Theme).Validate(validateRequired),
			huh.NewSelect[string]().Title("Platform").Options(labeled(generators.Platforms, generators.PlatformName)...).Value(&in.Platform),
			huh.NewSelect[string]().Title("Posting frequency").Options(labeled(generators.Frequencies, nil)...).Value(&in.Frequency),
			huh.NewSelect[string]().Title("Timeframe").Options(labeled(generators.Timeframes, nil)...).Value(&in.Timeframe),
			huh.NewSelect[string]().Title("Tone").Options(labeled(generators.Tones, nil)...).Value(&in.Tone),
			huh.NewConfirm().Title("Suggest posting dates starting today?").Value(&in.IncludeDates),
		}
	case generators.Writing:
		in := &req.writing
		in.Genre, in.PromptType, in.Complexity = generators.Genres[0], "plot", "moderate"
		fields = []huh.Field{
			huh.NewSelect[string]().Title("Genre").Options(labeled(generators.Genres, nil)...).Value(&in.Genre),
			huh.NewSelect[string]().Title("Prompt focus").Options(labeled(generators.PromptTypes, nil)...).Value(&in.PromptType),
			huh.NewSelect[string]().Title("Complexity").Options(labeled(generators.Complexities, nil)...).Value(&in.Complexity),
			huh.NewInput().Title("Constraints (optional)").Placeholder("e.g. under 1000 words, second person").Value(&in.Constraints),
		}
	default:
		_, err := generators.ParseKind(string(kind))
		return req, err
	}

	var advanced bool
	fields = append(fields, huh.NewConfirm().Title("Adjust model settings?").Value(&advanced))

	if err := huh.NewForm(huh.NewGroup(fields...).Title(kind.Title())).RunWithContext(ctx); err != nil {
		return req, err
	}

	if !advanced {
		return req, nil
	}

	o, err := a.overridesForm(ctx)
	if err != nil {
		return req, err
	}
	req.setOverrides(o)

	return req, nil
}

// overridesForm asks for the provider, then offers the models that provider
// reports. Servers that report none get a free-text model field.
func (a *app) overridesForm(ctx context.Context) (gateway.Overrides, error) {
	kind := a.gw.Config().Default

	provOpts := make([]huh.Option[provider.Kind], 0, len(provider.Kinds()))
	for _, k := range provider.Kinds() {
		provOpts = append(provOpts, huh.NewOption(k.DisplayName(), k))
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[provider.Kind]().Title("Provider").Options(provOpts...).Value(&kind),
	)).RunWithContext(ctx); err != nil {
		return gateway.Overrides{}, err
	}

	pc, err := a.gw.Resolve(gateway.Overrides{Provider: &kind})
	if err != nil {
		return gateway.Overrides{}, err
	}

	var models []string
	_ = spinner.New().
		Title(fmt.Sprintf("Asking %s for its models...", kind.DisplayName())).
		Context(ctx).
		Action(func() { models = a.gw.ListModels(ctx, kind) }).
		Run()

	model := pc.Model
	temperature := strconv.FormatFloat(pc.Temperature, 'f', -1, 64)
	maxTokens := strconv.Itoa(pc.MaxTokens)

	var modelField huh.Field
	if len(models) > 0 {
		switch {
		case slices.Contains(models, model):
		case slices.Contains(models, model+":latest"):
			model += ":latest"
		default:
			model = models[0]
		}
		modelField = huh.NewSelect[string]().Title("Model").Options(huh.NewOptions(models...)...).Value(&model)
	} else {
		modelField = huh.NewInput().Title("Model").Description("Available models unknown; enter a name.").Value(&model).Validate(validateRequired)
	}

	if err := huh.NewForm(huh.NewGroup(
		modelField,
		huh.NewInput().Title("Temperature (0 to 2)").Value(&temperature).Validate(validateTemperature),
		huh.NewInput().Title("Max tokens").Value(&maxTokens).Validate(validatePositiveInt),
	)).RunWithContext(ctx); err != nil {
		return gateway.Overrides{}, err
	}

	t, _ := strconv.ParseFloat(temperature, 64)
	n, _ := strconv.Atoi(maxTokens)

	return gateway.Overrides{
		Provider:    &kind,
		Model:       &model,
		Temperature: &t,
		MaxTokens:   &n,
	}, nil
}

// generateWithSpinner runs the request while a spinner names the backend.
func (a *app) generateWithSpinner(ctx context.Context, req request) (generators.Result, error) {
	var (
		res    generators.Result
		genErr error
	)

	prov := a.providerKind(req.overrides())

	err := spinner.New().
		Title(fmt.Sprintf("Generating %s with %s...", strings.ToLower(req.kind.Title()), prov.DisplayName())).
		Context(ctx).
		Action(func() { res, genErr = a.generate(ctx, req) }).
		Run()
	if err != nil {
		return res, err
	}

	return res, genErr
}

// view opens the result viewer. The diff tab is filled when an earlier
// result of the same generator exists in this session.
func (a *app) view(res generators.Result) error {
	diff, hasDiff, err := a.session.Diff(res.Kind)
	if err != nil {
		a.log.Warn("diff failed", "kind", res.Kind, "error", err)
	}

	var status string
	if e, ok := a.gw.Usage().Last(); ok {
		status = usageLine(e)
	}

	m := newViewer(res, viewerOptions{
		diff:    diff,
		hasDiff: hasDiff,
		usage:   status,
		save: func(f export.Format) (string, error) {
			return a.save(res, f, false)
		},
	})

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()

	return err
}
