package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-alohomora/pkg/controller"
	"github.com/goliatone/go-alohomora/pkg/page"
	"github.com/goliatone/go-alohomora/pkg/render"
	"github.com/goliatone/go-alohomora/pkg/renderers/tui"
)

// newPromptDriver builds the terminal driver. Tests swap it for a scripted one.
var newPromptDriver = func(out io.Writer) tui.PromptDriver {
	return tui.NewSurveyDriver(out)
}

func promptCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "prompt borrower|loan",
		Short:     "Fill in a form from the terminal",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(page.Borrower), string(page.Loan)},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := page.NewNavigator().Show(args[0])
			if err != nil {
				return err
			}
			if !p.HasForm() {
				return fmt.Errorf("prompt: page %q has no form", p)
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			renderer, err := tui.New(
				tui.WithPromptDriver(newPromptDriver(cmd.OutOrStdout())),
				tui.WithOutputFormat(tui.OutputFormatFormURLEncoded),
			)
			if err != nil {
				return err
			}

			return runPrompt(ctx, a, renderer, p)
		},
	}
}

// runPrompt collects one submission for p through the same controller the
// web front end uses.
func runPrompt(ctx context.Context, a *app, renderer *tui.Renderer, p page.Page) error {
	view := render.NewView(p)
	view.SetHidden(render.SubmissionToken(controller.NewSubmissionToken()))

	var dir controller.Directory
	switch p {
	case page.Borrower:
		form := a.borrower.Form()
		view.Form = &form
	case page.Loan:
		dir = a.loan.LoadDirectory(ctx)
		form := a.loan.Form(dir)
		view.Form = &form
	}

	answers, err := renderer.Render(ctx, view)
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(string(answers))
	if err != nil {
		return fmt.Errorf("prompt: decode answers: %w", err)
	}

	var out controller.Outcome
	if p == page.Loan {
		out = a.loan.Submit(ctx, dir, values)
	} else {
		out = a.borrower.Submit(ctx, values)
	}

	if err := renderer.Notify(ctx, out.Notification); err != nil {
		return err
	}
	if !out.Succeeded() {
		return fmt.Errorf("prompt: submission %s", out.Status)
	}
	return nil
}
