package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jimezsa/prepsite/internal/questionnaire"
)

var (
	errQuestionnaireCancelled = errors.New("questionnaire cancelled")
	errInputEnded             = errors.New("input ended before the questionnaire was finished")
)

type QuestionnaireCmd struct {
	Run    QuestionnaireRunCmd    `cmd:"" help:"Answer the onboarding questionnaire."`
	Status QuestionnaireStatusCmd `cmd:"" help:"Print questionnaire status."`
}

type QuestionnaireRunCmd struct {
	APIOptions
	Force bool `help:"Run even when the questionnaire is already completed."`
}

type QuestionnaireStatusCmd struct {
	APIOptions
}

func (q *QuestionnaireRunCmd) Run(ctx *Context) error {
	if ctx.JSONOutput {
		return fmt.Errorf("questionnaire run is interactive; --json is not supported")
	}
	client, err := newAPIClient(ctx, q.APIOptions)
	if err != nil {
		return err
	}
	cache, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	return runQuestionnaire(ctx, questionnaire.NewGate(client, cache, ctx.Logger), q.Force)
}

func (q *QuestionnaireStatusCmd) Run(ctx *Context) error {
	client, err := newAPIClient(ctx, q.APIOptions)
	if err != nil {
		return err
	}
	cache, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	status, err := questionnaire.NewGate(client, cache, ctx.Logger).Status(ctx.runContext())
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, status)
	}
	if status.Completed {
		ctx.UI.Successf("Questionnaire completed.")
	} else {
		ctx.UI.Warnf("Questionnaire not completed.")
	}
	if status.Prefill != nil {
		ctx.UI.Infof("Local answers from %s (submission %s)", status.Prefill.SubmittedAt.Format("2006-01-02"), status.Prefill.SubmissionID)
	}
	return nil
}

// runQuestionnaire checks the remote status, walks the wizard over ctx.In
// and submits the answers.
func runQuestionnaire(ctx *Context, gate *questionnaire.Gate, force bool) error {
	status, err := gate.Status(ctx.runContext())
	if err != nil {
		return err
	}
	if status.Completed && !force {
		ctx.UI.Infof("Questionnaire already completed.")
		return nil
	}

	wizard := questionnaire.NewWizard(questionnaire.Steps())
	if status.Prefill != nil {
		wizard.Prefill(status.Prefill.Answers)
		ctx.Logger.Debug().Str("submission_id", status.Prefill.SubmissionID).Msg("prefilled questionnaire from local answers")
	}

	if err := runWizard(ctx, wizard); err != nil {
		return err
	}

	mirror, err := gate.Submit(ctx.runContext(), wizard.Answers())
	if err != nil {
		return err
	}
	ctx.UI.Successf("Questionnaire submitted (%s)", mirror.SubmissionID)
	return nil
}

// runWizard prompts for each step. A line of option numbers selects them
// (toggling on multi-select steps), an empty line continues, "b" goes back
// and "q" cancels.
func runWizard(ctx *Context, wizard *questionnaire.Wizard) error {
	scanner := bufio.NewScanner(ctx.In)
	for !wizard.Done() {
		printStep(ctx, wizard)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errInputEnded
		}
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch line {
		case "":
			if err := wizard.Next(); err != nil {
				if errors.Is(err, questionnaire.ErrSelectionRequired) {
					ctx.UI.Warnf("Pick at least one option to continue.")
					continue
				}
				return err
			}
		case "b", "back":
			if !wizard.Back() {
				ctx.UI.Warnf("Already at the first question.")
			}
		case "q", "quit":
			return errQuestionnaireCancelled
		default:
			if err := selectOptions(wizard, line); err != nil {
				ctx.UI.Warnf("%v", err)
			}
		}
	}
	return nil
}

func selectOptions(wizard *questionnaire.Wizard, line string) error {
	step := wizard.Current()
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > len(step.Options) {
			return fmt.Errorf("%w: %q", questionnaire.ErrUnknownOption, field)
		}
		if err := wizard.Select(step.Options[n-1].Value); err != nil {
			return err
		}
	}
	return nil
}

func printStep(ctx *Context, wizard *questionnaire.Wizard) {
	out := ctx.Out
	step := wizard.Current()
	hint := "choose one"
	if step.Mode == questionnaire.MultiSelect {
		hint = "choose any"
	}

	selected := make(map[string]bool)
	for _, value := range wizard.Selected() {
		selected[value] = true
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ctx.UI.Heading(fmt.Sprintf("[%d/%d] %s (%s)", wizard.Index()+1, wizard.Len(), step.Title, hint)))
	for i, opt := range step.Options {
		mark := " "
		if selected[opt.Value] {
			mark = "x"
		}
		fmt.Fprintf(out, "  %d) [%s] %s\n", i+1, mark, opt.Label)
	}
	fmt.Fprint(out, "Numbers to select, Enter to continue, b to go back, q to quit: ")
}
