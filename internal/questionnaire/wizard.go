// Package questionnaire runs the onboarding questionnaire and the
// subscription gate in front of the paywall.
package questionnaire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/prepsite/internal/api"
)

var (
	ErrSelectionRequired = errors.New("selection required")
	ErrUnknownOption     = errors.New("unknown option")
	ErrFinished          = errors.New("questionnaire already finished")
	ErrIncomplete        = errors.New("questionnaire incomplete")
)

type SelectMode int

const (
	SingleSelect SelectMode = iota
	MultiSelect
)

func (m SelectMode) String() string {
	if m == MultiSelect {
		return "multi"
	}
	return "single"
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Step struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Mode    SelectMode `json:"mode"`
	Options []Option   `json:"options"`
}

func (s Step) option(value string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

const (
	StepGoal          = "goal"
	StepInterviewType = "interviewType"
	StepExperience    = "experience"
	StepTimeline      = "timeline"
	StepWeakestArea   = "weakestArea"
)

// Steps returns the questionnaire in the order it is asked.
func Steps() []Step {
	return []Step{
		{
			ID:    StepGoal,
			Title: "What's your main goal?",
			Mode:  SingleSelect,
			Options: []Option{
				{Value: "land-internship", Label: "Land a tech internship"},
				{Value: "full-time-offer", Label: "Get a full-time offer"},
				{Value: "switch-careers", Label: "Switch careers into tech"},
				{Value: "sharpen-skills", Label: "Sharpen my interview skills"},
			},
		},
		{
			ID:    StepInterviewType,
			Title: "Which interviews are you preparing for?",
			Mode:  MultiSelect,
			Options: []Option{
				{Value: "technical", Label: "Technical / coding"},
				{Value: "behavioral", Label: "Behavioral"},
				{Value: "system-design", Label: "System design"},
				{Value: "resume-review", Label: "Resume screening"},
			},
		},
		{
			ID:    StepExperience,
			Title: "How much experience do you have?",
			Mode:  SingleSelect,
			Options: []Option{
				{Value: "none", Label: "No professional experience yet"},
				{Value: "student", Label: "Student with projects"},
				{Value: "internships", Label: "One or more internships"},
				{Value: "professional", Label: "Working professional"},
			},
		},
		{
			ID:    StepTimeline,
			Title: "When is your next interview?",
			Mode:  SingleSelect,
			Options: []Option{
				{Value: "this-week", Label: "This week"},
				{Value: "this-month", Label: "Within a month"},
				{Value: "1-3-months", Label: "In 1-3 months"},
				{Value: "exploring", Label: "Just exploring"},
			},
		},
		{
			ID:    StepWeakestArea,
			Title: "Where do you struggle most?",
			Mode:  MultiSelect,
			Options: []Option{
				{Value: "coding", Label: "Solving coding problems"},
				{Value: "communication", Label: "Explaining my thinking"},
				{Value: "system-design", Label: "Designing systems"},
				{Value: "stories", Label: "Telling behavioral stories"},
				{Value: "nerves", Label: "Interview nerves"},
			},
		},
	}
}

// Answers maps a step ID to the selected option values in selection order.
type Answers map[string][]string

func (a Answers) clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (a Answers) first(id string) string {
	if values := a[id]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Submission converts complete answers to the API body.
func (a Answers) Submission() (api.QuestionnaireSubmission, error) {
	sub := api.QuestionnaireSubmission{
		Goal:          a.first(StepGoal),
		InterviewType: append([]string(nil), a[StepInterviewType]...),
		Experience:    a.first(StepExperience),
		Timeline:      a.first(StepTimeline),
		WeakestArea:   append([]string(nil), a[StepWeakestArea]...),
	}
	var missing []string
	if sub.Goal == "" {
		missing = append(missing, StepGoal)
	}
	if len(sub.InterviewType) == 0 {
		missing = append(missing, StepInterviewType)
	}
	if sub.Experience == "" {
		missing = append(missing, StepExperience)
	}
	if sub.Timeline == "" {
		missing = append(missing, StepTimeline)
	}
	if len(sub.WeakestArea) == 0 {
		missing = append(missing, StepWeakestArea)
	}
	if len(missing) > 0 {
		return api.QuestionnaireSubmission{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return sub, nil
}

// Wizard walks the steps one at a time.
type Wizard struct {
	steps   []Step
	index   int
	done    bool
	answers Answers
}

func NewWizard(steps []Step) *Wizard {
	return &Wizard{steps: steps, answers: Answers{}}
}

func (w *Wizard) Current() Step {
	return w.steps[w.index]
}

func (w *Wizard) Index() int { return w.index }

func (w *Wizard) Len() int { return len(w.steps) }

func (w *Wizard) Done() bool { return w.done }

// Selected returns the values chosen on the current step.
func (w *Wizard) Selected() []string {
	return append([]string(nil), w.answers[w.Current().ID]...)
}

// Select picks value on the current step. Single-select steps replace the
// choice and multi-select steps toggle it.
func (w *Wizard) Select(value string) error {
	if w.done {
		return ErrFinished
	}
	step := w.Current()
	if _, ok := step.option(value); !ok {
		return fmt.Errorf("%w: %q for %s", ErrUnknownOption, value, step.ID)
	}
	if step.Mode == SingleSelect {
		w.answers[step.ID] = []string{value}
		return nil
	}

	current := w.answers[step.ID]
	for i, v := range current {
		if v == value {
			w.answers[step.ID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	w.answers[step.ID] = append(current, value)
	return nil
}

// CanAdvance reports whether the current step has a valid selection.
func (w *Wizard) CanAdvance() bool {
	step := w.Current()
	n := len(w.answers[step.ID])
	if step.Mode == MultiSelect {
		return n >= 1
	}
	return n == 1
}

// Next moves forward, finishing the wizard on the last step.
func (w *Wizard) Next() error {
	if w.done {
		return ErrFinished
	}
	if !w.CanAdvance() {
		return fmt.Errorf("%w: %s", ErrSelectionRequired, w.Current().ID)
	}
	if w.index == len(w.steps)-1 {
		w.done = true
		return nil
	}
	w.index++
	return nil
}

// Back moves to the previous step and reports whether it moved.
func (w *Wizard) Back() bool {
	if w.done {
		w.done = false
		return true
	}
	if w.index == 0 {
		return false
	}
	w.index--
	return true
}

func (w *Wizard) Answers() Answers {
	return w.answers.clone()
}

// Prefill seeds selections from a cached copy. Steps and values the wizard
// does not know are dropped.
func (w *Wizard) Prefill(cached Answers) {
	for _, step := range w.steps {
		var values []string
		for _, v := range cached[step.ID] {
			if _, ok := step.option(v); ok {
				values = append(values, v)
			}
		}
		if step.Mode == SingleSelect && len(values) > 1 {
			values = values[:1]
		}
		if len(values) > 0 {
			w.answers[step.ID] = values
		}
	}
}
