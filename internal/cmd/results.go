package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/prepsite/internal/results"
	"github.com/jimezsa/prepsite/internal/store"
)

type ResultsCmd struct {
	File    string `help:"Read results JSON from a file instead of the local cache."`
	Consume bool   `help:"Remove the cached results after showing them (API responses only)."`
}

type resultsOutput struct {
	Shape    results.Shape     `json:"shape"`
	Analysis *results.Analysis `json:"analysis"`
	Rating   results.Rating    `json:"rating,omitempty"`
	Consumed bool              `json:"consumed"`
}

func (r *ResultsCmd) Run(ctx *Context) error {
	var (
		raw   []byte
		cache *store.Store
	)
	if strings.TrimSpace(r.File) != "" {
		data, err := os.ReadFile(r.File)
		if err != nil {
			return err
		}
		raw = data
	} else {
		var err error
		cache, err = openStore(ctx)
		if err != nil {
			return err
		}
		defer cache.Close()

		entry, err := cache.Get(ctx.runContext(), store.ScopeLocal, store.KeyCareerRoadmapResults)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			raw = []byte(entry.Value)
		}
	}

	outcome := results.Decode(raw)
	outcome.Log(ctx.Logger)

	consumed := false
	if r.Consume && cache != nil && outcome.Consumable() {
		if err := cache.Delete(ctx.runContext(), store.ScopeLocal, store.KeyCareerRoadmapResults); err != nil {
			return err
		}
		consumed = true
	}

	if ctx.JSONOutput {
		out := resultsOutput{Shape: outcome.Shape, Analysis: outcome.Analysis, Consumed: consumed}
		if outcome.HasData() {
			out.Rating = results.Band(outcome.Analysis.OverallScore)
		}
		return writeJSON(ctx.Out, out)
	}

	if !outcome.HasData() {
		ctx.UI.Warnf("No results data available.")
		return nil
	}
	return printAnalysis(ctx, outcome.Analysis)
}

func printAnalysis(ctx *Context, a *results.Analysis) error {
	out := ctx.Out
	score := a.OverallScore
	fmt.Fprintf(out, "%s %s  %s\n",
		ctx.UI.Heading("Career roadmap"),
		ctx.UI.ScoreText(score, results.Percent(score)),
		results.Band(score).Label())
	if a.Summary != "" {
		fmt.Fprintf(out, "%s\n", a.Summary)
	}

	printList(ctx, "Strengths", a.CurrentRoleAnalysis.Strengths)
	printList(ctx, "Skill gaps", a.CurrentRoleAnalysis.SkillGaps)

	if len(a.CareerPath.Phases) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ctx.UI.Heading("Career path"))
		for i, phase := range a.CareerPath.Phases {
			fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, phase.Title, phase.Timeframe)
			if phase.EstimatedSalaryRange != "" {
				fmt.Fprintf(out, "     Salary: %s\n", phase.EstimatedSalaryRange)
			}
			for _, milestone := range phase.KeyMilestones {
				fmt.Fprintf(out, "     - %s\n", milestone)
			}
		}
	}

	if skills := a.SkillsAnalysis.TechnicalSkills; len(skills) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ctx.UI.Heading("Technical skills"))
		for _, skill := range skills {
			fmt.Fprintf(out, "  %s  %s  %s -> %s\n", skill.Skill,
				ctx.UI.ScoreText(skill.Importance, results.Percent(skill.Importance)),
				skill.CurrentLevel, skill.TargetLevel)
		}
	}

	printList(ctx, "Do now", a.Recommendations.Immediate)
	printList(ctx, "Next few months", a.Recommendations.ShortTerm)
	printList(ctx, "Long term", a.Recommendations.LongTerm)

	if len(a.Certifications) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ctx.UI.Heading("Certifications"))
		for _, cert := range a.Certifications {
			fmt.Fprintf(out, "  %s (%s, %s)\n", cert.Name, cert.Provider, cert.Priority)
		}
	}

	if courses := a.Resources.Courses; len(courses) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ctx.UI.Heading("Courses"))
		for _, course := range courses {
			fmt.Fprintf(out, "  %s - %s (%s)\n", course.Title, course.Provider, course.Duration)
		}
	}
	return nil
}

func printList(ctx *Context, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(ctx.Out)
	fmt.Fprintln(ctx.Out, ctx.UI.Heading(title))
	for _, item := range items {
		fmt.Fprintf(ctx.Out, "  - %s\n", item)
	}
}
