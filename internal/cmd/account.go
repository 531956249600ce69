package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/prepsite/internal/api"
	"github.com/jimezsa/prepsite/internal/config"
	"github.com/jimezsa/prepsite/internal/dashboard"
	"github.com/jimezsa/prepsite/internal/network"
	"github.com/jimezsa/prepsite/internal/questionnaire"
	"github.com/jimezsa/prepsite/internal/store"
)

// APIOptions selects the account API and the session used to call it.
type APIOptions struct {
	APIURL  string `name:"api-url" help:"Account API base URL."`
	Session string `help:"Session cookie header value (name=value)."`
	Proxy   string `help:"Proxy URL for API requests."`
}

func newAPIClient(ctx *Context, opts APIOptions) (*api.Client, error) {
	cookie, err := config.LoadSessionCookie(opts.Session)
	if err != nil {
		return nil, fmt.Errorf("session cookie: %w", err)
	}
	if cookie == "" {
		ctx.Logger.Debug().Msg("no session cookie configured")
	}

	httpClient, err := network.NewClient(network.Options{
		Timeout:       ctx.Config.APITimeout(),
		SessionCookie: cookie,
		Proxy:         firstNonEmpty(opts.Proxy, ctx.Config.Proxy),
	})
	if err != nil {
		return nil, err
	}
	return api.New(httpClient, firstNonEmpty(opts.APIURL, ctx.Config.APIBaseURL), ctx.Config.APITimeout(), ctx.Logger)
}

func openStore(ctx *Context) (*store.Store, error) {
	path, err := ctx.Config.ResolveCachePath()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx.runContext(), path, ctx.Config.SessionTTL())
}

type DashboardCmd struct {
	APIOptions
}

func (d *DashboardCmd) Run(ctx *Context) error {
	client, err := newAPIClient(ctx, d.APIOptions)
	if err != nil {
		return err
	}

	stop := startIndicator(ctx, "Loading dashboard")
	view, err := dashboard.Load(ctx.runContext(), client, ctx.Logger)
	stop()
	if err != nil {
		return err
	}

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, view)
	}
	return printDashboard(ctx, view)
}

func printDashboard(ctx *Context, view dashboard.View) error {
	out := ctx.Out
	if view.Progress == nil {
		ctx.UI.Warnf("Progress stats are unavailable right now.")
	} else {
		p := view.Progress
		fmt.Fprintln(out, ctx.UI.Heading("Progress"))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "  Level\t%d (%d XP)\n", p.Level, p.TotalXP)
		fmt.Fprintf(tw, "  Streak\t%d days (longest %d)\n", p.CurrentStreak, p.LongestStreak)
		fmt.Fprintf(tw, "  This week\t%s sessions\n", p.QuickStats.WeeklyProgress)
		fmt.Fprintf(tw, "  Best score\t%s\n", ctx.UI.ScoreText(p.BestScore, formatScore(p.BestScore)))
		fmt.Fprintf(tw, "  Average score\t%s\n", ctx.UI.ScoreText(p.AverageScore, formatScore(p.AverageScore)))
		fmt.Fprintf(tw, "  Interviews\t%d (behavioral %d, technical %d)\n", p.TotalInterviews, p.BehavioralInterviews, p.TechnicalInterviews)
		fmt.Fprintf(tw, "  Resume checks\t%d\n", p.ResumeChecks)
		fmt.Fprintf(tw, "  Improvement\t%s\n", p.QuickStats.ImprovementRate)
		fmt.Fprintf(tw, "  Active days\t%d\n", p.QuickStats.ActiveDays)
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ctx.UI.Heading("Recent sessions"))
	if len(view.RecentSessions) == 0 {
		fmt.Fprintln(out, "  none yet")
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, s := range view.RecentSessions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Type, ctx.UI.ScoreText(s.Score, formatScore(s.Score)), s.CompletedAt)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ctx.UI.Heading("Recent resume analyses"))
	if len(view.RecentAnalyses) == 0 {
		_, err := fmt.Fprintln(out, "  none yet")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, a := range view.RecentAnalyses {
		fmt.Fprintf(tw, "  %s\t%s\n", ctx.UI.ScoreText(a.Score, formatScore(a.Score)), a.CreatedAt)
	}
	return tw.Flush()
}

func formatScore(score float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", score), ".0")
}

type SubscriptionCmd struct {
	APIOptions
}

func (s *SubscriptionCmd) Run(ctx *Context) error {
	client, err := newAPIClient(ctx, s.APIOptions)
	if err != nil {
		return err
	}
	status, err := client.SubscriptionStatus(ctx.runContext())
	if err != nil {
		return err
	}
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, status)
	}
	printSubscription(ctx, status)
	return nil
}

func printSubscription(ctx *Context, status api.SubscriptionStatus) {
	if !status.HasActiveSubscription {
		ctx.UI.Warnf("No active subscription.")
		return
	}
	sub := status.Subscription
	if sub == nil {
		ctx.UI.Successf("Active subscription.")
		return
	}
	ctx.UI.Successf("Active %s subscription (%s)", firstNonEmpty(sub.Plan, "unknown"), firstNonEmpty(sub.Status, "active"))
	if sub.TrialDaysRemaining > 0 {
		ctx.UI.Infof("Trial days remaining: %d", sub.TrialDaysRemaining)
	}
	if sub.CurrentPeriodEnd != "" {
		verb := "Renews"
		if sub.CancelAtPeriodEnd {
			verb = "Ends"
		}
		ctx.UI.Infof("%s on %s", verb, sub.CurrentPeriodEnd)
	}
}

type GateCmd struct {
	APIOptions
}

func (g *GateCmd) Run(ctx *Context) error {
	client, err := newAPIClient(ctx, g.APIOptions)
	if err != nil {
		return err
	}
	cache, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	gate := questionnaire.NewGate(client, cache, ctx.Logger)
	decision, err := gate.Decide(ctx.runContext())
	if err != nil {
		return err
	}

	if decision.Access {
		if ctx.JSONOutput {
			return writeJSON(ctx.Out, decision)
		}
		printSubscription(ctx, decision.Subscription)
		return nil
	}

	if decision.QuestionnaireRequired {
		if ctx.JSONOutput {
			return writeJSON(ctx.Out, decision)
		}
		if err := runQuestionnaire(ctx, gate, false); err != nil {
			return err
		}
		decision.QuestionnaireRequired = false
	}

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, decision)
	}
	return printPlans(ctx, decision.Plans)
}

func printPlans(ctx *Context, plans []questionnaire.Plan) error {
	fmt.Fprintln(ctx.Out, ctx.UI.Heading("Choose a plan"))
	for _, plan := range plans {
		line := fmt.Sprintf("  %s  %s/%s", plan.Name, plan.Price, plan.Interval)
		if plan.Note != "" {
			line += "  (" + plan.Note + ")"
		}
		fmt.Fprintln(ctx.Out, line)
		for _, feature := range plan.Features {
			fmt.Fprintf(ctx.Out, "    - %s\n", feature)
		}
	}
	_, err := fmt.Fprintln(ctx.Out, questionnaire.TrialNote)
	return err
}
