package cmd

import "github.com/alecthomas/kong"

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version       VersionCmd       `cmd:"" help:"Print version."`
	Config        ConfigCmd        `cmd:"" help:"Manage configuration."`
	Generate      GenerateCmd      `cmd:"" help:"Write landing pages, indexes, sitemap and manifest."`
	Combos        CombosCmd        `cmd:"" help:"List generated combinations."`
	Related       RelatedCmd       `cmd:"" help:"List pages related to a slug."`
	Sitemap       SitemapCmd       `cmd:"" help:"Write only the sitemap."`
	Check         CheckCmd         `cmd:"" help:"Verify a generated site tree."`
	Serve         ServeCmd         `cmd:"" help:"Preview a generated site tree over HTTP."`
	Dashboard     DashboardCmd     `cmd:"" help:"Fetch and print the dashboard."`
	Results       ResultsCmd       `cmd:"" help:"Print stored career-roadmap results."`
	Questionnaire QuestionnaireCmd `cmd:"" help:"Onboarding questionnaire."`
	Subscription  SubscriptionCmd  `cmd:"" help:"Print subscription status."`
	Gate          GateCmd          `cmd:"" help:"Run the subscription gate."`
	Cache         CacheCmd         `cmd:"" help:"Inspect the local cache."`
}

func NewCLI() *CLI {
	return &CLI{}
}
