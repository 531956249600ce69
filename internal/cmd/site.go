package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/prepsite/internal/catalog"
	"github.com/jimezsa/prepsite/internal/export"
	"github.com/jimezsa/prepsite/internal/manifest"
	"github.com/jimezsa/prepsite/internal/models"
	"github.com/jimezsa/prepsite/internal/site"
)

// CatalogOptions selects the dataset and the triple caps.
type CatalogOptions struct {
	Data            string `help:"Dataset file (YAML or JSON5). Defaults to the built-in dataset."`
	TripleCompanies int    `help:"Companies used for company+role+skill pages (negative disables)."`
	TripleRoles     int    `help:"Roles used for company+role+skill pages (negative disables)."`
	TripleSkills    int    `help:"Skills used for company+role+skill pages (negative disables)."`
}

func loadCatalog(ctx *Context, opts CatalogOptions) (*catalog.Catalog, error) {
	path := firstNonEmpty(opts.Data, ctx.Config.DataPath)

	var (
		ds  catalog.Dataset
		err error
	)
	if strings.TrimSpace(path) == "" {
		ds, err = catalog.LoadDefault()
	} else {
		ds, err = catalog.Load(path)
	}
	if err != nil {
		return nil, err
	}

	caps := catalog.Caps{
		Companies: defaultInt(opts.TripleCompanies, ctx.Config.TripleCompanies),
		Roles:     defaultInt(opts.TripleRoles, ctx.Config.TripleRoles),
		Skills:    defaultInt(opts.TripleSkills, ctx.Config.TripleSkills),
	}
	cat, err := catalog.New(ds, caps)
	if err != nil {
		return nil, err
	}
	ctx.Logger.Debug().
		Str("data", firstNonEmpty(path, "built-in")).
		Int("companies", len(cat.Companies())).
		Int("roles", len(cat.Roles())).
		Int("skills", len(cat.Skills())).
		Int("combinations", cat.Len()).
		Msg("catalog loaded")
	return cat, nil
}

type GenerateCmd struct {
	CatalogOptions
	Out          string `short:"o" help:"Output directory."`
	BaseURL      string `name:"base-url" help:"Absolute site URL used in canonical links and the sitemap."`
	RelatedLimit int    `help:"Related links per page; 0 uses the configured value, negative disables."`
	IndexLimit   int    `help:"Pages listed per company or topic index; 0 uses the configured value."`
	Prune        bool   `help:"Remove pages from the previous run that are no longer generated."`
	DryRun       bool   `help:"Report what would be written or removed without touching disk."`
}

type generateSummary struct {
	RunID          string           `json:"run_id"`
	Root           string           `json:"root"`
	Pages          int              `json:"pages"`
	CompanyIndexes int              `json:"company_indexes"`
	TopicIndexes   int              `json:"topic_indexes"`
	SitemapURLs    int              `json:"sitemap_urls"`
	Stale          []manifest.Entry `json:"stale"`
	Pruned         []string         `json:"pruned"`
	DryRun         bool             `json:"dry_run"`
}

func (g *GenerateCmd) Run(ctx *Context) error {
	cat, err := loadCatalog(ctx, g.CatalogOptions)
	if err != nil {
		return err
	}

	root := firstNonEmpty(g.Out, ctx.Config.OutputDir)
	gen, err := site.NewGenerator(cat, site.Options{
		Root:         root,
		BaseURL:      firstNonEmpty(g.BaseURL, ctx.Config.BaseURL),
		RelatedLimit: defaultInt(g.RelatedLimit, ctx.Config.RelatedLimit),
		IndexLimit:   defaultInt(g.IndexLimit, ctx.Config.IndexLimit),
		ChangeFreq:   ctx.Config.ChangeFreq,
		Prune:        g.Prune,
		DryRun:       g.DryRun,
	}, ctx.Logger)
	if err != nil {
		return err
	}

	res, err := gen.Run(ctx.runContext())
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, generateSummary{
			RunID:          res.RunID,
			Root:           root,
			Pages:          res.Pages,
			CompanyIndexes: res.CompanyIndexes,
			TopicIndexes:   res.TopicIndexes,
			SitemapURLs:    res.SitemapURLs,
			Stale:          nonNilEntries(res.Stale),
			Pruned:         nonNilStrings(res.Pruned),
			DryRun:         g.DryRun,
		})
	}

	if g.DryRun {
		ctx.UI.Infof("Dry run: would write %d pages, %d company indexes, %d topic indexes and %d sitemap urls to %s",
			res.Pages, res.CompanyIndexes, res.TopicIndexes, res.SitemapURLs, root)
	} else {
		ctx.UI.Successf("Generated %d pages, %d company indexes, %d topic indexes in %s",
			res.Pages, res.CompanyIndexes, res.TopicIndexes, root)
		ctx.UI.Infof("Sitemap: %s (%d urls)", ctx.UI.LinkText(res.SitemapPath), res.SitemapURLs)
	}
	switch {
	case len(res.Pruned) > 0 && g.DryRun:
		ctx.UI.Infof("Would remove %d stale pages", len(res.Pruned))
	case len(res.Pruned) > 0:
		ctx.UI.Infof("Pruned %d stale pages", len(res.Pruned))
	case len(res.Stale) > 0:
		ctx.UI.Warnf("%d pages from the previous run are no longer generated; rerun with --prune to remove them", len(res.Stale))
	}
	return nil
}

type SitemapCmd struct {
	CatalogOptions
	BaseURL string `name:"base-url" help:"Absolute site URL."`
	Output  string `short:"o" help:"Sitemap path, or - for stdout. Defaults to <output dir>/sitemap.xml."`
}

func (s *SitemapCmd) Run(ctx *Context) error {
	cat, err := loadCatalog(ctx, s.CatalogOptions)
	if err != nil {
		return err
	}
	baseURL := site.NormalizeBaseURL(firstNonEmpty(s.BaseURL, ctx.Config.BaseURL))
	if baseURL == "" {
		return fmt.Errorf("base url is required")
	}

	urls := site.SitemapURLs(baseURL, cat)
	now := time.Now()
	if s.Output == "-" {
		return site.WriteSitemap(ctx.Out, urls, ctx.Config.ChangeFreq, now)
	}

	path := firstNonEmpty(s.Output, filepath.Join(ctx.Config.OutputDir, site.SitemapFileName))
	out, closeOut, err := openOutput(ctx, path)
	if err != nil {
		return err
	}
	if err := site.WriteSitemap(out, urls, ctx.Config.ChangeFreq, now); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	ctx.UI.Successf("Wrote %d urls to %s", len(urls), path)
	return nil
}

type CheckCmd struct {
	Dir     string `arg:"" optional:"" help:"Generated site directory. Defaults to the configured output dir."`
	BaseURL string `name:"base-url" help:"Absolute site URL the sitemap was written for."`
}

func (c *CheckCmd) Run(ctx *Context) error {
	root := firstNonEmpty(c.Dir, ctx.Config.OutputDir)
	problems, err := site.Check(root, firstNonEmpty(c.BaseURL, ctx.Config.BaseURL))
	if err != nil {
		return err
	}

	if ctx.JSONOutput {
		if problems == nil {
			problems = []site.Problem{}
		}
		if err := writeJSON(ctx.Out, problems); err != nil {
			return err
		}
	} else {
		for _, p := range problems {
			ctx.UI.Warnf("%s", p)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d problems found in %s", len(problems), root)
	}
	if !ctx.JSONOutput {
		ctx.UI.Successf("%s looks good", root)
	}
	return nil
}

type CombosCmd struct {
	CatalogOptions
	Type    string `help:"Only this combination type: company-role, company-skill, role-skill, company-role-skill."`
	Format  string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links   string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	BaseURL string `name:"base-url" help:"Site URL used for the url column."`
	Output  string `short:"o" help:"Write output to a file."`
}

func (c *CombosCmd) Run(ctx *Context) error {
	if pathsEqual(c.Output, firstNonEmpty(c.Data, ctx.Config.DataPath)) {
		return fmt.Errorf("--output must not overwrite the dataset")
	}

	cat, err := loadCatalog(ctx, c.CatalogOptions)
	if err != nil {
		return err
	}

	combos := cat.Combinations()
	if strings.TrimSpace(c.Type) != "" {
		kind, err := models.ParseKind(c.Type)
		if err != nil {
			return err
		}
		combos = cat.OfKind(kind)
	}
	return writeCombinations(ctx, combos, c.Format, c.Links, firstNonEmpty(c.BaseURL, ctx.Config.BaseURL), c.Output)
}

type RelatedCmd struct {
	CatalogOptions
	Slug   string `arg:"" help:"Combination slug."`
	Limit  int    `help:"Maximum related pages; 0 uses the configured value, negative lists none."`
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
}

var errUnknownSlug = errors.New("unknown slug")

func (r *RelatedCmd) Run(ctx *Context) error {
	cat, err := loadCatalog(ctx, r.CatalogOptions)
	if err != nil {
		return err
	}
	target, ok := cat.Lookup(strings.TrimSpace(r.Slug))
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownSlug, r.Slug)
	}
	related := cat.Related(target, defaultInt(r.Limit, ctx.Config.RelatedLimit))
	if len(related) == 0 && !ctx.JSONOutput {
		ctx.UI.Warnf("No related pages for %s", r.Slug)
		return nil
	}
	return writeCombinations(ctx, related, r.Format, r.Links, ctx.Config.BaseURL, "")
}

func writeCombinations(ctx *Context, combos []models.Combination, format string, links string, baseURL string, outputPath string) error {
	resolved, err := resolveFormat(ctx, format, outputPath)
	if err != nil {
		return err
	}

	records := make([]models.Record, 0, len(combos))
	for _, combo := range combos {
		records = append(records, models.Flatten(combo))
	}

	out, closeOut, err := openOutput(ctx, outputPath)
	if err != nil {
		return err
	}
	opts := export.WriteOptions{
		BaseURL:      baseURL,
		ColorEnabled: ctx.UI.ColorEnabled && outputPath == "",
		Hyperlinks:   outputPath == "" && isTTY(ctx.Out),
		LinkStyle:    export.LinkStyle(links),
	}
	if err := export.WriteRecords(out, records, resolved, opts); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if outputPath != "" && outputPath != "-" {
		ctx.UI.Successf("Wrote %d combinations to %s", len(records), ctx.UI.LinkText(outputPath))
	}
	return nil
}

func nonNilEntries(entries []manifest.Entry) []manifest.Entry {
	if entries == nil {
		return []manifest.Entry{}
	}
	return entries
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
