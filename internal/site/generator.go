// Package site renders the landing-page tree, its sitemap and manifest, and
// verifies a rendered tree.
package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/prepsite/internal/catalog"
	"github.com/jimezsa/prepsite/internal/manifest"
	"github.com/jimezsa/prepsite/internal/models"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const (
	// PagesDir is the URL and directory prefix of every landing page.
	PagesDir = "internships"
	// TopicsDir holds the per-skill index pages under PagesDir.
	TopicsDir = catalog.TopicsSlug
	// IndexFile is the file written inside each page directory.
	IndexFile = "index.html"
	// SiteName appears in page metadata.
	SiteName = "InterviewSense"

	DefaultIndexLimit = 12
	DefaultChangeFreq = "weekly"

	progressEvery = 100
)

// Options controls a generation run.
type Options struct {
	Root         string
	BaseURL      string
	RelatedLimit int
	IndexLimit   int
	ChangeFreq   string
	Prune        bool
	DryRun       bool
	Now          func() time.Time
}

// Result summarizes a generation run.
type Result struct {
	RunID          string
	Pages          int
	CompanyIndexes int
	TopicIndexes   int
	SitemapURLs    int
	Stale          []manifest.Entry
	Pruned         []string
	ManifestPath   string
	SitemapPath    string
}

// Generator writes the landing-page tree for one catalog.
type Generator struct {
	cat    *catalog.Catalog
	opts   Options
	logger zerolog.Logger
	tmpl   *template.Template
}

// NewGenerator validates opts and parses the embedded templates.
func NewGenerator(cat *catalog.Catalog, opts Options, logger zerolog.Logger) (*Generator, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if strings.TrimSpace(opts.Root) == "" {
		return nil, fmt.Errorf("output root is required")
	}
	opts.BaseURL = NormalizeBaseURL(opts.BaseURL)
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if opts.RelatedLimit < 0 {
		opts.RelatedLimit = 0
	}
	if opts.IndexLimit <= 0 {
		opts.IndexLimit = DefaultIndexLimit
	}
	if strings.TrimSpace(opts.ChangeFreq) == "" {
		opts.ChangeFreq = DefaultChangeFreq
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Generator{cat: cat, opts: opts, logger: logger, tmpl: tmpl}, nil
}

// Run writes every combination page, the hub, company and topic indexes,
// the sitemap and the manifest, one file at a time. Pages from the previous
// manifest that are no longer produced are removed when Prune is set.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:        uuid.NewString(),
		ManifestPath: filepath.Join(g.opts.Root, manifest.FileName),
		SitemapPath:  filepath.Join(g.opts.Root, SitemapFileName),
	}

	previous, err := manifest.ReadAllowMissing(res.ManifestPath)
	if err != nil {
		return res, fmt.Errorf("read manifest: %w", err)
	}

	var entries []manifest.Entry

	for _, combo := range g.cat.Combinations() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entry, err := g.WritePage(combo)
		if err != nil {
			return res, err
		}
		entries = append(entries, entry)
		res.Pages++
		if res.Pages%progressEvery == 0 {
			g.logger.Info().Int("pages", res.Pages).Msg("generated pages")
		}
	}

	hub, err := g.WriteHub()
	if err != nil {
		return res, err
	}
	entries = append(entries, hub)

	for _, company := range g.cat.Companies() {
		entry, err := g.WriteCompanyIndex(company)
		if err != nil {
			return res, err
		}
		entries = append(entries, entry)
		res.CompanyIndexes++
	}

	for _, skill := range g.cat.Skills() {
		entry, err := g.WriteTopicIndex(skill)
		if err != nil {
			return res, err
		}
		entries = append(entries, entry)
		res.TopicIndexes++
	}

	urls := SitemapURLs(g.opts.BaseURL, g.cat)
	res.SitemapURLs = len(urls)
	if !g.opts.DryRun {
		if err := WriteSitemapFile(res.SitemapPath, urls, g.opts.ChangeFreq, g.opts.Now()); err != nil {
			return res, err
		}
	}

	res.Stale, _ = manifest.Diff(entries, previous.Pages)
	if g.opts.Prune {
		pruned, err := g.prune(res.Stale, entries)
		res.Pruned = pruned
		if err != nil {
			return res, err
		}
	}

	if !g.opts.DryRun {
		m := manifest.Manifest{
			RunID:       res.RunID,
			GeneratedAt: g.opts.Now().UTC(),
			BaseURL:     g.opts.BaseURL,
			Pages:       entries,
		}
		if err := manifest.Write(res.ManifestPath, m); err != nil {
			return res, fmt.Errorf("write manifest: %w", err)
		}
	}

	g.logger.Debug().
		Str("run_id", res.RunID).
		Int("pages", res.Pages).
		Int("company_indexes", res.CompanyIndexes).
		Int("topic_indexes", res.TopicIndexes).
		Int("sitemap_urls", res.SitemapURLs).
		Int("stale", len(res.Stale)).
		Msg("generation finished")

	return res, nil
}

// WritePage renders the landing page for one combination.
func (g *Generator) WritePage(combo models.Combination) (manifest.Entry, error) {
	info := combo.Info()
	company, role, skill := models.Refs(combo)

	v := g.baseView(info.Title, info.Description, pageURLPath(info.Slug))
	v.Kind = combo.Kind()
	v.Keywords = strings.Join(keywords(company, role, g.opts.Now().Year()), ", ")
	v.Company, v.Role, v.Skill = company, role, skill
	v.StructuredData = structuredData(combo, v.Canonical)
	for _, rel := range g.cat.Related(combo, g.opts.RelatedLimit) {
		v.Related = append(v.Related, comboCard(rel, rel.Info().Title))
	}

	rel := path.Join(PagesDir, info.Slug)
	entry := manifest.Entry{Slug: info.Slug, Type: string(combo.Kind()), Path: rel}
	return entry, g.render(rel, "page.html.tmpl", v)
}

// WriteHub renders the /internships landing page.
func (g *Generator) WriteHub() (manifest.Entry, error) {
	v := g.baseView(
		"CS Internship Interview Questions | "+SiteName,
		"Practice real internship interview questions from top tech companies, by company and by topic.",
		"/"+PagesDir,
	)
	for _, company := range g.cat.Companies() {
		v.First = append(v.First, card{
			Label:       company.Name,
			Description: fmt.Sprintf("%d+ questions, %s difficulty", company.TypicalQuestions, company.Difficulty),
			Href:        pageURLPath(company.Slug),
		})
	}
	for _, skill := range g.cat.Skills() {
		v.Second = append(v.Second, card{
			Label:       skill.Name,
			Description: fmt.Sprintf("%d+ questions, %s", skill.QuestionCount, skill.Category),
			Href:        topicURLPath(skill.Slug),
		})
	}
	return manifest.Entry{Slug: PagesDir, Type: manifest.TypeHub, Path: PagesDir}, g.render(PagesDir, "hub.html.tmpl", v)
}

// WriteCompanyIndex renders the index page of one company.
func (g *Generator) WriteCompanyIndex(company models.Company) (manifest.Entry, error) {
	v := g.baseView(
		fmt.Sprintf("%s Internship Interview Questions | CS Interview Prep - %s", company.Name, SiteName),
		fmt.Sprintf("Ace your %s internship interview with real questions and AI-powered practice. %d+ questions from actual %s interviews.",
			company.Name, company.TypicalQuestions, company.Name),
		pageURLPath(company.Slug),
	)
	v.Keywords = fmt.Sprintf("%[1]s interview questions, %[1]s internship, %[1]s coding interview, %[1]s software engineer intern", company.Name)
	v.Company = &company

	for _, combo := range g.cat.ForCompany(company.Slug) {
		switch c := combo.(type) {
		case models.CompanyRole:
			if len(v.First) < g.opts.IndexLimit {
				v.First = append(v.First, comboCard(c, c.Role.Title))
			}
		case models.CompanySkill:
			if len(v.Second) < g.opts.IndexLimit {
				v.Second = append(v.Second, comboCard(c, c.Skill.Name))
			}
		}
	}

	rel := path.Join(PagesDir, company.Slug)
	entry := manifest.Entry{Slug: company.Slug, Type: manifest.TypeCompanyIndex, Path: rel}
	return entry, g.render(rel, "company.html.tmpl", v)
}

// WriteTopicIndex renders the index page of one skill.
func (g *Generator) WriteTopicIndex(skill models.Skill) (manifest.Entry, error) {
	v := g.baseView(
		fmt.Sprintf("%s Interview Questions for CS Internships | %s", skill.Name, SiteName),
		fmt.Sprintf("Master %s interview questions for CS internships. Practice with %d+ real questions from top tech companies.",
			skill.Name, skill.QuestionCount),
		topicURLPath(skill.Slug),
	)
	v.Keywords = fmt.Sprintf("%[1]s interview questions, %[1]s coding interview, CS internship %[1]s, computer science %[1]s", skill.Name)
	v.Skill = &skill

	for _, combo := range g.cat.ForSkill(skill.Slug) {
		switch c := combo.(type) {
		case models.CompanySkill:
			if len(v.First) < g.opts.IndexLimit {
				v.First = append(v.First, comboCard(c, c.Company.Name))
			}
		case models.RoleSkill:
			if len(v.Second) < g.opts.IndexLimit {
				v.Second = append(v.Second, comboCard(c, c.Role.Title))
			}
		}
	}

	rel := path.Join(PagesDir, TopicsDir, skill.Slug)
	entry := manifest.Entry{Slug: skill.Slug, Type: manifest.TypeTopicIndex, Path: rel}
	return entry, g.render(rel, "topic.html.tmpl", v)
}

func (g *Generator) render(rel string, name string, v view) error {
	dir := filepath.Join(g.opts.Root, filepath.FromSlash(rel))
	file := filepath.Join(dir, IndexFile)
	if g.opts.DryRun {
		g.logger.Debug().Str("path", file).Msg("dry run: skip write")
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	if err := g.tmpl.ExecuteTemplate(f, name, v); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (g *Generator) prune(stale, current []manifest.Entry) ([]string, error) {
	live := make([]string, 0, len(current))
	for _, e := range current {
		if key, ok := manifest.Key(e); ok {
			live = append(live, key)
		}
	}

	var pruned []string
	for _, e := range stale {
		key, ok := manifest.Key(e)
		if !ok {
			continue
		}
		dir := filepath.Join(g.opts.Root, filepath.FromSlash(key))
		target := dir
		// A stale page above live pages loses only its own index file.
		if hasDescendant(live, key) {
			target = filepath.Join(dir, IndexFile)
		}
		if g.opts.DryRun {
			pruned = append(pruned, target)
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			return pruned, fmt.Errorf("prune %s: %w", target, err)
		}
		g.logger.Debug().Str("path", target).Msg("pruned stale page")
		pruned = append(pruned, target)
	}
	return pruned, nil
}

func hasDescendant(keys []string, key string) bool {
	prefix := key + "/"
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

type view struct {
	Title          string
	Description    string
	Keywords       string
	Canonical      string
	SiteName       string
	Kind           models.Kind
	StructuredData any
	Company        *models.Company
	Role           *models.Role
	Skill          *models.Skill
	Related        []card
	First          []card
	Second         []card
}

type card struct {
	Label       string
	Description string
	Href        string
}

func (g *Generator) baseView(title, description, urlPath string) view {
	return view{
		Title:       title,
		Description: description,
		Canonical:   g.opts.BaseURL + urlPath,
		SiteName:    SiteName,
	}
}

func comboCard(c models.Combination, label string) card {
	info := c.Info()
	return card{Label: label, Description: info.Description, Href: pageURLPath(info.Slug)}
}

func pageURLPath(slug string) string {
	return "/" + PagesDir + "/" + slug
}

func topicURLPath(slug string) string {
	return "/" + PagesDir + "/" + TopicsDir + "/" + slug
}

func keywords(company *models.Company, role *models.Role, year int) []string {
	companyName := "tech company"
	tier := "tech"
	if company != nil {
		companyName = strings.ToLower(company.Name)
		if company.Tier != "" {
			tier = strings.ToLower(company.Tier)
		}
	}
	roleTitle := "software engineering intern"
	if role != nil {
		roleTitle = strings.ToLower(role.Title)
	}
	return []string{
		companyName + " interview questions",
		roleTitle + " interview prep",
		companyName + " coding interview",
		roleTitle + " practice questions",
		companyName + " " + roleTitle,
		"computer science internship interview",
		"technical interview preparation",
		"coding interview practice",
		fmt.Sprintf("%d internship interview questions", year),
		tier + " company interviews",
	}
}

func structuredData(combo models.Combination, canonical string) map[string]any {
	info := combo.Info()
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    info.Title,
		"description": info.Description,
		"keywords":    info.Keyword,
		"url":         canonical,
		"genre":       string(combo.Kind()),
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  SiteName,
		},
	}
	var about []map[string]string
	company, role, skill := models.Refs(combo)
	if company != nil {
		about = append(about, map[string]string{"@type": "Organization", "name": company.Name})
	}
	if role != nil {
		about = append(about, map[string]string{"@type": "Occupation", "name": role.Title})
	}
	if skill != nil {
		about = append(about, map[string]string{"@type": "DefinedTerm", "name": skill.Name})
	}
	if len(about) > 0 {
		data["about"] = about
	}
	return data
}
