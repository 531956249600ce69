package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimezsa/prepsite/internal/config"
	"github.com/jimezsa/prepsite/internal/export"
	"github.com/jimezsa/prepsite/internal/questionnaire"
	"github.com/jimezsa/prepsite/internal/store"
	"github.com/jimezsa/prepsite/internal/ui"
	"github.com/rs/zerolog"
)

const testDataset = `
companies:
  - {name: Acme, slug: acme, tier: Startup}
  - {name: Globex, slug: globex, tier: Enterprise}
roles:
  - {title: SWE Intern, slug: swe-intern}
  - {title: Data Intern, slug: data-intern}
skills:
  - {name: Algorithms, slug: algorithms, question_count: 40}
`

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(dataPath, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = "https://example.com"
	cfg.DataPath = dataPath
	cfg.OutputDir = filepath.Join(dir, "public")
	cfg.CachePath = filepath.Join(dir, "cache.db")
	cfg.ChangeFreq = "weekly"

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Context{
		Ctx:       context.Background(),
		In:        strings.NewReader(""),
		Out:       out,
		Err:       errOut,
		UI:        ui.New(out, errOut, ui.ColorNever, true),
		Config:    cfg,
		ConfigDir: filepath.Join(dir, "config"),
		Logger:    zerolog.Nop(),
	}, out
}

func TestResolveFormat(t *testing.T) {
	ctx, _ := newTestContext(t)

	got, err := resolveFormat(ctx, "", "")
	if err != nil || got != export.FormatCSV {
		t.Fatalf("non-tty default = %q, %v", got, err)
	}
	got, _ = resolveFormat(ctx, "md", "out.md")
	if got != export.FormatMarkdown {
		t.Fatalf("explicit format = %q", got)
	}
	ctx.PlainText = true
	got, _ = resolveFormat(ctx, "json", "")
	if got != export.FormatTSV {
		t.Fatalf("--plain should win, got %q", got)
	}
	ctx.JSONOutput = true
	got, _ = resolveFormat(ctx, "csv", "")
	if got != export.FormatJSON {
		t.Fatalf("--json should win, got %q", got)
	}
	ctx.JSONOutput, ctx.PlainText = false, false
	if _, err := resolveFormat(ctx, "xml", ""); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestFirstNonEmptyAndDefaultInt(t *testing.T) {
	if got := firstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("firstNonEmpty = %q", got)
	}
	if got := defaultInt(0, 6); got != 6 {
		t.Fatalf("defaultInt(0) = %d", got)
	}
	if got := defaultInt(-1, 6); got != -1 {
		t.Fatalf("defaultInt(-1) = %d", got)
	}
}

func TestGenerateThenCheck(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.JSONOutput = true

	if err := (&GenerateCmd{}).Run(ctx); err != nil {
		t.Fatalf("generate: %v", err)
	}
	var summary generateSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out.String())
	}
	if summary.Pages != 12 || summary.CompanyIndexes != 2 || summary.TopicIndexes != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.SitemapURLs != 2+2+1+12 {
		t.Fatalf("sitemap urls = %d", summary.SitemapURLs)
	}

	out.Reset()
	if err := (&CheckCmd{}).Run(ctx); err != nil {
		t.Fatalf("check clean tree: %v\n%s", err, out.String())
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("expected no problems, got %s", out.String())
	}

	if err := os.RemoveAll(filepath.Join(ctx.Config.OutputDir, "internships", "acme-data-intern")); err != nil {
		t.Fatalf("remove page: %v", err)
	}
	out.Reset()
	if err := (&CheckCmd{}).Run(ctx); err == nil {
		t.Fatalf("expected check to fail after removing a page")
	}
	if !strings.Contains(out.String(), "acme-data-intern") {
		t.Fatalf("problems do not name the missing page: %s", out.String())
	}
}

func TestGeneratePruneSmallerDataset(t *testing.T) {
	ctx, _ := newTestContext(t)
	if err := (&GenerateCmd{}).Run(ctx); err != nil {
		t.Fatalf("generate: %v", err)
	}

	smaller := filepath.Join(t.TempDir(), "small.yaml")
	body := strings.Replace(testDataset, "  - {name: Globex, slug: globex, tier: Enterprise}\n", "", 1)
	if err := os.WriteFile(smaller, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	cmd := &GenerateCmd{Prune: true}
	cmd.Data = smaller
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("generate --prune: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Config.OutputDir, "internships", "globex-swe-intern")); !os.IsNotExist(err) {
		t.Fatalf("stale page still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.Config.OutputDir, "internships", "acme-swe-intern", "index.html")); err != nil {
		t.Fatalf("current page missing: %v", err)
	}
}

func TestGenerateNegativeRelatedLimit(t *testing.T) {
	ctx, out := newTestContext(t)
	page := filepath.Join(ctx.Config.OutputDir, "internships", "acme-swe-intern", "index.html")

	if err := (&GenerateCmd{}).Run(ctx); err != nil {
		t.Fatalf("generate: %v", err)
	}
	body, err := os.ReadFile(page)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(body), `class="related"`) {
		t.Fatalf("expected related links with the configured limit")
	}
	sitemap := filepath.Join(ctx.Config.OutputDir, "sitemap.xml")
	if !strings.Contains(out.String(), "Sitemap: "+sitemap+" (") {
		t.Fatalf("expected sitemap path in output, got %s", out.String())
	}

	if err := (&GenerateCmd{RelatedLimit: -1}).Run(ctx); err != nil {
		t.Fatalf("generate --related-limit -1: %v", err)
	}
	body, err = os.ReadFile(page)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if strings.Contains(string(body), `class="related"`) {
		t.Fatalf("expected no related links, got %s", body)
	}
}

func TestSitemapToStdout(t *testing.T) {
	ctx, out := newTestContext(t)
	if err := (&SitemapCmd{Output: "-"}).Run(ctx); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	body := out.String()
	if !strings.Contains(body, "<loc>https://example.com/internships/acme-swe-intern-algorithms</loc>") {
		t.Fatalf("sitemap missing triple page:\n%s", body)
	}
	if got := strings.Count(body, "<url>"); got != 17 {
		t.Fatalf("sitemap has %d urls, want 17", got)
	}
}

func TestCombosFilterAndOutput(t *testing.T) {
	ctx, out := newTestContext(t)
	path := filepath.Join(t.TempDir(), "combos.csv")

	if err := (&CombosCmd{Type: "role-skill", Output: path}).Run(ctx); err != nil {
		t.Fatalf("combos: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[1], "https://example.com/internships/swe-intern-algorithms") {
		t.Fatalf("row missing url: %s", lines[1])
	}
	if !strings.Contains(out.String(), "Wrote 2 combinations") {
		t.Fatalf("missing summary: %s", out.String())
	}

	if err := (&CombosCmd{Type: "nope"}).Run(ctx); err == nil {
		t.Fatalf("expected unknown type error")
	}

	guard := &CombosCmd{Output: ctx.Config.DataPath}
	if err := guard.Run(ctx); err == nil {
		t.Fatalf("expected refusal to overwrite the dataset")
	}
}

func TestRelated(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.JSONOutput = true

	if err := (&RelatedCmd{Slug: "acme-swe-intern", Limit: 3}).Run(ctx); err != nil {
		t.Fatalf("related: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) == 0 || len(records) > 3 {
		t.Fatalf("unexpected related count %d", len(records))
	}
	for _, rec := range records {
		if rec["slug"] == "acme-swe-intern" {
			t.Fatalf("related list contains the target")
		}
	}

	err := (&RelatedCmd{Slug: "missing"}).Run(ctx)
	if !errors.Is(err, errUnknownSlug) {
		t.Fatalf("expected errUnknownSlug, got %v", err)
	}
}

func TestPreviewRouter(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "internships", "acme-swe-intern")
	if err := os.MkdirAll(page, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(page, "index.html"), []byte("<h1>acme</h1>"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sitemap.xml"), []byte("<urlset/>"), 0o644); err != nil {
		t.Fatalf("write sitemap: %v", err)
	}

	router := newPreviewRouter(root, zerolog.Nop())
	cases := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/internships/acme-swe-intern", http.StatusOK, "<h1>acme</h1>"},
		{http.MethodGet, "/sitemap.xml", http.StatusOK, "<urlset/>"},
		{http.MethodGet, "/internships/missing", http.StatusNotFound, "not found"},
		{http.MethodGet, "/../../etc/passwd", http.StatusNotFound, ""},
		{http.MethodGet, "/", http.StatusFound, ""},
		{http.MethodPost, "/sitemap.xml", http.StatusMethodNotAllowed, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: status %d, want %d", tc.method, tc.path, rec.Code, tc.status)
		}
		if tc.body != "" && !strings.Contains(rec.Body.String(), tc.body) {
			t.Fatalf("%s %s: body %q", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestRunWizardScripted(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.In = strings.NewReader(strings.Join([]string{
		"",    // nothing selected yet
		"9",   // out of range
		"1",   // land-internship
		"",
		"1 2", // technical, behavioral
		"b",   // back to goal
		"",
		"2",   // toggle behavioral off
		"",
		"2",   // student
		"",
		"3",   // 1-3-months
		"",
		"3,5", // system-design, nerves
		"",
	}, "\n") + "\n")

	wizard := questionnaire.NewWizard(questionnaire.Steps())
	if err := runWizard(ctx, wizard); err != nil {
		t.Fatalf("runWizard: %v", err)
	}
	sub, err := wizard.Answers().Submission()
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if sub.Goal != "land-internship" || sub.Experience != "student" || sub.Timeline != "1-3-months" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if strings.Join(sub.InterviewType, ",") != "technical" {
		t.Fatalf("interview types = %v", sub.InterviewType)
	}
	if strings.Join(sub.WeakestArea, ",") != "system-design,nerves" {
		t.Fatalf("weakest areas = %v", sub.WeakestArea)
	}
	if !strings.Contains(out.String(), "[1/5]") {
		t.Fatalf("prompt missing step counter")
	}
}

func TestRunWizardInputEnds(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.In = strings.NewReader("1\n")
	err := runWizard(ctx, questionnaire.NewWizard(questionnaire.Steps()))
	if !errors.Is(err, errInputEnded) {
		t.Fatalf("expected errInputEnded, got %v", err)
	}

	ctx.In = strings.NewReader("q\n")
	err = runWizard(ctx, questionnaire.NewWizard(questionnaire.Steps()))
	if !errors.Is(err, errQuestionnaireCancelled) {
		t.Fatalf("expected errQuestionnaireCancelled, got %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	ctx, out := newTestContext(t)

	if err := (&CachePutCmd{Key: "note", Value: "hello", Scope: "local"}).Run(ctx); err != nil {
		t.Fatalf("put: %v", err)
	}
	ctx.In = strings.NewReader(`{"step":2}`)
	if err := (&CachePutCmd{Key: store.KeySystemDesignResponses, Value: "-", Scope: "session"}).Run(ctx); err != nil {
		t.Fatalf("put stdin: %v", err)
	}

	out.Reset()
	if err := (&CacheGetCmd{Key: "note", Scope: "local"}).Run(ctx); err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out.String()) != "hello" {
		t.Fatalf("get = %q", out.String())
	}

	out.Reset()
	ctx.JSONOutput = true
	if err := (&CacheListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []store.Entry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx.JSONOutput = false

	if err := (&CacheClearCmd{Session: true}).Run(ctx); err != nil {
		t.Fatalf("clear --session: %v", err)
	}
	err := (&CacheGetCmd{Key: store.KeySystemDesignResponses, Scope: "session"}).Run(ctx)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("session entry survived clear: %v", err)
	}

	if err := (&CacheDeleteCmd{Key: "note", Scope: "local"}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := (&CacheDeleteCmd{Key: "note", Scope: "local"}).Run(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestResultsCommand(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.UI = ui.New(out, out, ui.ColorNever, true)

	envelope := `{"success":true,"analysis":{"overallScore":82,"summary":"On track.","careerPath":{"phases":[{"title":"Intern","timeframe":"0-6 months"}]}}}`
	if err := (&CachePutCmd{Key: store.KeyCareerRoadmapResults, Value: envelope, Scope: "local"}).Run(ctx); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	out.Reset()
	if err := (&ResultsCmd{Consume: true}).Run(ctx); err != nil {
		t.Fatalf("results: %v", err)
	}
	body := out.String()
	for _, want := range []string{"82%", "Highly Achievable", "On track.", "Intern (0-6 months)"} {
		if !strings.Contains(body, want) {
			t.Fatalf("output missing %q:\n%s", want, body)
		}
	}

	out.Reset()
	if err := (&ResultsCmd{}).Run(ctx); err != nil {
		t.Fatalf("results after consume: %v", err)
	}
	if !strings.Contains(out.String(), "No results data available.") {
		t.Fatalf("expected no-data message, got %s", out.String())
	}

	file := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(file, []byte(`{"unexpected":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out.Reset()
	ctx.JSONOutput = true
	if err := (&ResultsCmd{File: file, Consume: true}).Run(ctx); err != nil {
		t.Fatalf("results --file: %v", err)
	}
	var decoded resultsOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Shape != "unrecognized" || decoded.Analysis != nil || decoded.Consumed {
		t.Fatalf("unexpected output: %+v", decoded)
	}
}

func TestInitConfigUsesConfigDir(t *testing.T) {
	ctx, out := newTestContext(t)
	if err := (&InitConfigCmd{}).Run(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctx.ConfigDir, config.ConfigFileName)); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	out.Reset()
	if err := (&InitConfigCmd{}).Run(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out.String(), "already initialized") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
