package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Problem is one defect found in a generated tree.
type Problem struct {
	Page   string `json:"page"`
	Href   string `json:"href,omitempty"`
	Reason string `json:"reason"`
}

func (p Problem) String() string {
	if p.Href == "" {
		return fmt.Sprintf("%s: %s", p.Page, p.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", p.Page, p.Reason, p.Href)
}

// Check verifies the tree under root. Every sitemap location under baseURL
// must have a page, every internal link in a page must resolve, and every
// JSON-LD block must parse. The home page is not generated and is skipped.
func Check(root string, baseURL string) ([]Problem, error) {
	base := NormalizeBaseURL(baseURL)
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	c := checker{root: root, base: base, exists: map[string]bool{}}

	sitemapPath := filepath.Join(root, SitemapFileName)
	entries, err := ReadSitemapFile(sitemapPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.add(Problem{Page: SitemapFileName, Reason: "sitemap missing"})
	case err != nil:
		c.add(Problem{Page: SitemapFileName, Reason: err.Error()})
	default:
		for _, e := range entries {
			c.checkSitemapEntry(e)
		}
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != IndexFile {
			return nil
		}
		return c.checkPage(p)
	})
	if err != nil {
		return c.problems, err
	}

	sort.SliceStable(c.problems, func(i, j int) bool {
		return c.problems[i].Page < c.problems[j].Page
	})
	return c.problems, nil
}

type checker struct {
	root     string
	base     string
	exists   map[string]bool
	problems []Problem
}

func (c *checker) add(p Problem) {
	c.problems = append(c.problems, p)
}

func (c *checker) checkSitemapEntry(e SitemapEntry) {
	loc := strings.TrimSpace(e.Loc)
	if !strings.HasPrefix(loc, c.base) {
		c.add(Problem{Page: SitemapFileName, Href: loc, Reason: "location outside base url"})
		return
	}
	rel := strings.Trim(strings.TrimPrefix(loc, c.base), "/")
	if rel == "" {
		return
	}
	if !c.resolves(rel) {
		c.add(Problem{Page: SitemapFileName, Href: loc, Reason: "no page for sitemap location"})
	}
}

func (c *checker) checkPage(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	page, err := filepath.Rel(c.root, file)
	if err != nil {
		page = file
	}
	page = filepath.ToSlash(page)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		rel, ok := c.internalPath(href)
		if !ok {
			return
		}
		if !c.resolves(rel) {
			c.add(Problem{Page: page, Href: href, Reason: "broken internal link"})
		}
	})

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			c.add(Problem{Page: page, Reason: "empty structured data"})
			return
		}
		var v map[string]any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			c.add(Problem{Page: page, Reason: "invalid structured data: " + err.Error()})
		}
	})

	return nil
}

// internalPath returns the root-relative path of a link into the pages
// directory, for relative links and absolute links under the base url.
func (c *checker) internalPath(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, c.base+"/") {
		href = strings.TrimPrefix(href, c.base)
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := path.Clean("/" + u.Path)
	if p != "/"+PagesDir && !strings.HasPrefix(p, "/"+PagesDir+"/") {
		return "", false
	}
	return strings.TrimPrefix(p, "/"), true
}

func (c *checker) resolves(rel string) bool {
	if ok, cached := c.exists[rel]; cached {
		return ok
	}
	info, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(rel), IndexFile))
	ok := err == nil && !info.IsDir()
	c.exists[rel] = ok
	return ok
}
