package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jimezsa/prepsite/internal/catalog"
)

const (
	// SitemapFileName is the sitemap's name inside the output root.
	SitemapFileName = "sitemap.xml"
	sitemapXMLNS    = "http://www.sitemaps.org/schemas/sitemap/0.9"
	dateOnlyFormat  = "2006-01-02"

	priorityIndex = "0.9"
	priorityPage  = "0.8"
)

// SitemapURL is one location listed in the sitemap.
type SitemapURL struct {
	Loc      string
	Priority string
}

// SitemapEntry is a <url> element as written to or read from disk.
type SitemapEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type xmlURLSet struct {
	XMLName xml.Name       `xml:"urlset"`
	XMLNS   string         `xml:"xmlns,attr,omitempty"`
	URLs    []SitemapEntry `xml:"url"`
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// SitemapURLs lists the home page, the hub, every company index, every topic
// index and every combination page, in that order.
func SitemapURLs(baseURL string, cat *catalog.Catalog) []SitemapURL {
	base := NormalizeBaseURL(baseURL)
	companies := cat.Companies()
	skills := cat.Skills()
	combos := cat.Combinations()

	urls := make([]SitemapURL, 0, 2+len(companies)+len(skills)+len(combos))
	urls = append(urls,
		SitemapURL{Loc: base, Priority: priorityIndex},
		SitemapURL{Loc: base + "/" + PagesDir, Priority: priorityIndex},
	)
	for _, company := range companies {
		urls = append(urls, SitemapURL{Loc: base + pageURLPath(company.Slug), Priority: priorityPage})
	}
	for _, skill := range skills {
		urls = append(urls, SitemapURL{Loc: base + topicURLPath(skill.Slug), Priority: priorityPage})
	}
	for _, combo := range combos {
		urls = append(urls, SitemapURL{Loc: base + pageURLPath(combo.Info().Slug), Priority: priorityPage})
	}
	return urls
}

// WriteSitemap serializes urls as a sitemap, stamping every entry with the
// date of now.
func WriteSitemap(w io.Writer, urls []SitemapURL, changeFreq string, now time.Time) error {
	if strings.TrimSpace(changeFreq) == "" {
		changeFreq = DefaultChangeFreq
	}
	lastMod := now.UTC().Format(dateOnlyFormat)

	set := xmlURLSet{XMLNS: sitemapXMLNS, URLs: make([]SitemapEntry, 0, len(urls))}
	for _, u := range urls {
		set.URLs = append(set.URLs, SitemapEntry{
			Loc:        u.Loc,
			LastMod:    lastMod,
			ChangeFreq: changeFreq,
			Priority:   u.Priority,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteSitemapFile writes the sitemap to path.
func WriteSitemapFile(path string, urls []SitemapURL, changeFreq string, now time.Time) error {
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, urls, changeFreq, now); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadSitemap parses a sitemap document.
func ReadSitemap(r io.Reader) ([]SitemapEntry, error) {
	var set xmlURLSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}
	return set.URLs, nil
}

// ReadSitemapFile parses the sitemap at path.
func ReadSitemapFile(path string) ([]SitemapEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSitemap(f)
}
