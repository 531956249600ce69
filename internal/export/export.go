package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/prepsite/internal/models"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// ParseFormat accepts the names listed above plus "markdown".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatCSV):
		return FormatCSV, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "markdown":
		return FormatMarkdown, nil
	case string(FormatTSV):
		return FormatTSV, nil
	}
	return "", fmt.Errorf("unsupported format: %s", value)
}

type WriteOptions struct {
	BaseURL      string
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func WriteRecords(w io.Writer, records []models.Record, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatCSV:
		return writeCSV(w, records, ',', opts)
	case FormatTSV:
		return writeCSV(w, records, '\t', opts)
	case FormatMarkdown:
		return writeMarkdown(w, records, opts)
	default:
		return writeTable(w, records, opts)
	}
}

// PageURL is the absolute URL of a record's landing page, or empty when no
// base URL is set.
func PageURL(baseURL string, slug string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" || strings.TrimSpace(slug) == "" {
		return ""
	}
	return base + "/internships/" + strings.TrimSpace(slug)
}

func writeJSON(w io.Writer, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []models.Record, delim rune, opts WriteOptions) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(csvRow(rec, opts)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, records []models.Record, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(tableRow(rec, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, records []models.Record, opts WriteOptions) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, rec := range records {
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(rec.Title), rec.Type),
			fmt.Sprintf("  Slug: %s", safe(rec.Slug)),
		}
		if link := PageURL(opts.BaseURL, rec.Slug); link != "" {
			lines = append(lines, fmt.Sprintf("  URL: [Open page](<%s>)", link))
		}
		if rec.Keyword != "" {
			lines = append(lines, fmt.Sprintf("  Keyword: %s", safe(rec.Keyword)))
		}
		if rec.Description != "" {
			lines = append(lines, fmt.Sprintf("  Summary: %s", safe(rec.Description)))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"type",
		"slug",
		"title",
		"keyword",
		"description",
		"company",
		"role",
		"skill",
		"url",
	}
}

func csvRow(rec models.Record, opts WriteOptions) []string {
	return []string{
		string(rec.Type),
		rec.Slug,
		rec.Title,
		rec.Keyword,
		rec.Description,
		rec.Company,
		rec.Role,
		rec.Skill,
		PageURL(opts.BaseURL, rec.Slug),
	}
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"type",
		"slug",
		"title",
		"url",
	}
}

func tableRow(rec models.Record, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	link := PageURL(opts.BaseURL, rec.Slug)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		if opts.ColorEnabled {
			displayURL = output.String(displayURL).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		string(rec.Type),
		safe(rec.Slug),
		safe(rec.Title),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
