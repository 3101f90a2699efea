// Package importer fetches a public job posting page and extracts the fields
// needed to store it as a job.
package importer

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL    = errors.New("invalid job url")
	ErrNoJobPosting  = errors.New("page does not look like a job posting")
	ErrFetchFailed   = errors.New("job page fetch failed")
	linkedInJobIDRe  = regexp.MustCompile(`/jobs/view/(?:[^/]*-)?(\d+|[A-Za-z0-9_]+)/?$`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	defaultUserAgent = "Mozilla/5.0 (compatible; jobpilot/1.0)"
)

type Posting struct {
	ExternalJobID  string
	Title          string
	Company        string
	Location       string
	Description    string
	JobURL         string
	EmploymentType string
	PostedAt       *time.Time
}

type PageImporter struct {
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

func NewPageImporter(timeout time.Duration, logger *zap.Logger) *PageImporter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageImporter{timeout: timeout, userAgent: defaultUserAgent, logger: logger.Named("importer")}
}

// jobPostingLD is the schema.org JobPosting subset most boards embed.
type jobPostingLD struct {
	Type               any    `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	DatePosted         string `json:"datePosted"`
	EmploymentType     any    `json:"employmentType"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation any `json:"jobLocation"`
}

func (p *PageImporter) Fetch(ctx context.Context, rawURL string) (Posting, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Posting{}, ErrInvalidURL
	}
	jobURL := u.String()

	c := colly.NewCollector(colly.UserAgent(p.userAgent), colly.MaxDepth(1))
	c.SetRequestTimeout(p.timeout)

	out := Posting{JobURL: jobURL, ExternalJobID: ExternalIDFromURL(u)}
	var (
		ld     *jobPostingLD
		reqErr error
	)

	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		if ld != nil {
			return
		}
		if v := parseJobPostingLD(e.Text); v != nil {
			ld = v
		}
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		out.Title = firstNonEmpty(
			e.ChildAttr(`meta[property="og:title"]`, "content"),
			e.ChildText("h1"),
			e.ChildText("title"),
		)
		out.Company = firstNonEmpty(
			e.ChildText(".topcard__org-name-link"),
			e.ChildAttr(`meta[property="og:site_name"]`, "content"),
		)
		out.Location = e.ChildText(".topcard__flavor--bullet")
		out.Description = firstNonEmpty(
			e.ChildText(".description__text"),
			e.ChildAttr(`meta[name="description"]`, "content"),
			e.ChildAttr(`meta[property="og:description"]`, "content"),
		)
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = fmt.Errorf("status=%d: %w", r.StatusCode, err)
	})

	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}
	if err := c.Visit(jobURL); err != nil {
		return Posting{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	c.Wait()
	if reqErr != nil {
		p.logger.Warn("job page fetch failed", zap.String("url", jobURL), zap.Error(reqErr))
		return Posting{}, fmt.Errorf("%w: %v", ErrFetchFailed, reqErr)
	}

	if ld != nil {
		applyLD(&out, ld)
	}
	out.Title = clean(out.Title)
	out.Company = clean(out.Company)
	out.Location = clean(out.Location)
	out.Description = clean(out.Description)

	if out.Title == "" || out.Description == "" {
		return Posting{}, ErrNoJobPosting
	}
	return out, nil
}

// ExternalIDFromURL uses the LinkedIn job id when the URL carries one and a
// stable hash of the URL otherwise.
func ExternalIDFromURL(u *url.URL) string {
	if strings.Contains(u.Host, "linkedin.com") {
		if m := linkedInJobIDRe.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	}
	sum := sha1.Sum([]byte(strings.ToLower(u.Host) + u.EscapedPath()))
	return "ext_" + hex.EncodeToString(sum[:])[:16]
}

func parseJobPostingLD(raw string) *jobPostingLD {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var single jobPostingLD
	if err := json.Unmarshal([]byte(raw), &single); err == nil && isJobPosting(single.Type) {
		return &single
	}
	var list []jobPostingLD
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		for i := range list {
			if isJobPosting(list[i].Type) {
				return &list[i]
			}
		}
	}
	return nil
}

func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func applyLD(out *Posting, ld *jobPostingLD) {
	if ld.Title != "" {
		out.Title = ld.Title
	}
	if ld.HiringOrganization.Name != "" {
		out.Company = ld.HiringOrganization.Name
	}
	if ld.Description != "" {
		out.Description = stripTags(ld.Description)
	}
	if loc := locationFromLD(ld.JobLocation); loc != "" {
		out.Location = loc
	}
	switch v := ld.EmploymentType.(type) {
	case string:
		out.EmploymentType = v
	case []any:
		if len(v) > 0 {
			out.EmploymentType, _ = v[0].(string)
		}
	}
	if ld.DatePosted != "" {
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, ld.DatePosted); err == nil {
				t = t.UTC()
				out.PostedAt = &t
				break
			}
		}
	}
}

func locationFromLD(v any) string {
	switch loc := v.(type) {
	case []any:
		if len(loc) > 0 {
			return locationFromLD(loc[0])
		}
	case map[string]any:
		addr, _ := loc["address"].(map[string]any)
		if addr == nil {
			return ""
		}
		parts := make([]string, 0, 2)
		for _, k := range []string{"addressLocality", "addressCountry"} {
			if s, ok := addr[k].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

func clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
