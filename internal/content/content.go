// Package content serves localized markdown info pages (about, how to join).
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no language variant of a page exists.
var ErrNotFound = errors.New("content: not found")

const (
	infoKind        = "info"
	defaultCacheTTL = 5 * time.Minute
)

// Page is a rendered info page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	HTML      string
	UpdatedAt time.Time
	SEO       SEO
}

// SEO holds optional metadata overrides from front matter.
type SEO struct {
	Title       string
	Description string
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Lang      string `yaml:"lang"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Store reads info/<lang>/<slug>.md from a file system and caches rendered pages.
type Store struct {
	fsys     fs.FS
	fallback string
	ttl      time.Duration
	now      func() time.Time
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewStore returns a Store over fsys. Pages missing in the requested language
// fall back to fallbackLang. A non-positive ttl uses five minutes.
func NewStore(fsys fs.FS, fallbackLang string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Store{
		fsys:     fsys,
		fallback: fallbackLang,
		ttl:      ttl,
		now:      time.Now,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   newPagePolicy(),
		items:    map[string]cacheEntry{},
	}
}

// Get returns the page for slug in lang.
func (s *Store) Get(ctx context.Context, slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	key := lang + "|" + slug
	if p, ok := s.cached(key); ok {
		return p, nil
	}

	priority := []string{lang}
	if s.fallback != "" && s.fallback != lang {
		priority = append(priority, s.fallback)
	}
	for _, candidate := range priority {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		if candidate == "" {
			continue
		}
		p, err := s.read(slug, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		s.store(key, p)
		return p, nil
	}
	return Page{}, ErrNotFound
}

func (s *Store) read(slug, lang string) (Page, error) {
	name := path.Join(infoKind, lang, slug+".md")
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", name, err)
		}
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", name, err)
	}
	p := Page{
		Slug:      slug,
		Lang:      firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		HTML:      s.policy.Sanitize(buf.String()),
		UpdatedAt: parseDate(front.UpdatedAt),
		SEO: SEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
		},
	}
	if p.Title == "" {
		p.Title = prettifySlug(slug)
	}
	return p, nil
}

func (s *Store) cached(key string) (Page, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (s *Store) store(key string, p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = cacheEntry{page: p, expires: s.now().Add(s.ttl)}
}

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
