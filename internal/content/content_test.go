package content

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

const aboutIT = `---
title: Chi siamo
summary: Il mercato di quartiere online
updated_at: 2025-04-30
seo:
  description: Chi c'è dietro Settimo Hub
---
# Chi siamo

Un **progetto** per i negozi di [Settimo](https://settimohub.it).

<script>alert(1)</script>
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"info/it/chi-siamo.md":    {Data: []byte(aboutIT)},
		"info/it/come-aderire.md": {Data: []byte("Scrivici su WhatsApp.\n")},
		"info/it/rotto.md":        {Data: []byte("---\ntitle: [unterminated\n---\nbody\n")},
	}
}

func TestGetRendersMarkdownAndSanitizes(t *testing.T) {
	t.Parallel()

	s := NewStore(testFS(), "it", time.Minute)
	p, err := s.Get(context.Background(), "chi-siamo", "it")
	require.NoError(t, err)
	require.Equal(t, "Chi siamo", p.Title)
	require.Equal(t, "Il mercato di quartiere online", p.Summary)
	require.Equal(t, "Chi c'è dietro Settimo Hub", p.SEO.Description)
	require.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), p.UpdatedAt)
	require.Contains(t, p.HTML, "<strong>progetto</strong>")
	require.Contains(t, p.HTML, `rel="nofollow"`)
	require.NotContains(t, p.HTML, "<script>")
}

func TestGetFallsBackToDefaultLanguage(t *testing.T) {
	t.Parallel()

	s := NewStore(testFS(), "it", time.Minute)
	p, err := s.Get(context.Background(), "come-aderire", "en")
	require.NoError(t, err)
	require.Equal(t, "it", p.Lang)
	require.Equal(t, "Come Aderire", p.Title)
}

func TestGetErrors(t *testing.T) {
	t.Parallel()

	s := NewStore(testFS(), "it", time.Minute)
	for _, slug := range []string{"", "../secret", "a/b", "missing"} {
		_, err := s.Get(context.Background(), slug, "it")
		require.True(t, errors.Is(err, ErrNotFound), slug)
	}

	_, err := s.Get(context.Background(), "rotto", "it")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestGetCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	fsys := testFS()
	s := NewStore(fsys, "it", time.Minute)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.Get(context.Background(), "come-aderire", "it")
	require.NoError(t, err)
	fsys["info/it/come-aderire.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Nuovo\n---\n")}

	p, err := s.Get(context.Background(), "come-aderire", "it")
	require.NoError(t, err)
	require.Equal(t, "Come Aderire", p.Title)

	now = now.Add(2 * time.Minute)
	p, err = s.Get(context.Background(), "come-aderire", "it")
	require.NoError(t, err)
	require.Equal(t, "Nuovo", p.Title)
}
