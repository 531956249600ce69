package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	s, err := Open(context.Background(), path, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestParseScope(t *testing.T) {
	for input, want := range map[string]Scope{"": ScopeLocal, "LOCAL": ScopeLocal, " session ": ScopeSession} {
		got, err := ParseScope(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseScope("cookie")
	assert.Error(t, err)
}

func TestPutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Put(ctx, ScopeLocal, KeyCareerRoadmapResults, []byte(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, ScopeLocal, KeyCareerRoadmapResults, []byte(`{"v":2}`)))

	e, err := s.Get(ctx, ScopeLocal, KeyCareerRoadmapResults)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, e.Value)
	assert.Equal(t, ScopeLocal, e.Scope)

	_, err = s.Get(ctx, ScopeSession, KeyCareerRoadmapResults)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Put(ctx, ScopeLocal, " ", nil))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	in := map[string][]string{"goal": {"land-internship"}}
	require.NoError(t, s.PutJSON(ctx, ScopeLocal, KeyQuestionnaireAnswers, in))

	var out map[string][]string
	require.NoError(t, s.GetJSON(ctx, ScopeLocal, KeyQuestionnaireAnswers, &out))
	assert.Equal(t, in, out)

	require.NoError(t, s.Put(ctx, ScopeLocal, "broken", []byte("{")))
	assert.Error(t, s.GetJSON(ctx, ScopeLocal, "broken", &out))
}

func TestSessionEntriesExpire(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }
	require.NoError(t, s.Put(ctx, ScopeSession, KeySystemDesignTest, []byte(`{}`)))
	require.NoError(t, s.Put(ctx, ScopeLocal, KeyQuestionnaireAnswers, []byte(`{}`)))

	s.now = func() time.Time { return start.Add(30 * time.Minute) }
	_, err := s.Get(ctx, ScopeSession, KeySystemDesignTest)
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = s.Get(ctx, ScopeSession, KeySystemDesignTest)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, ScopeLocal, KeyQuestionnaireAnswers)
	assert.NoError(t, err, "local entries never expire")

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KeyQuestionnaireAnswers, entries[0].Key)

	// Entries written in 2024 are long expired by now, so reopening drops them.
	require.NoError(t, s.Close())
	reopened, err := Open(ctx, path, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Clear(ctx, ScopeSession)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListDeleteClear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Put(ctx, ScopeSession, KeySystemDesignResponses, []byte(`[]`)))
	require.NoError(t, s.Put(ctx, ScopeSession, KeySystemDesignTest, []byte(`{}`)))
	require.NoError(t, s.Put(ctx, ScopeLocal, KeyCareerRoadmapResults, []byte(`{}`)))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ScopeLocal, all[0].Scope)

	session, err := s.List(ctx, ScopeSession)
	require.NoError(t, err)
	assert.Len(t, session, 2)

	require.NoError(t, s.Delete(ctx, ScopeSession, KeySystemDesignTest))
	assert.ErrorIs(t, s.Delete(ctx, ScopeSession, KeySystemDesignTest), ErrNotFound)

	n, err := s.Clear(ctx, ScopeSession)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
