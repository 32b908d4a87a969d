package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DefaultFileName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewTokenStore(first, "").Save(ctx, &domain.OAuthToken{AccessToken: "a"}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	tok, err := NewTokenStore(second, "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
}

func TestTokenStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenStore(newTestStore(t), "work")
	expiry := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)

	_, err := tokens.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, tokens.Save(ctx, &domain.OAuthToken{
		AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry,
	}))
	require.NoError(t, tokens.Save(ctx, &domain.OAuthToken{
		AccessToken: "at-2", RefreshToken: "rt-2", TokenType: "Bearer", Expiry: expiry,
	}))

	tok, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at-2", tok.AccessToken)
	assert.Equal(t, "rt-2", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}

func TestTokenStore_ProfilesAreSeparate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := NewTokenStore(store, "a")
	b := NewTokenStore(store, "b")

	require.NoError(t, a.Save(ctx, &domain.OAuthToken{AccessToken: "token-a"}))

	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStore_Delete(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenStore(newTestStore(t), "")

	require.NoError(t, tokens.Delete(ctx), "deleting a missing token is not an error")
	require.NoError(t, tokens.Save(ctx, &domain.OAuthToken{AccessToken: "at"}))
	require.NoError(t, tokens.Delete(ctx))

	_, err := tokens.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStore_SaveRejectsEmpty(t *testing.T) {
	tokens := NewTokenStore(newTestStore(t), "")

	err := tokens.Save(context.Background(), &domain.OAuthToken{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSyncHistoryStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	history := NewSyncHistoryStore(newTestStore(t))
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, history.Record(ctx, domain.SyncRun{
			ID:         id,
			TeamID:     "team-1",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Created:    i,
			Updated:    1,
			DryRun:     i == 1,
		}))
	}

	runs, err := history.List(ctx, 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, 2, runs[0].Created)
	assert.Equal(t, "r2", runs[1].ID)
	assert.True(t, runs[1].DryRun)
	assert.True(t, base.Add(2*time.Hour).Equal(runs[0].StartedAt))
}

func TestSyncHistoryStore_RecordsError(t *testing.T) {
	ctx := context.Background()
	history := NewSyncHistoryStore(newTestStore(t))

	require.NoError(t, history.Record(ctx, domain.SyncRun{
		ID: "r1", TeamID: "t", StartedAt: time.Now(), Failed: 2, Error: "conflict",
	}))

	runs, err := history.List(ctx, 0)

	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Failed)
	assert.Equal(t, "conflict", runs[0].Error)
	assert.True(t, runs[0].FinishedAt.IsZero())
}

func TestSyncHistoryStore_RequiresID(t *testing.T) {
	history := NewSyncHistoryStore(newTestStore(t))

	err := history.Record(context.Background(), domain.SyncRun{TeamID: "t"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
