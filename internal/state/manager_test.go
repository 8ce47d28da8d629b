package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingKV fails the operations whose flag is set.
type failingKV struct {
	store.KV
	failGet    bool
	failSet    bool
	failRemove bool
}

var errStorage = errors.New("storage unavailable")

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errStorage
	}
	return f.KV.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errStorage
	}
	return f.KV.Set(ctx, key, value)
}

func (f *failingKV) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errStorage
	}
	return f.KV.Remove(ctx, key)
}

func openManager(t *testing.T, kv store.KV) *Manager {
	t.Helper()
	m := Open(context.Background(), kv, discardLogger())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func bulbasaur() models.Favorite {
	return models.NewFavorite("1", "bulbasaur", []models.PokemonType{{Name: "grass"}, {Name: "poison"}})
}

func TestAddRemoveFavorite(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())

	assert.False(t, m.IsFavorite("1"))
	m.AddFavorite(bulbasaur())
	assert.True(t, m.IsFavorite("1"))

	m.RemoveFavorite("1")
	assert.False(t, m.IsFavorite("1"))
	assert.Empty(t, m.Favorites())
}

func TestRemoveUnknownFavoriteIsNoop(t *testing.T) {
	kv := store.NewMemoryStore()
	m := openManager(t, kv)

	m.RemoveFavorite("404")
	require.NoError(t, m.Flush(context.Background()))

	_, ok, err := kv.Get(context.Background(), FavoritesKey)
	require.NoError(t, err)
	assert.False(t, ok, "no-op remove should not write")
}

func TestAddFavoriteReplacesSnapshotInPlace(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())

	m.AddFavorite(bulbasaur())
	m.AddFavorite(models.NewFavorite("4", "charmander", nil))
	m.AddFavorite(models.Favorite{ID: "1", Name: "bulbasaur-renamed"})

	favs := m.Favorites()
	require.Len(t, favs, 2)
	assert.Equal(t, "1", favs[0].ID)
	assert.Equal(t, "bulbasaur-renamed", favs[0].Name)
	assert.Equal(t, "4", favs[1].ID)
}

func TestFavoritesKeepInsertionOrder(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())

	for _, id := range []string{"25", "1", "150", "7"} {
		m.AddFavorite(models.Favorite{ID: id, Name: "p" + id})
	}
	m.RemoveFavorite("1")

	var ids []string
	for _, f := range m.Favorites() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"25", "150", "7"}, ids)
}

func TestFavoritesReturnsCopy(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())
	m.AddFavorite(bulbasaur())

	favs := m.Favorites()
	favs[0].Name = "mutated"

	assert.Equal(t, "bulbasaur", m.Favorites()[0].Name)
}

func TestIsFavoriteTracksLastOperation(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())
	rng := rand.New(rand.NewPCG(1, 2))
	want := map[string]bool{}

	for range 500 {
		id := strconv.Itoa(rng.IntN(8) + 1)
		if rng.IntN(2) == 0 {
			m.AddFavorite(models.Favorite{ID: id, Name: "p" + id})
			want[id] = true
		} else {
			m.RemoveFavorite(id)
			want[id] = false
		}
	}

	count := 0
	for id, fav := range want {
		assert.Equal(t, fav, m.IsFavorite(id), "id %s", id)
		if fav {
			count++
		}
	}
	assert.Len(t, m.Favorites(), count)
}

func TestClearFavorites(t *testing.T) {
	kv := store.NewMemoryStore()
	m := openManager(t, kv)
	ctx := context.Background()

	m.AddFavorite(bulbasaur())
	m.AddFavorite(models.NewFavorite("4", "charmander", nil))
	m.ClearFavorites()

	assert.False(t, m.IsFavorite("1"))
	assert.False(t, m.IsFavorite("4"))
	assert.Empty(t, m.Favorites())

	require.NoError(t, m.Flush(ctx))
	_, ok, err := kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.False(t, ok, "clear should delete the persisted key")
}

func TestClearFavoritesStorageFailure(t *testing.T) {
	kv := &failingKV{KV: store.NewMemoryStore(), failRemove: true}
	m := openManager(t, kv)

	m.AddFavorite(bulbasaur())
	m.ClearFavorites()
	require.NoError(t, m.Flush(context.Background()))

	assert.Empty(t, m.Favorites(), "memory is cleared even when storage fails")
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	kv := &failingKV{KV: store.NewMemoryStore(), failSet: true}
	m := openManager(t, kv)

	m.AddFavorite(bulbasaur())
	m.EvolvePokemon("1", "2")
	require.NoError(t, m.Flush(context.Background()))

	assert.True(t, m.IsFavorite("1"))
	assert.Equal(t, "2", m.ResolveDisplayID("1"))
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	kv := &failingKV{KV: store.NewMemoryStore(), failGet: true}
	m := openManager(t, kv)

	assert.Empty(t, m.Favorites())
	assert.Empty(t, m.Evolutions())

	m.AddFavorite(bulbasaur())
	assert.True(t, m.IsFavorite("1"))
}

func TestCorruptPayloadStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte(`{not json`)))
	require.NoError(t, kv.Set(ctx, EvolutionsKey, []byte(`[1,2]`)))

	m := openManager(t, kv)
	assert.Empty(t, m.Favorites())
	assert.Empty(t, m.Evolutions())
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	first := Open(ctx, kv, discardLogger())
	first.AddFavorite(bulbasaur())
	first.AddFavorite(models.NewFavorite("7", "squirtle", []models.PokemonType{{Name: "water"}}))
	first.EvolvePokemon("7", "8")
	require.NoError(t, first.Close())

	second := openManager(t, kv)
	favs := second.Favorites()
	require.Len(t, favs, 2)
	assert.Equal(t, bulbasaur(), favs[0])
	assert.Equal(t, []string{"water"}, favs[1].TypeNames())
	assert.Equal(t, "8", second.ResolveDisplayID("7"))
	assert.True(t, second.HasEvolved("7"))
}

func TestLoadLegacyFavorites(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte(`[{"id":"4","name":"charmander","type":"fire"}]`)))

	m := openManager(t, kv)
	favs := m.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, []models.PokemonType{{Name: "fire"}}, favs[0].Types)
	assert.Equal(t, "fire", favs[0].LegacyType)
	assert.True(t, m.IsFavorite("4"))
}

func TestLoadCollapsesDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	payload := `[
		{"id":"1","name":"old"},
		{"id":"4","name":"charmander"},
		{"id":"1","name":"new"}
	]`
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte(payload)))

	m := openManager(t, kv)
	favs := m.Favorites()
	require.Len(t, favs, 2)
	assert.Equal(t, "1", favs[0].ID)
	assert.Equal(t, "new", favs[0].Name)

	m.RemoveFavorite("1")
	assert.False(t, m.IsFavorite("1"))
}

func TestEvolvePokemon(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())

	assert.False(t, m.HasEvolved("133"))
	assert.Equal(t, "133", m.ResolveDisplayID("133"))

	m.EvolvePokemon("133", "134")
	assert.True(t, m.HasEvolved("133"))
	assert.Equal(t, "134", m.ResolveDisplayID("133"))

	m.EvolvePokemon("133", "136")
	assert.Equal(t, "136", m.ResolveDisplayID("133"), "last write wins")
	assert.False(t, m.HasEvolved("136"))
}

func TestEvolvedFrom(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())
	m.EvolvePokemon("2", "3")
	m.EvolvePokemon("1", "3")

	original, ok := m.EvolvedFrom("3")
	require.True(t, ok)
	assert.Equal(t, "1", original)

	_, ok = m.EvolvedFrom("1")
	assert.False(t, ok)
}

func TestResetEvolutions(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	m := openManager(t, kv)

	m.EvolvePokemon("1", "2")
	require.NoError(t, m.Flush(ctx))
	_, ok, err := kv.Get(ctx, EvolutionsKey)
	require.NoError(t, err)
	require.True(t, ok)

	m.ResetEvolutions()
	assert.False(t, m.HasEvolved("1"))
	assert.Equal(t, "1", m.ResolveDisplayID("1"))

	require.NoError(t, m.Flush(ctx))
	_, ok, err = kv.Get(ctx, EvolutionsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistedPayloadMatchesLastMutation(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	m := openManager(t, kv)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := strconv.Itoa(i + 1)
			m.AddFavorite(models.Favorite{ID: id, Name: "p" + id})
		}()
	}
	wg.Wait()
	require.NoError(t, m.Flush(ctx))

	raw, ok, err := kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	require.True(t, ok)

	persisted, err := upgradeFavorites(raw)
	require.NoError(t, err)
	assert.Equal(t, m.Favorites(), persisted)
}

func TestMutationsAfterCloseStayInMemory(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	m := Open(ctx, kv, discardLogger())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")

	m.AddFavorite(bulbasaur())
	assert.True(t, m.IsFavorite("1"))
	require.NoError(t, m.Flush(ctx))

	_, ok, err := kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleFavorite(t *testing.T) {
	m := openManager(t, store.NewMemoryStore())

	var wg sync.WaitGroup
	for range 9 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ToggleFavorite(bulbasaur())
		}()
	}
	wg.Wait()
	assert.True(t, m.IsFavorite("1"), "an odd number of toggles leaves it on")
	assert.Len(t, m.Favorites(), 1)

	assert.False(t, m.ToggleFavorite(bulbasaur()))
	assert.Empty(t, m.Favorites())
}

// slowKV blocks every Set until release is closed.
type slowKV struct {
	store.KV
	release chan struct{}
	sets    atomic.Int64
}

func (s *slowKV) Set(ctx context.Context, key string, value []byte) error {
	s.sets.Add(1)
	<-s.release
	return s.KV.Set(ctx, key, value)
}

func TestMutationsDoNotWaitForSlowStore(t *testing.T) {
	ctx := context.Background()
	kv := &slowKV{KV: store.NewMemoryStore(), release: make(chan struct{})}
	m := Open(ctx, kv, discardLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 200 {
			id := strconv.Itoa(i + 1)
			m.AddFavorite(models.Favorite{ID: id, Name: "p" + id})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		close(kv.release)
		<-done
		_ = m.Close()
		t.Fatal("mutations blocked on the store")
	}

	close(kv.release)
	require.NoError(t, m.Flush(ctx))
	require.NoError(t, m.Close())

	assert.LessOrEqual(t, kv.sets.Load(), int64(2), "pending writes of one key are coalesced")
	raw, ok, err := kv.KV.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	require.True(t, ok)
	persisted, err := upgradeFavorites(raw)
	require.NoError(t, err)
	assert.Len(t, persisted, 200)
}

func TestFlushAfterCoalescedWrites(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	m := openManager(t, kv)

	m.AddFavorite(bulbasaur())
	m.EvolvePokemon("1", "2")
	m.RemoveFavorite("1")
	require.NoError(t, m.Flush(ctx))

	raw, ok, err := kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))

	raw, ok, err = kv.Get(ctx, EvolutionsKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"1":"2"}`, string(raw))
}
