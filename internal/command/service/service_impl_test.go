package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/TechharaInc/Tanaka/internal/command/domain"
	"github.com/TechharaInc/Tanaka/internal/command/repository"
	"github.com/TechharaInc/Tanaka/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (domain.Store, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Command{}))

	return New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()}), conn
}

func responses(items []domain.Command) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Response)
	}
	sort.Strings(out)
	return out
}

func TestInsertKeepsEveryVariant(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	want := []string{"hello", "hi", "hola", "hi"}
	for _, r := range want {
		require.NoError(t, store.Insert(ctx, "G1", "greet", r, "u1"))
	}

	items, err := store.Lookup(ctx, "G1", "greet")
	require.NoError(t, err)
	require.Len(t, items, len(want))

	sorted := append([]string(nil), want...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, responses(items))

	ids := map[int64]bool{}
	for _, item := range items {
		assert.Equal(t, "G1", item.GuildID)
		assert.Equal(t, "greet", item.Name)
		assert.Equal(t, "u1", item.CreatedBy)
		assert.False(t, item.CreatedAt.IsZero())
		assert.False(t, ids[item.ID], "ids are unique")
		ids[item.ID] = true
	}
}

func TestLookupIsScopedAndCaseSensitive(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "G1", "hi", "hello", "u1"))
	require.NoError(t, store.Insert(ctx, "G2", "hi", "other guild", "u1"))

	items, err := store.Lookup(ctx, "G1", "HI")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = store.Lookup(ctx, "G1", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, responses(items))

	items, err = store.Lookup(ctx, "G3", "hi")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNonASCIIRoundtrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	name := "おはよう"
	response := "おはようございます 🌅\n二行目"
	require.NoError(t, store.Insert(ctx, "G1", name, response, "ユーザー"))

	items, err := store.Lookup(ctx, "G1", name)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, response, items[0].Response)
	assert.Equal(t, "ユーザー", items[0].CreatedBy)
}

func TestDeleteRemovesAllRowsAndIsIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "G1", "greet", "hi", "u1"))
	require.NoError(t, store.Insert(ctx, "G1", "greet", "hola", "u2"))
	require.NoError(t, store.Insert(ctx, "G1", "other", "keep", "u1"))

	deleted, err := store.Delete(ctx, "G1", "greet")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = store.Delete(ctx, "G1", "greet")
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	items, err := store.Lookup(ctx, "G1", "other")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestBackendFailureIsStorageError(t *testing.T) {
	store, conn := setupStore(t)
	ctx := context.Background()

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = store.Insert(ctx, "G1", "hi", "hello", "u1")
	assert.True(t, errors.Is(err, domain.ErrStorage))

	_, err = store.Lookup(ctx, "G1", "hi")
	assert.True(t, errors.Is(err, domain.ErrStorage))

	_, err = store.Delete(ctx, "G1", "hi")
	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestRejectsEmptyKey(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, "", "hi", "hello", "u1"), domain.ErrInvalidGuild)
	_, err := store.Lookup(ctx, "G1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}
