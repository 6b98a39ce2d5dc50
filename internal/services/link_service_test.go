package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pvlink/pvlink/internal/models"
	"github.com/pvlink/pvlink/internal/repository"
)

func newTestService(t *testing.T) *LinkService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Link{}, &models.LinkCountryClick{}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLinkService(repository.NewLinkRepository(db), log)
}

func TestLinkServiceCreateWithExpiration(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Unix()
	created, err := svc.Create(ctx, "abc123", "https://example.com", &exp)
	require.NoError(t, err)
	require.True(t, created)

	links, err := svc.Page(ctx, 1)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.NotNil(t, links[0].ExpiresAt)
	require.Equal(t, exp, links[0].ExpiresAt.Unix())
}

func TestLinkServiceCreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "abc123", "https://example.com", nil)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Create(ctx, "abc123", "https://other.example.com", nil)
	require.NoError(t, err)
	require.False(t, created)
}

func TestLinkServiceDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "abc123", "https://example.com", nil)
	require.NoError(t, err)

	links, err := svc.Page(ctx, 1)
	require.NoError(t, err)
	require.Len(t, links, 1)

	deleted, err := svc.Delete(ctx, links[0].ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = svc.Delete(ctx, links[0].ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestResolveRedirect(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, "live", "https://example.com/live", nil)
	require.NoError(t, err)

	past := now.Add(-time.Minute).Unix()
	_, err = svc.Create(ctx, "stale", "https://example.com/stale", &past)
	require.NoError(t, err)

	link, ok, err := svc.ResolveRedirect(ctx, "live", now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://example.com/live", link.LongURL)

	_, ok, err = svc.ResolveRedirect(ctx, "stale", now)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = svc.ResolveRedirect(ctx, "missing", now)
	require.NoError(t, err)
	require.False(t, ok)
}
