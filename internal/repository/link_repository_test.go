package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pvlink/pvlink/internal/models"
)

func TestLinkCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	result, err := repo.Create(ctx, "abc123", "https://example.com/long", &expires)
	require.NoError(t, err)
	assert.Equal(t, Created, result)

	link, err := repo.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/long", link.LongURL)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, expires.Unix(), link.ExpiresAt.Unix())
}

func TestLinkCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	result, err := repo.Create(ctx, "abc123", "https://example.com/first", nil)
	require.NoError(t, err)
	require.Equal(t, Created, result)

	result, err = repo.Create(ctx, "abc123", "https://example.com/second", nil)
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, result)

	// The losing create must not have written a row.
	var count int64
	require.NoError(t, db.Model(&models.Link{}).Where("short_code = ?", "abc123").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	link, err := repo.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/first", link.LongURL)
}

func TestLinkCreateLosesRaceToConcurrentInsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	// Slip a conflicting row in on the same connection after the
	// in-transaction existence check has passed but before the insert
	// runs. This is exactly what a concurrent create landing first looks
	// like; the unique index on short_code must arbitrate.
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("conflicting_insert", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "links" {
			return
		}
		injected = true
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO links (short_code, long_url, created_at, click_count) VALUES (?, ?, ?, 0)",
			"dup123", "https://example.com/winner", time.Now())
		require.NoError(t, execErr)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Create().Remove("conflicting_insert") })

	// The losing create must report AlreadyExists, not Created and not an
	// error: exactly one of two simultaneous creates wins.
	result, err := repo.Create(ctx, "dup123", "https://example.com/loser", nil)
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, result)

	var count int64
	require.NoError(t, db.Model(&models.Link{}).Where("short_code = ?", "dup123").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	link, err := repo.FindByShortCode(ctx, "dup123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/winner", link.LongURL)
}

func TestLinkDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "abc123", "https://example.com", nil)
	require.NoError(t, err)
	link, err := repo.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)

	result, err := repo.Delete(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, Deleted, result)

	_, err = repo.FindByShortCode(ctx, "abc123")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLinkDeleteNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)

	result, err := repo.Delete(context.Background(), 9999)
	require.NoError(t, err)
	assert.Equal(t, NotFound, result)

	var count int64
	require.NoError(t, db.Model(&models.Link{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLinkPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("code%02d", i), fmt.Sprintf("https://example.com/%d", i), nil)
		require.NoError(t, err)
	}

	page1, err := repo.ListPage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page1, PageSize)
	assert.Equal(t, "code00", page1[0].ShortCode)

	page3, err := repo.ListPage(ctx, 3)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	assert.Equal(t, "code24", page3[4].ShortCode)

	// Page defaults to 1 for out-of-range values.
	defaulted, err := repo.ListPage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, page1, defaulted)

	pages, err := repo.CountPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestLinkCountPagesEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)

	pages, err := repo.CountPages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestLinkClicks(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "abc123", "https://example.com", nil)
	require.NoError(t, err)
	link, err := repo.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)

	clicks, ok, err := repo.Clicks(ctx, link.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 0, clicks)

	_, ok, err = repo.Clicks(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkCountryClicks(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "abc123", "https://example.com", nil)
	require.NoError(t, err)
	link, err := repo.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)

	buckets, err := repo.CountryClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Empty(t, buckets)

	require.NoError(t, db.Create(&models.LinkCountryClick{LinkID: link.ID, CountryCode: "FR", ClickCount: 3}).Error)
	require.NoError(t, db.Create(&models.LinkCountryClick{LinkID: link.ID, CountryCode: "DE", ClickCount: 1}).Error)

	buckets, err = repo.CountryClicks(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, CountryClicks{Country: "DE", Clicks: 1}, buckets[0])
	assert.Equal(t, CountryClicks{Country: "FR", Clicks: 3}, buckets[1])
}

func TestLinkPurgeExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	_, err := repo.Create(ctx, "stale", "https://example.com/stale", &past)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "fresh", "https://example.com/fresh", &future)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "forever", "https://example.com/forever", nil)
	require.NoError(t, err)

	stale, err := repo.FindByShortCode(ctx, "stale")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.LinkCountryClick{LinkID: stale.ID, CountryCode: "FR", ClickCount: 2}).Error)

	purged, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = repo.FindByShortCode(ctx, "stale")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByShortCode(ctx, "fresh")
	assert.NoError(t, err)
	_, err = repo.FindByShortCode(ctx, "forever")
	assert.NoError(t, err)

	var buckets int64
	require.NoError(t, db.Model(&models.LinkCountryClick{}).Where("link_id = ?", stale.ID).Count(&buckets).Error)
	assert.EqualValues(t, 0, buckets)
}
