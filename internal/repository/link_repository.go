package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pvlink/pvlink/internal/models"
)

// PageSize is the fixed number of links per listing page.
const PageSize = 10

// CreateResult is the outcome of a link creation attempt.
type CreateResult int

const (
	Created CreateResult = iota
	AlreadyExists
)

// DeleteResult is the outcome of a link deletion attempt.
type DeleteResult int

const (
	Deleted DeleteResult = iota
	NotFound
)

// CountryClicks is one aggregated click bucket for a link.
type CountryClicks struct {
	Country string
	Clicks  int64
}

// LinkRepository defines the data access methods for links. Domain-expected
// outcomes (already-exists, not-found) are typed results; only unexpected
// store failures come back as errors.
type LinkRepository interface {
	Create(ctx context.Context, shortCode, longURL string, expiresAt *time.Time) (CreateResult, error)
	Delete(ctx context.Context, id uint) (DeleteResult, error)
	ListPage(ctx context.Context, page int) ([]models.Link, error)
	CountPages(ctx context.Context) (int, error)
	Clicks(ctx context.Context, id uint) (int64, bool, error)
	CountryClicks(ctx context.Context, id uint) ([]CountryClicks, error)
	FindByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormLinkRepository is the LinkRepository implementation using GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates and returns a new GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// Create inserts a new link unless its short code is already taken. The
// existence check and the insert run in one transaction, but the unique
// index on short_code is the real arbiter: a duplicate-key error from a
// concurrent insert also maps to AlreadyExists, so two racing creates can
// never both report Created.
func (r *GormLinkRepository) Create(ctx context.Context, shortCode, longURL string, expiresAt *time.Time) (CreateResult, error) {
	result := Created
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Link
		err := tx.Select("id").Where("short_code = ?", shortCode).Take(&existing).Error
		if err == nil {
			result = AlreadyExists
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link := models.Link{
			ShortCode: shortCode,
			LongURL:   longURL,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result = AlreadyExists
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Created, fmt.Errorf("failed to create link: %w", err)
	}
	return result, nil
}

// Delete removes a link by id. Returns NotFound when no such row exists.
func (r *GormLinkRepository) Delete(ctx context.Context, id uint) (DeleteResult, error) {
	result := Deleted
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Link
		err := tx.Select("id").Where("id = ?", id).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result = NotFound
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("link_id = ?", id).Delete(&models.LinkCountryClick{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Link{}, id).Error
	})
	if err != nil {
		return Deleted, fmt.Errorf("failed to delete link %d: %w", id, err)
	}
	return result, nil
}

// ListPage returns one page of links ordered by id ascending. Pages are
// 1-based; anything below 1 is treated as the first page.
func (r *GormLinkRepository) ListPage(ctx context.Context, page int) ([]models.Link, error) {
	if page < 1 {
		page = 1
	}

	var links []models.Link
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links page %d: %w", page, err)
	}
	return links, nil
}

// CountPages returns the total number of listing pages. An empty link set
// still reports one page.
func (r *GormLinkRepository) CountPages(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Link{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}

	pages := int((count + PageSize - 1) / PageSize)
	if pages < 1 {
		pages = 1
	}
	return pages, nil
}

// Clicks returns the current click count for a link, or false when the
// link does not exist.
func (r *GormLinkRepository) Clicks(ctx context.Context, id uint) (int64, bool, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Select("click_count").Where("id = ?", id).Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch clicks for link %d: %w", id, err)
	}
	return link.ClickCount, true, nil
}

// CountryClicks returns every per-country click bucket recorded for a link.
// The result is empty when nothing has been recorded yet.
func (r *GormLinkRepository) CountryClicks(ctx context.Context, id uint) ([]CountryClicks, error) {
	var rows []models.LinkCountryClick
	err := r.db.WithContext(ctx).
		Where("link_id = ?", id).
		Order("country_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch country clicks for link %d: %w", id, err)
	}

	buckets := make([]CountryClicks, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, CountryClicks{Country: row.CountryCode, Clicks: row.ClickCount})
	}
	return buckets, nil
}

// FindByShortCode retrieves a link by its short code.
// Returns gorm.ErrRecordNotFound when absent.
func (r *GormLinkRepository) FindByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).Take(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// PurgeExpired deletes every link whose expiry has passed, together with
// its country buckets. Returns the number of links removed.
func (r *GormLinkRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&models.Link{}).
			Where("expires_at IS NOT NULL AND expires_at <= ?", now).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("link_id IN ?", ids).Delete(&models.LinkCountryClick{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Link{}, ids)
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired links: %w", err)
	}
	return purged, nil
}

var _ LinkRepository = (*GormLinkRepository)(nil)
