package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pvlink/pvlink/internal/models"
)

// ClickRepository records resolved clicks against links.
type ClickRepository interface {
	RecordClick(ctx context.Context, shortCode, country string) error
}

// GormClickRepository is the ClickRepository implementation using GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates and returns a new GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// RecordClick increments the link's total click count and its per-country
// bucket in a single transaction. A click on a short code that no longer
// exists is silently dropped; the link may have been deleted or purged
// between redirect and processing.
func (r *GormClickRepository) RecordClick(ctx context.Context, shortCode, country string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		err := tx.Select("id").Where("short_code = ?", shortCode).Take(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		err = tx.Model(&models.Link{}).
			Where("id = ?", link.ID).
			UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
		if err != nil {
			return err
		}

		bucket := models.LinkCountryClick{LinkID: link.ID, CountryCode: country, ClickCount: 1}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "link_id"}, {Name: "country_code"}},
			DoUpdates: clause.Assignments(map[string]any{
				"click_count": gorm.Expr("link_country_clicks.click_count + 1"),
			}),
		}).Create(&bucket).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record click for %q: %w", shortCode, err)
	}
	return nil
}

var _ ClickRepository = (*GormClickRepository)(nil)
