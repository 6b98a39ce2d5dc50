// Package services contains the business logic layer sitting between the
// API handlers and the repositories.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pvlink/pvlink/internal/models"
	"github.com/pvlink/pvlink/internal/repository"
)

// LinkService provides the link-management operations exposed through the
// RPC endpoint, plus redirect resolution for the shortening path.
type LinkService struct {
	links repository.LinkRepository
	log   *slog.Logger
}

// NewLinkService creates and returns a new LinkService.
func NewLinkService(links repository.LinkRepository, log *slog.Logger) *LinkService {
	return &LinkService{links: links, log: log}
}

// Create registers a new short link. The optional expiration is given in
// epoch seconds. Returns false when the short code is already taken.
func (s *LinkService) Create(ctx context.Context, shortCode, longURL string, expiration *int64) (bool, error) {
	var expiresAt *time.Time
	if expiration != nil {
		t := time.Unix(*expiration, 0)
		expiresAt = &t
	}

	result, err := s.links.Create(ctx, shortCode, longURL, expiresAt)
	if err != nil {
		return false, err
	}
	return result == repository.Created, nil
}

// Delete removes a link by id. Returns false when no such link exists.
func (s *LinkService) Delete(ctx context.Context, id uint) (bool, error) {
	result, err := s.links.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return result == repository.Deleted, nil
}

// Page returns one page of links, 1-based.
func (s *LinkService) Page(ctx context.Context, page int) ([]models.Link, error) {
	return s.links.ListPage(ctx, page)
}

// Pages returns the total number of listing pages (at least 1).
func (s *LinkService) Pages(ctx context.Context) (int, error) {
	return s.links.CountPages(ctx)
}

// Clicks returns the click count for a link, or false if it does not exist.
func (s *LinkService) Clicks(ctx context.Context, id uint) (int64, bool, error) {
	return s.links.Clicks(ctx, id)
}

// CountryClicks returns every per-country click bucket for a link.
func (s *LinkService) CountryClicks(ctx context.Context, id uint) ([]repository.CountryClicks, error) {
	return s.links.CountryClicks(ctx, id)
}

// ResolveRedirect looks up the target of a short code. Returns false when
// the code is unknown or the link has expired; expired links stay out of
// the redirect path even before the purger removes them.
func (s *LinkService) ResolveRedirect(ctx context.Context, shortCode string, now time.Time) (*models.Link, bool, error) {
	link, err := s.links.FindByShortCode(ctx, shortCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if link.Expired(now) {
		return nil, false, nil
	}
	return link, true, nil
}
