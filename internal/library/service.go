// Package library implements the offline-library core: the remote service
// wrapper with its cache fallback, the in-memory state reconciler, the
// offline license lifecycle, and the filter/sort projection.
package library

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
	"github.com/librefy/librefy-cli/internal/storage"
)

// API is the subset of the HTTP client the library service needs.
type API interface {
	Get(ctx context.Context, path string, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
	Delete(ctx context.Context, path string, dest any) error
}

// DeviceIDs resolves the stable device identifier licenses are scoped to.
type DeviceIDs interface {
	DeviceID(ctx context.Context) (string, error)
}

// Service wraps the library endpoints of the Librefy API and the local cache
// snapshots. Read paths fall back to a TTL-bounded cache on failure; write
// paths never touch local state on error.
type Service struct {
	api     API
	kv      storage.KV
	devices DeviceIDs
	log     logging.Logger

	now func() time.Time
}

func NewService(api API, kv storage.KV, devices DeviceIDs, log logging.Logger) *Service {
	return &Service{api: api, kv: kv, devices: devices, log: log, now: time.Now}
}

// licenseListResponse is the data block of GET /v1/library/offline.
type licenseListResponse struct {
	Data  []models.OfflineLicense `json:"data"`
	Total int                     `json:"total"`
}

// GetPage fetches one page of the library. On success the result is cached
// and returned. On failure a still-fresh snapshot is returned together with
// the error; with no usable cache the page is empty and carries the
// requested limit/offset.
func (s *Service) GetPage(ctx context.Context, limit, offset int) (models.LibraryPage, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))

	var page models.LibraryPage
	err := s.api.Get(ctx, "/v1/library?"+q.Encode(), &page)
	if err == nil {
		// A malformed-but-200 response must not break the read path.
		if page.Data == nil {
			page.Data = []models.LibraryEntry{}
		}
		if page.Pagination == (models.LibraryPagination{}) {
			page.Pagination = models.LibraryPagination{Limit: limit, Offset: offset}
		}
		snap := librarySnapshot{Data: page.Data, Pagination: page.Pagination, CachedAt: s.now().UnixMilli()}
		if cacheErr := s.saveLibrarySnapshot(ctx, snap); cacheErr != nil {
			s.log.Warn(ctx, "library cache write failed", "error", cacheErr)
		}
		return page, nil
	}

	if snap, ok := s.loadLibrarySnapshot(ctx); ok && fresh(snap.CachedAt, LibraryCacheTTL, s.now()) {
		s.log.Warn(ctx, "library fetch failed, serving cache", "error", err)
		return models.LibraryPage{Data: snap.Data, Pagination: snap.Pagination}, err
	}

	return models.LibraryPage{
		Data:       []models.LibraryEntry{},
		Pagination: models.LibraryPagination{Limit: limit, Offset: offset},
	}, err
}

// InvalidateCache drops the library snapshot so the next read hits the
// network.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.kv.Delete(ctx, libraryCacheKey)
}

// Add puts a book into the user's library and invalidates the cache: the new
// entry's server-computed fields are authoritative, so the next fetch must
// hit the network.
func (s *Service) Add(ctx context.Context, bookID string) error {
	if err := s.api.Post(ctx, "/v1/library", map[string]string{"bookId": bookID}, nil); err != nil {
		return err
	}
	if err := s.InvalidateCache(ctx); err != nil {
		s.log.Warn(ctx, "library cache invalidation failed", "error", err)
	}
	return nil
}

// Remove deletes a book from the user's library.
func (s *Service) Remove(ctx context.Context, bookID string) error {
	if err := s.api.Delete(ctx, "/v1/library/"+url.PathEscape(bookID), nil); err != nil {
		return err
	}
	if err := s.InvalidateCache(ctx); err != nil {
		s.log.Warn(ctx, "library cache invalidation failed", "error", err)
	}
	return nil
}

// CreateLicense requests an offline license for (book, this device). The
// server supersedes any prior license for the pair.
func (s *Service) CreateLicense(ctx context.Context, bookID string) (*models.LicenseGrant, error) {
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	var grant models.LicenseGrant
	path := "/v1/library/" + url.PathEscape(bookID) + "/offline"
	if err := s.api.Post(ctx, path, map[string]string{"deviceId": deviceID}, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// RevokeLicense revokes this device's license for the book. Revoking an
// already-absent license is not special-cased here; any server error simply
// surfaces.
func (s *Service) RevokeLicense(ctx context.Context, bookID string) error {
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("deviceId", deviceID)
	path := "/v1/library/" + url.PathEscape(bookID) + "/offline?" + q.Encode()
	return s.api.Delete(ctx, path, nil)
}

// RenewLicense asks for a new expiry for this device's license.
func (s *Service) RenewLicense(ctx context.Context, bookID string) (models.LicenseRenewal, error) {
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return models.LicenseRenewal{}, err
	}

	var renewal models.LicenseRenewal
	path := "/v1/library/" + url.PathEscape(bookID) + "/offline/renew"
	if err := s.api.Post(ctx, path, map[string]string{"deviceId": deviceID}, &renewal); err != nil {
		return models.LicenseRenewal{}, err
	}
	return renewal, nil
}

// Licenses lists this device's offline licenses, falling back to a fresh
// snapshot on failure. The error is returned alongside whatever data is
// available.
func (s *Service) Licenses(ctx context.Context) ([]models.OfflineLicense, error) {
	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("deviceId", deviceID)

	var resp licenseListResponse
	err = s.api.Get(ctx, "/v1/library/offline?"+q.Encode(), &resp)
	if err == nil {
		licenses := resp.Data
		if licenses == nil {
			licenses = []models.OfflineLicense{}
		}
		snap := licenseSnapshot{Licenses: licenses, CachedAt: s.now().UnixMilli()}
		if cacheErr := s.saveLicenseSnapshot(ctx, snap); cacheErr != nil {
			s.log.Warn(ctx, "license cache write failed", "error", cacheErr)
		}
		return licenses, nil
	}

	if snap, ok := s.loadLicenseSnapshot(ctx); ok && fresh(snap.CachedAt, LicenseCacheTTL, s.now()) {
		s.log.Warn(ctx, "license fetch failed, serving cache", "error", err)
		return snap.Licenses, err
	}
	return []models.OfflineLicense{}, err
}
