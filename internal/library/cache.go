package library

import (
	"context"
	"encoding/json"
	"time"

	"github.com/librefy/librefy-cli/internal/models"
)

// Cache TTLs. A snapshot older than its TTL is never served; the caller
// treats it as a total fetch failure.
const (
	LibraryCacheTTL = 5 * time.Minute
	LicenseCacheTTL = 10 * time.Minute
)

const (
	libraryCacheKey = "library_cache"
	licenseCacheKey = "offline_cache"
)

// librarySnapshot is the persisted library cache: the last good page set plus
// the moment it was taken (epoch milliseconds).
type librarySnapshot struct {
	Data       []models.LibraryEntry    `json:"data"`
	Pagination models.LibraryPagination `json:"pagination"`
	CachedAt   int64                    `json:"cached_at"`
}

// licenseSnapshot is the persisted offline-license cache.
type licenseSnapshot struct {
	Licenses []models.OfflineLicense `json:"licenses"`
	CachedAt int64                   `json:"cached_at"`
}

func fresh(cachedAt int64, ttl time.Duration, now time.Time) bool {
	return now.UnixMilli()-cachedAt < ttl.Milliseconds()
}

// saveLibrarySnapshot persists a snapshot unless a newer one is already
// stored, so a slow writer cannot clobber the result of a later fetch.
func (s *Service) saveLibrarySnapshot(ctx context.Context, snap librarySnapshot) error {
	if prev, ok := s.loadLibrarySnapshot(ctx); ok && prev.CachedAt > snap.CachedAt {
		return nil
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, libraryCacheKey, b)
}

// loadLibrarySnapshot returns the stored snapshot regardless of age.
// Freshness is the caller's concern.
func (s *Service) loadLibrarySnapshot(ctx context.Context) (librarySnapshot, bool) {
	raw, err := s.kv.Get(ctx, libraryCacheKey)
	if err != nil || len(raw) == 0 {
		return librarySnapshot{}, false
	}
	var snap librarySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return librarySnapshot{}, false
	}
	return snap, true
}

func (s *Service) saveLicenseSnapshot(ctx context.Context, snap licenseSnapshot) error {
	if prev, ok := s.loadLicenseSnapshot(ctx); ok && prev.CachedAt > snap.CachedAt {
		return nil
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, licenseCacheKey, b)
}

func (s *Service) loadLicenseSnapshot(ctx context.Context) (licenseSnapshot, bool) {
	raw, err := s.kv.Get(ctx, licenseCacheKey)
	if err != nil || len(raw) == 0 {
		return licenseSnapshot{}, false
	}
	var snap licenseSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return licenseSnapshot{}, false
	}
	return snap, true
}
