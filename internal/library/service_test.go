package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
	"github.com/librefy/librefy-cli/internal/storage"

	_ "modernc.org/sqlite"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupKV(t *testing.T, name string) storage.KV {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);
DELETE FROM metadata;
`)
	require.NoError(t, err)
	return storage.NewSQLiteKV(db)
}

type fixedDevice string

func (d fixedDevice) DeviceID(ctx context.Context) (string, error) { return string(d), nil }

// fakeAPI answers canned payloads per path and records calls.
type fakeAPI struct {
	calls   []string
	getErr  error
	postErr error
	delErr  error

	pages    map[string]models.LibraryPage
	licenses *licenseListResponse
	grant    *models.LicenseGrant
	renewal  *models.LicenseRenewal
}

func (f *fakeAPI) assign(dest, src any) {
	b, _ := json.Marshal(src)
	_ = json.Unmarshal(b, dest)
}

func (f *fakeAPI) Get(ctx context.Context, path string, dest any) error {
	f.calls = append(f.calls, "GET "+path)
	if f.getErr != nil {
		return f.getErr
	}
	if page, ok := f.pages[path]; ok {
		f.assign(dest, page)
		return nil
	}
	if f.licenses != nil {
		f.assign(dest, f.licenses)
	}
	return nil
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, dest any) error {
	f.calls = append(f.calls, "POST "+path)
	if f.postErr != nil {
		return f.postErr
	}
	if f.grant != nil && dest != nil {
		f.assign(dest, f.grant)
	}
	if f.renewal != nil && dest != nil {
		f.assign(dest, f.renewal)
	}
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, path string, dest any) error {
	f.calls = append(f.calls, "DELETE "+path)
	return f.delErr
}

func entry(bookID, title string) models.LibraryEntry {
	return models.LibraryEntry{ID: "m-" + bookID, BookID: bookID, Title: title}
}

func newTestService(t *testing.T, name string, api *fakeAPI) *Service {
	t.Helper()
	return NewService(api, setupKV(t, name), fixedDevice("dev-1"), discardLogger())
}

func TestGetPage_SuccessCachesAndReturns(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{
		"/v1/library?limit=20&offset=0": {
			Data:       []models.LibraryEntry{entry("b1", "One"), entry("b2", "Two")},
			Pagination: models.LibraryPagination{Limit: 20, Offset: 0, Total: 2},
		},
	}}
	svc := newTestService(t, "svc1", api)

	page, err := svc.GetPage(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.Pagination.Total)

	snap, ok := svc.loadLibrarySnapshot(context.Background())
	require.True(t, ok)
	require.Len(t, snap.Data, 2)
}

func TestGetPage_MalformedOKResponseGetsDefaults(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{}}
	svc := newTestService(t, "svc2", api)

	page, err := svc.GetPage(context.Background(), 10, 30)
	require.NoError(t, err)
	require.NotNil(t, page.Data)
	require.Empty(t, page.Data)
	require.Equal(t, models.LibraryPagination{Limit: 10, Offset: 30}, page.Pagination)
}

func TestGetPage_FailureServesFreshCacheWithError(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{
		"/v1/library?limit=20&offset=0": {
			Data:       []models.LibraryEntry{entry("b1", "One")},
			Pagination: models.LibraryPagination{Limit: 20, Total: 1},
		},
	}}
	svc := newTestService(t, "svc3", api)

	_, err := svc.GetPage(context.Background(), 20, 0)
	require.NoError(t, err)

	api.getErr = errors.New("connection refused")
	page, err := svc.GetPage(context.Background(), 20, 0)
	require.Error(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "b1", page.Data[0].BookID)
}

func TestGetPage_CacheTTLBoundary(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{
		"/v1/library?limit=20&offset=0": {
			Data:       []models.LibraryEntry{entry("b1", "One")},
			Pagination: models.LibraryPagination{Limit: 20, Total: 1},
		},
	}}
	svc := newTestService(t, "svc4", api)

	t0 := time.Now()
	svc.now = func() time.Time { return t0 }
	_, err := svc.GetPage(context.Background(), 20, 0)
	require.NoError(t, err)

	api.getErr = errors.New("down")

	// Just inside the TTL the snapshot is served.
	svc.now = func() time.Time { return t0.Add(LibraryCacheTTL - time.Millisecond) }
	page, err := svc.GetPage(context.Background(), 20, 0)
	require.Error(t, err)
	require.Len(t, page.Data, 1)

	// Just past the TTL it is treated as a total failure.
	svc.now = func() time.Time { return t0.Add(LibraryCacheTTL + time.Millisecond) }
	page, err = svc.GetPage(context.Background(), 20, 0)
	require.Error(t, err)
	require.Empty(t, page.Data)
}

func TestSaveLibrarySnapshot_NewerWins(t *testing.T) {
	svc := newTestService(t, "svc5", &fakeAPI{})
	ctx := context.Background()

	newer := librarySnapshot{Data: []models.LibraryEntry{entry("b2", "Two")}, CachedAt: 2000}
	older := librarySnapshot{Data: []models.LibraryEntry{entry("b1", "One")}, CachedAt: 1000}

	require.NoError(t, svc.saveLibrarySnapshot(ctx, newer))
	// A stale write must not clobber the newer snapshot.
	require.NoError(t, svc.saveLibrarySnapshot(ctx, older))

	snap, ok := svc.loadLibrarySnapshot(ctx)
	require.True(t, ok)
	require.Equal(t, int64(2000), snap.CachedAt)
	require.Equal(t, "b2", snap.Data[0].BookID)
}

func TestAdd_InvalidatesCache(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{
		"/v1/library?limit=20&offset=0": {
			Data:       []models.LibraryEntry{entry("b1", "One")},
			Pagination: models.LibraryPagination{Limit: 20, Total: 1},
		},
	}}
	svc := newTestService(t, "svc6", api)
	ctx := context.Background()

	_, err := svc.GetPage(ctx, 20, 0)
	require.NoError(t, err)
	_, ok := svc.loadLibrarySnapshot(ctx)
	require.True(t, ok)

	require.NoError(t, svc.Add(ctx, "b9"))
	_, ok = svc.loadLibrarySnapshot(ctx)
	require.False(t, ok)
	require.Contains(t, api.calls, "POST /v1/library")
}

func TestAdd_ServerFailureDoesNotTouchCache(t *testing.T) {
	api := &fakeAPI{pages: map[string]models.LibraryPage{
		"/v1/library?limit=20&offset=0": {
			Data:       []models.LibraryEntry{entry("b1", "One")},
			Pagination: models.LibraryPagination{Limit: 20, Total: 1},
		},
	}}
	svc := newTestService(t, "svc7", api)
	ctx := context.Background()

	_, err := svc.GetPage(ctx, 20, 0)
	require.NoError(t, err)

	api.postErr = errors.New("boom")
	require.Error(t, svc.Add(ctx, "b9"))

	_, ok := svc.loadLibrarySnapshot(ctx)
	require.True(t, ok)
}

func TestCreateLicense_SendsDeviceID(t *testing.T) {
	grant := &models.LicenseGrant{}
	grant.License.ID = "lic-1"
	grant.License.ExpiresAt = time.Now().Add(30 * 24 * time.Hour).UTC()
	api := &fakeAPI{grant: grant}
	svc := newTestService(t, "svc8", api)

	got, err := svc.CreateLicense(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, "lic-1", got.License.ID)
	require.Contains(t, api.calls, "POST /v1/library/b1/offline")
}

func TestRevokeLicense_PathIncludesDevice(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, "svc9", api)

	require.NoError(t, svc.RevokeLicense(context.Background(), "b1"))
	require.Contains(t, api.calls, "DELETE /v1/library/b1/offline?deviceId=dev-1")
}

func TestLicenses_SuccessCaches(t *testing.T) {
	api := &fakeAPI{licenses: &licenseListResponse{
		Data: []models.OfflineLicense{{LicenseID: "lic-1", DeviceID: "dev-1"}},
	}}
	svc := newTestService(t, "svc10", api)

	licenses, err := svc.Licenses(context.Background())
	require.NoError(t, err)
	require.Len(t, licenses, 1)

	snap, ok := svc.loadLicenseSnapshot(context.Background())
	require.True(t, ok)
	require.Len(t, snap.Licenses, 1)
}

func TestLicenses_FailureServesFreshCache(t *testing.T) {
	api := &fakeAPI{licenses: &licenseListResponse{
		Data: []models.OfflineLicense{{LicenseID: "lic-1"}},
	}}
	svc := newTestService(t, "svc11", api)

	_, err := svc.Licenses(context.Background())
	require.NoError(t, err)

	api.getErr = errors.New("down")
	licenses, err := svc.Licenses(context.Background())
	require.Error(t, err)
	require.Len(t, licenses, 1)

	// Past the license TTL the cache is dead.
	svc.now = func() time.Time { return time.Now().Add(LicenseCacheTTL + time.Second) }
	licenses, err = svc.Licenses(context.Background())
	require.Error(t, err)
	require.Empty(t, licenses)
}
