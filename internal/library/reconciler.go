package library

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/librefy/librefy-cli/internal/common"
	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
)

// Backend is the remote surface the reconciler drives. *Service implements it.
type Backend interface {
	GetPage(ctx context.Context, limit, offset int) (models.LibraryPage, error)
	Add(ctx context.Context, bookID string) error
	Remove(ctx context.Context, bookID string) error
	CreateLicense(ctx context.Context, bookID string) (*models.LicenseGrant, error)
	RevokeLicense(ctx context.Context, bookID string) error
	RenewLicense(ctx context.Context, bookID string) (models.LicenseRenewal, error)
	Licenses(ctx context.Context) ([]models.OfflineLicense, error)
}

var _ Backend = (*Service)(nil)

// Pagination is the reconciler's view of where it is in the server-side list.
type Pagination struct {
	Limit   int
	Offset  int
	Total   int
	HasMore bool
}

// Stats are derived counts over the current collection. They are computed on
// demand, never cached, so they are correct after every mutation.
type Stats struct {
	Total      int
	Reading    int
	Completed  int
	WantToRead int
	Offline    int
}

const (
	defaultPageLimit        = 20
	defaultDownloadStepSize = 10
	defaultStepDelay        = 200 * time.Millisecond
)

// Reconciler owns the authoritative in-memory copy of the user's library and
// reconciles it against the server: paginated fetches with cache fallback,
// optimistic add/remove, and the offline license lifecycle. All consumers
// share one instance by injection; there is no package-level state.
type Reconciler struct {
	svc Backend
	log logging.Logger

	mu         sync.Mutex
	entries    []models.LibraryEntry
	licenses   []models.OfflineLicense
	pagination Pagination
	loading    bool
	lastErr    string
	downloads  map[string]context.CancelFunc

	// stepDelay paces the simulated download progress loop. The license call
	// is a single round trip; the loop exists purely so the UI can show a
	// ramp instead of an instant flip.
	stepDelay time.Duration
}

func NewReconciler(svc Backend, log logging.Logger, limit int) *Reconciler {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return &Reconciler{
		svc:        svc,
		log:        log,
		pagination: Pagination{Limit: limit, HasMore: true},
		downloads:  map[string]context.CancelFunc{},
		stepDelay:  defaultStepDelay,
	}
}

// Entries returns a copy of the current in-memory collection.
func (r *Reconciler) Entries() []models.LibraryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LibraryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Licenses returns a copy of the loaded offline licenses.
func (r *Reconciler) Licenses() []models.OfflineLicense {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.OfflineLicense, len(r.licenses))
	copy(out, r.licenses)
	return out
}

// Pagination returns the current pagination state.
func (r *Reconciler) Pagination() Pagination {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pagination
}

// LastError returns the message of the most recent failed operation, or ""
// when the last attempt succeeded.
func (r *Reconciler) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// View projects the current collection through a filter and sort key.
func (r *Reconciler) View(f Filter, s SortKey) []models.LibraryEntry {
	return Project(r.Entries(), f, s)
}

// Stats derives the per-shelf counts from the current collection.
func (r *Reconciler) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Stats{Total: len(r.entries)}
	for _, e := range r.entries {
		switch e.ReadingStatus {
		case models.StatusReading:
			st.Reading++
		case models.StatusCompleted:
			st.Completed++
		case models.StatusWantToRead:
			st.WantToRead++
		}
		if e.IsOffline {
			st.Offline++
		}
	}
	return st
}

// load fetches one page. reset=true replaces the collection from offset zero;
// reset=false appends the next page. A fetch already in flight collapses the
// call into a no-op.
func (r *Reconciler) load(ctx context.Context, reset bool) error {
	r.mu.Lock()
	if r.loading {
		r.mu.Unlock()
		return nil
	}
	r.loading = true
	r.lastErr = ""
	limit := r.pagination.Limit
	offset := r.pagination.Offset
	if reset {
		offset = 0
	}
	r.mu.Unlock()

	page, err := r.svc.GetPage(ctx, limit, offset)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false

	if err != nil {
		r.lastErr = err.Error()
		if !reset {
			// The fallback snapshot is the whole cached list; appending it
			// would duplicate entries. Keep what we have.
			return err
		}
	}

	if reset {
		r.entries = page.Data
	} else {
		r.entries = append(r.entries, page.Data...)
	}

	fetched := page.Pagination.Offset + len(page.Data)
	r.pagination = Pagination{
		Limit:   limit,
		Offset:  fetched,
		Total:   page.Pagination.Total,
		HasMore: fetched < page.Pagination.Total,
	}
	return err
}

// FetchPage loads the page at the reconciler's current offset, replacing the
// collection when offset is zero.
func (r *Reconciler) FetchPage(ctx context.Context) error {
	return r.load(ctx, r.Pagination().Offset == 0)
}

// Refresh resets pagination and reloads the library and the offline licenses.
// The two sub-operations run independently: a failure in one does not stop
// the other.
func (r *Reconciler) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	var libErr, licErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		libErr = r.load(ctx, true)
	}()
	go func() {
		defer wg.Done()
		licErr = r.reloadLicenses(ctx)
	}()
	wg.Wait()

	return errors.Join(libErr, licErr)
}

// LoadMore appends the next page. It is a no-op when a fetch is in flight or
// the server reported no more data.
func (r *Reconciler) LoadMore(ctx context.Context) error {
	r.mu.Lock()
	if r.loading || !r.pagination.HasMore {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return r.load(ctx, false)
}

// AddToLibrary adds the book server-side, then refreshes: server-computed
// fields (counts, author info) are authoritative, so the new entry's shape is
// never assumed locally.
func (r *Reconciler) AddToLibrary(ctx context.Context, bookID string) error {
	r.clearError()
	if err := r.svc.Add(ctx, bookID); err != nil {
		r.setError(err)
		return err
	}
	return r.Refresh(ctx)
}

// RemoveFromLibrary removes the book server-side and, only after the server
// confirms, drops the entry from the in-memory collection. On failure prior
// state is untouched.
func (r *Reconciler) RemoveFromLibrary(ctx context.Context, bookID string) error {
	r.clearError()
	if err := r.svc.Remove(ctx, bookID); err != nil {
		r.setError(err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	removed := 0
	for _, e := range r.entries {
		if e.BookID == bookID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	if r.pagination.Total >= removed {
		r.pagination.Total -= removed
	}
	if r.pagination.Offset >= removed {
		r.pagination.Offset -= removed
	}
	return nil
}

// DownloadOffline drives the per-entry download state machine: mark the entry
// as downloading, obtain a license, pace the progress ramp, then commit
// (progress cleared, offline set, expiry recorded). Any failure or
// cancellation fully reverts the entry to its pre-download state.
//
// The progress loop is cancellable: RemoveOffline and app teardown cancel it
// before it can write to a discarded entry.
func (r *Reconciler) DownloadOffline(ctx context.Context, bookID string) error {
	r.mu.Lock()
	if r.indexOf(bookID) < 0 {
		r.mu.Unlock()
		return common.ErrNotFound
	}
	if _, active := r.downloads[bookID]; active {
		r.mu.Unlock()
		return nil
	}
	dctx, cancel := context.WithCancel(ctx)
	r.downloads[bookID] = cancel
	r.lastErr = ""
	r.setProgressLocked(bookID, 0)
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		delete(r.downloads, bookID)
		r.mu.Unlock()
	}()

	grant, err := r.svc.CreateLicense(dctx, bookID)
	if err != nil {
		r.abortDownload(bookID, err)
		return err
	}

	for progress := defaultDownloadStepSize; progress <= 100; progress += defaultDownloadStepSize {
		select {
		case <-dctx.Done():
			r.abortDownload(bookID, dctx.Err())
			return dctx.Err()
		case <-time.After(r.stepDelay):
		}
		r.mu.Lock()
		r.setProgressLocked(bookID, progress)
		r.mu.Unlock()
	}

	expiresAt := grant.License.ExpiresAt
	r.mu.Lock()
	if i := r.indexOf(bookID); i >= 0 {
		r.entries[i].DownloadProgress = nil
		r.entries[i].IsOffline = true
		r.entries[i].OfflineExpiresAt = &expiresAt
	}
	r.mu.Unlock()

	if err := r.reloadLicenses(ctx); err != nil {
		r.log.Warn(ctx, "license reload after download failed", "book_id", bookID, "error", err)
	}
	return nil
}

// RemoveOffline cancels any active download for the book, revokes this
// device's license, and clears the local offline state. All-or-nothing: a
// server failure leaves local state unchanged.
func (r *Reconciler) RemoveOffline(ctx context.Context, bookID string) error {
	r.mu.Lock()
	if cancel, active := r.downloads[bookID]; active {
		cancel()
	}
	r.lastErr = ""
	r.mu.Unlock()

	if err := r.svc.RevokeLicense(ctx, bookID); err != nil {
		r.setError(err)
		return err
	}

	r.mu.Lock()
	if i := r.indexOf(bookID); i >= 0 {
		r.entries[i].IsOffline = false
		r.entries[i].OfflineExpiresAt = nil
	}
	r.mu.Unlock()

	if err := r.reloadLicenses(ctx); err != nil {
		r.log.Warn(ctx, "license reload after revoke failed", "book_id", bookID, "error", err)
	}
	return nil
}

// RenewOffline requests a new expiry and overwrites the local one with the
// returned value. All-or-nothing.
func (r *Reconciler) RenewOffline(ctx context.Context, bookID string) error {
	r.clearError()
	renewal, err := r.svc.RenewLicense(ctx, bookID)
	if err != nil {
		r.setError(err)
		return err
	}

	expiresAt := renewal.ExpiresAt
	r.mu.Lock()
	if i := r.indexOf(bookID); i >= 0 {
		r.entries[i].OfflineExpiresAt = &expiresAt
	}
	r.mu.Unlock()

	if err := r.reloadLicenses(ctx); err != nil {
		r.log.Warn(ctx, "license reload after renew failed", "book_id", bookID, "error", err)
	}
	return nil
}

// reloadLicenses refreshes the license list. Failures are reported to the
// caller but never clear already-loaded licenses.
func (r *Reconciler) reloadLicenses(ctx context.Context) error {
	licenses, err := r.svc.Licenses(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.licenses = licenses
	r.mu.Unlock()
	return nil
}

// CancelDownloads aborts any in-flight download loops, e.g. on app teardown.
func (r *Reconciler) CancelDownloads() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.downloads {
		cancel()
	}
}

func (r *Reconciler) indexOf(bookID string) int {
	for i := range r.entries {
		if r.entries[i].BookID == bookID {
			return i
		}
	}
	return -1
}

func (r *Reconciler) setProgressLocked(bookID string, progress int) {
	if i := r.indexOf(bookID); i >= 0 {
		p := progress
		r.entries[i].DownloadProgress = &p
	}
}

// abortDownload reverts an entry to its pre-download state: progress cleared
// (absent, not zero), offline flag untouched (still false).
func (r *Reconciler) abortDownload(bookID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(bookID); i >= 0 {
		r.entries[i].DownloadProgress = nil
	}
	if err != nil {
		r.lastErr = err.Error()
	}
}

func (r *Reconciler) clearError() {
	r.mu.Lock()
	r.lastErr = ""
	r.mu.Unlock()
}

func (r *Reconciler) setError(err error) {
	r.mu.Lock()
	r.lastErr = err.Error()
	r.mu.Unlock()
}
