package models

import "time"

// LicenseStatus is the server-side state of an offline license.
type LicenseStatus string

const (
	LicenseActive  LicenseStatus = "active"
	LicenseExpired LicenseStatus = "expired"
	LicenseRevoked LicenseStatus = "revoked"
)

// LicenseBook is the minimal book summary embedded in a license for
// offline display.
type LicenseBook struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CoverURL      string `json:"cover_url,omitempty"`
	Status        string `json:"status"`
	WordsCount    int    `json:"words_count"`
	ChaptersCount int    `json:"chapters_count"`
}

// OfflineLicense is one offline access grant, scoped to a (book, device) pair.
// At most one active license exists per pair; a new grant supersedes any
// prior record.
type OfflineLicense struct {
	LicenseID string      `json:"license_id"`
	Book      LicenseBook `json:"book"`
	DeviceID  string      `json:"device_id"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

// LicenseGrant is the body of a successful license creation: the license
// record plus the distribution manifest for the offline package.
type LicenseGrant struct {
	License struct {
		ID                string        `json:"id"`
		BookID            string        `json:"book_id"`
		UserID            string        `json:"user_id"`
		DeviceID          string        `json:"device_id"`
		Status            LicenseStatus `json:"status"`
		ContentKeyWrapped string        `json:"content_key_wrapped"`
		ExpiresAt         time.Time     `json:"license_expires_at"`
	} `json:"license"`
	Manifest OfflineManifest `json:"manifest"`
}

// OfflineManifest describes where and how the offline package is distributed.
type OfflineManifest struct {
	Version     int    `json:"version"`
	ManifestURL string `json:"manifest_url"`
	PackageURL  string `json:"package_url"`
	PackageSize int64  `json:"package_size"`
	Checksum    string `json:"checksum"`
}

// LicenseRenewal is the body of a successful renewal.
type LicenseRenewal struct {
	LicenseID string    `json:"license_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
