// Package device produces and persists the stable pseudo-unique identifier
// that scopes offline licenses to this installation.
package device

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/librefy/librefy-cli/internal/storage"
)

const deviceIDKey = "device_id"

var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// Provider resolves the device identifier, generating and persisting one on
// first use. The identifier is stable across restarts; it is regenerated only
// when the persisted value is absent (fresh install).
type Provider struct {
	kv storage.KV

	// test seams
	hostname func() (string, error)
	now      func() time.Time
}

func NewProvider(kv storage.KV) *Provider {
	return &Provider{kv: kv, hostname: os.Hostname, now: time.Now}
}

// DeviceID returns the persisted identifier, generating a new one when none
// is stored yet.
func (p *Provider) DeviceID(ctx context.Context) (string, error) {
	stored, err := p.kv.Get(ctx, deviceIDKey)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if len(stored) > 0 {
		return string(stored), nil
	}

	id := p.generate()
	if err := p.kv.Set(ctx, deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// generate composes platform name, host name, a random component, and the
// creation timestamp into a lower-cased slug.
func (p *Provider) generate() string {
	host, err := p.hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	rand := uuid.NewString()[:8]
	raw := fmt.Sprintf("%s-%s-%s-%d", runtime.GOOS, host, rand, p.now().UnixMilli())
	return slugify(raw)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
