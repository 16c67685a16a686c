package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/librefy/librefy-cli/internal/common"
	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T, name string) *sql.DB {
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
	return db
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func testSession(token string) models.AuthSession {
	return models.AuthSession{
		Token: token,
		User:  models.User{ID: "u-1", Name: "Ana", Username: "ana", Email: "ana@example.com"},
	}
}

// ---- tests ----

func TestSessionStore_SaveAndLoad(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess1"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("tok-123")))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)

	user, err := store.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username)
}

func TestSessionStore_NoSession(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess2"))
	ctx := context.Background()

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	_, err = store.User(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestSessionStore_TokenExpired(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess3"))
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, testSession(signedToken(t, now.Add(time.Hour)))))
	expired, err := store.TokenExpired(ctx)
	require.NoError(t, err)
	require.False(t, expired)

	require.NoError(t, store.Save(ctx, testSession(signedToken(t, now.Add(-time.Minute)))))
	expired, err = store.TokenExpired(ctx)
	require.NoError(t, err)
	require.True(t, expired)
}

func TestSessionStore_TokenExpiredNoSession(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess4"))

	_, err := store.TokenExpired(context.Background())
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestSessionStore_UnlockRoundTrip(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess5"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("tok")))
	require.NoError(t, store.SaveUnlockMaterial(ctx, []byte("s3cret")))

	require.NoError(t, store.VerifyUnlock(ctx, "ana", []byte("s3cret")))
	require.ErrorIs(t, store.VerifyUnlock(ctx, "ana", []byte("wrong")), common.ErrUnauthorized)
	require.ErrorIs(t, store.VerifyUnlock(ctx, "bob", []byte("s3cret")), common.ErrUnauthorized)
}

func TestSessionStore_VerifyUnlockWithoutMaterial(t *testing.T) {
	store := NewSessionStore(setupDB(t, "sess6"))

	err := store.VerifyUnlock(context.Background(), "ana", []byte("pw"))
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestSessionStore_ClearKeepsUnrelatedKeys(t *testing.T) {
	db := setupDB(t, "sess7")
	store := NewSessionStore(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES('device_id', 'dev-1')`)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, testSession("tok")))
	require.NoError(t, store.SaveUnlockMaterial(ctx, []byte("pw")))
	require.NoError(t, store.Clear(ctx))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	_, err = store.User(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
	require.ErrorIs(t, store.VerifyUnlock(ctx, "ana", []byte("pw")), common.ErrNoSession)

	var deviceID string
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key='device_id'`).Scan(&deviceID))
	require.Equal(t, "dev-1", deviceID)
}
