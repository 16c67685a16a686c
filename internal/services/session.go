// Package services contains the application services of the Librefy client:
// authentication with offline unlock, book discovery, and authoring. Each
// service talks to the HTTP API and persists what it must into the
// device-local metadata store.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"

	"github.com/librefy/librefy-cli/internal/common"
	"github.com/librefy/librefy-cli/internal/dbx"
	"github.com/librefy/librefy-cli/internal/models"
	"github.com/librefy/librefy-cli/internal/storage"
)

const (
	keyToken          = "token"
	keyUser           = "user"
	keyUsername       = "username"
	keyUnlockSalt     = "unlock_salt"
	keyUnlockVerifier = "unlock_verifier"
)

// SessionStore persists the auth session in the device-local store. It doubles
// as the bearer token source for the HTTP client and holds the derived unlock
// material that lets a returning user in while the server is unreachable.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) kv() storage.KV {
	return storage.NewSQLiteKV(s.db)
}

// Token returns the stored bearer token, or "" when no session exists.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	b, err := s.kv().Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TokenExpired reports whether the stored token carries an exp claim in the
// past. The signature is not verified; the server remains the authority, this
// only lets the client prompt for a fresh login before a request bounces.
func (s *SessionStore) TokenExpired(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, common.ErrNoSession
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim: treat as non-expiring and let the server decide.
		return false, nil
	}
	return exp.Before(s.now()), nil
}

// Save persists the session atomically: token, user profile, and the username
// the unlock material is bound to.
func (s *SessionStore) Save(ctx context.Context, session models.AuthSession) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := storage.NewSQLiteKV(tx)
		if err := kv.Set(ctx, keyToken, []byte(session.Token)); err != nil {
			return err
		}
		if err := kv.Set(ctx, keyUser, userJSON); err != nil {
			return err
		}
		return kv.Set(ctx, keyUsername, []byte(session.User.Username))
	})
}

// User returns the stored profile, or common.ErrNoSession when nobody is
// logged in on this device.
func (s *SessionStore) User(ctx context.Context) (*models.User, error) {
	b, err := s.kv().Get(ctx, keyUser)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, common.ErrNoSession
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

// SaveUser refreshes only the stored profile, leaving the token untouched.
func (s *SessionStore) SaveUser(ctx context.Context, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.kv().Set(ctx, keyUser, b)
}

// SaveUnlockMaterial derives and stores the salt and verifier that back
// offline unlock. The password bytes are not retained.
func (s *SessionStore) SaveUnlockMaterial(ctx context.Context, password []byte) error {
	salt := common.GenerateRandByteArray(32)
	verifier := unlockVerifier(password, salt)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := storage.NewSQLiteKV(tx)
		if err := kv.Set(ctx, keyUnlockSalt, salt); err != nil {
			return err
		}
		return kv.Set(ctx, keyUnlockVerifier, verifier)
	})
}

// VerifyUnlock checks username and password against the locally stored unlock
// material. common.ErrNoSession means no material exists on this device;
// common.ErrUnauthorized means the credentials do not match.
func (s *SessionStore) VerifyUnlock(ctx context.Context, username string, password []byte) error {
	kv := s.kv()

	savedUsername, err := kv.Get(ctx, keyUsername)
	if err != nil {
		return err
	}
	salt, err := kv.Get(ctx, keyUnlockSalt)
	if err != nil {
		return err
	}
	verifier, err := kv.Get(ctx, keyUnlockVerifier)
	if err != nil {
		return err
	}
	if savedUsername == nil || salt == nil || verifier == nil {
		return common.ErrNoSession
	}
	if string(savedUsername) != username {
		return common.ErrUnauthorized
	}

	candidate := unlockVerifier(password, salt)
	if subtle.ConstantTimeCompare(verifier, candidate) == 0 {
		return common.ErrUnauthorized
	}
	return nil
}

// Clear wipes the session and unlock material. Device identity and caches in
// the same store are left alone.
func (s *SessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := storage.NewSQLiteKV(tx)
		for _, key := range []string{keyToken, keyUser, keyUsername, keyUnlockSalt, keyUnlockVerifier} {
			if err := kv.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
}

func unlockVerifier(password, salt []byte) []byte {
	key := argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
	defer common.WipeByteArray(key)
	hash := sha256.Sum256(key)
	return hash[:]
}
