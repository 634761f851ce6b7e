// Package sessions persists the device's auth session in the local SQLite
// database, sealed with a key derived from a local secret.
package sessions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/cryptox"
	"github.com/dmitrijs2005/healthkeeper/internal/dbx"
)

const (
	keySession = "session"
	keySalt    = "session_salt"
)

type envelope struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// SealedStorage implements client.SessionStorage on top of the metadata
// table. The salt and the sealed blob are always written together.
type SealedStorage struct {
	db     *sql.DB
	secret []byte

	mu      sync.Mutex
	salt    []byte
	derived []byte
}

var _ client.SessionStorage = (*SealedStorage)(nil)

func NewSealedStorage(db *sql.DB, secret string) (*SealedStorage, error) {
	if secret == "" {
		return nil, cryptox.ErrEmptySecret
	}
	return &SealedStorage{db: db, secret: []byte(secret)}, nil
}

func (s *SealedStorage) Load(ctx context.Context) (*models.Session, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	raw, err := repo.Get(ctx, keySession)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	salt, err := repo.Get(ctx, keySalt)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: session salt missing", common.ErrCorruptedData)
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptedData, err)
	}

	key, err := s.key(salt)
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := cryptox.Open(env.Ciphertext, env.Nonce, key, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptedData, err)
	}
	return &sess, nil
}

// Save replaces the stored session. A nil session clears it.
func (s *SealedStorage) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		salt, err := repo.Get(ctx, keySalt)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			salt = common.GenerateRandByteArray(cryptox.SaltSize)
			if err := repo.Set(ctx, keySalt, salt); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		key, err := s.key(salt)
		if err != nil {
			return err
		}

		ct, nonce, err := cryptox.Seal(sess, key)
		if err != nil {
			return fmt.Errorf("seal session: %w", err)
		}

		raw, err := json.Marshal(envelope{Nonce: nonce, Ciphertext: ct})
		if err != nil {
			return err
		}
		return repo.Set(ctx, keySession, raw)
	})
}

func (s *SealedStorage) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, keySession, keySalt)
}

// key derives the sealing key for salt, reusing the last derivation.
func (s *SealedStorage) key(salt []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.derived != nil && bytes.Equal(s.salt, salt) {
		return s.derived, nil
	}

	k, err := cryptox.DeriveKey(s.secret, salt)
	if err != nil {
		return nil, err
	}
	s.salt = append([]byte(nil), salt...)
	s.derived = k
	return k, nil
}
