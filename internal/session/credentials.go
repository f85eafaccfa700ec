package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gsarma/judgepad/internal/crypto"
	"github.com/gsarma/judgepad/internal/store"
)

// CredentialStore persists the backend credential of a session.
type CredentialStore interface {
	Create(ctx context.Context) (uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, id uuid.UUID, apiKey string) error
	Load(ctx context.Context, id uuid.UUID) (string, error)
}

// Vault is the Postgres CredentialStore. Every session row carries its own
// wrapped data key; the credential is sealed under it.
type Vault struct {
	queries store.Querier
	enc     *crypto.Encryptor
}

func NewVault(queries store.Querier, enc *crypto.Encryptor) *Vault {
	return &Vault{queries: queries, enc: enc}
}

// Create registers a new session row and returns its id.
func (v *Vault) Create(ctx context.Context) (uuid.UUID, error) {
	wrapped, err := v.enc.NewDataKey()
	if err != nil {
		return uuid.Nil, err
	}
	row, err := v.queries.CreateSession(ctx, wrapped)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create session: %w", err)
	}
	return row.ID, nil
}

func (v *Vault) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := v.queries.GetSession(ctx, id); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (v *Vault) Save(ctx context.Context, id uuid.UUID, apiKey string) error {
	row, err := v.queries.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	sealed, err := v.enc.SealString(row.EncryptedDataKey, apiKey)
	if err != nil {
		return err
	}
	_, err = v.queries.UpdateSessionAPIKey(ctx, store.UpdateSessionAPIKeyParams{
		ID:              id,
		EncryptedApiKey: sealed,
	})
	return err
}

// Load returns the stored credential, or "" when none was ever set.
func (v *Vault) Load(ctx context.Context, id uuid.UUID) (string, error) {
	row, err := v.queries.GetSession(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if len(row.EncryptedApiKey) == 0 {
		return "", nil
	}
	return v.enc.OpenString(row.EncryptedDataKey, row.EncryptedApiKey)
}
