package domain

import "time"

// ApiKey stores a per-user, per-provider encrypted credential. Ciphertext
// layout is a 12-byte GCM nonce followed by the AES-256-GCM ciphertext;
// plaintext is never persisted.
type ApiKey struct {
	ID            string
	UserID        string
	Provider      ProviderID
	EncryptedKey  []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApiKeyDTO never carries plaintext or ciphertext.
type ApiKeyDTO struct {
	ID        string     `json:"id"`
	Provider  ProviderID `json:"provider"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (k *ApiKey) ToDTO() ApiKeyDTO {
	return ApiKeyDTO{ID: k.ID, Provider: k.Provider, CreatedAt: k.CreatedAt, UpdatedAt: k.UpdatedAt}
}
