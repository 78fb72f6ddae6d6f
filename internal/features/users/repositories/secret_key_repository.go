package users_repositories

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SecretKeyRepository keeps the JWT signing key in the database so every
// instance signs with the same key. The first caller generates it.
type SecretKeyRepository struct {
	mu     sync.Mutex
	cached string
}

func (r *SecretKeyRepository) GetSecretKey() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}

	secret, err := r.loadSecret()
	if err != nil {
		return "", err
	}

	if secret == "" {
		generated, err := generateSecret()
		if err != nil {
			return "", err
		}

		if err := storage.GetDb().
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&users_models.SecretKey{Secret: generated}).Error; err != nil {
			return "", fmt.Errorf("failed to store secret key: %w", err)
		}

		// another instance may have won the insert
		if secret, err = r.loadSecret(); err != nil {
			return "", err
		}
	}

	if secret == "" {
		return "", errors.New("secret key is not available")
	}

	r.cached = secret
	return secret, nil
}

func (r *SecretKeyRepository) loadSecret() (string, error) {
	var secretKey users_models.SecretKey

	if err := storage.GetDb().First(&secretKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("failed to get secret key: %w", err)
	}

	return secretKey.Secret, nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
