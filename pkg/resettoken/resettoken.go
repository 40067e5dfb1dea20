package resettoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const defaultTokenExpiry = 30 * time.Minute

var (
	secret []byte
	store  = &usedStore{
		tokens: make(map[string]time.Time),
	}
)

type usedStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

// ResetToken is an opaque, time-limited credential for a password
// reset. It is HMAC-signed, never persisted, and single-use.
type ResetToken struct {
	UserID    string `json:"uid"`
	Email     string `json:"eml"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nce"`
}

func SetSecret(s string) {
	secret = []byte(s)
}

func StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			cleanup()
		}
	}()
}

func Generate(userID, email string) string {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return ""
	}

	tok := ResetToken{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(defaultTokenExpiry).Unix(),
		Nonce:     hex.EncodeToString(nonce),
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return ""
	}

	encoded := base64.RawURLEncoding.EncodeToString(data)
	return encoded + "." + sign(data)
}

func Validate(tokenString string) (*ResetToken, error) {
	dataPart, sigPart, err := split(tokenString)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.RawURLEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, fmt.Errorf("invalid token encoding")
	}

	if !hmac.Equal([]byte(sign(decoded)), []byte(sigPart)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	var tok ResetToken
	if err := json.Unmarshal(decoded, &tok); err != nil {
		return nil, fmt.Errorf("invalid token data")
	}

	if time.Now().Unix() > tok.ExpiresAt {
		return nil, fmt.Errorf("token expired")
	}

	if isUsed(tokenString) {
		return nil, fmt.Errorf("token already used")
	}

	return &tok, nil
}

// Consume validates the token and marks it used in one step.
func Consume(tokenString string) (*ResetToken, error) {
	tok, err := Validate(tokenString)
	if err != nil {
		return nil, err
	}
	markUsed(tokenString)
	return tok, nil
}

func markUsed(tokenString string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.tokens[tokenString] = time.Now()
}

func isUsed(tokenString string) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	_, exists := store.tokens[tokenString]
	return exists
}

func cleanup() {
	store.mu.Lock()
	defer store.mu.Unlock()
	threshold := time.Now().Add(-defaultTokenExpiry)
	for key, usedAt := range store.tokens {
		if usedAt.Before(threshold) {
			delete(store.tokens, key)
		}
	}
}

func sign(data []byte) string {
	key := secret
	if len(key) == 0 {
		key = []byte("phototree-reset-token-fallback")
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func split(tokenString string) (string, string, error) {
	for i := len(tokenString) - 1; i >= 0; i-- {
		if tokenString[i] == '.' {
			if i == len(tokenString)-1 {
				break
			}
			return tokenString[:i], tokenString[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid token format")
}
