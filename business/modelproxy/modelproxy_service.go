// Package modelproxy serves external 3D assets through the API so that the
// viewer is not blocked by the asset host's CORS policy. Only URLs sealed by
// this service can be fetched.
package modelproxy

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"kawaiiShop/pkg/logger"
	"net/url"
	"strings"

	"github.com/pobyzaarif/goshortcute"
)

const ProxyPath = "/api/v1/models/proxy"

var (
	ErrInvalidToken    = errors.New("invalid model token")
	ErrInvalidModelURL = errors.New("model url must be an absolute http or https url")
	ErrUpstream        = errors.New("model host returned an error")
)

// Asset is a fetched model body; the caller closes Body.
type Asset struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ModelFetcher retrieves a remote asset.
type ModelFetcher interface {
	Fetch(ctx context.Context, rawURL string) (Asset, error)
}

type modelProxyService struct {
	key     []byte
	macKey  []byte
	fetcher ModelFetcher
}

func NewModelProxyService(key string, fetcher ModelFetcher) *modelProxyService {
	macKey := sha256.Sum256([]byte("model-token-mac:" + key))
	return &modelProxyService{
		key:     []byte(key),
		macKey:  macKey[:],
		fetcher: fetcher,
	}
}

// ValidateModelURL accepts absolute http(s) URLs only.
func ValidateModelURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ErrInvalidModelURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidModelURL
	}
	return nil
}

// Seal encrypts a model URL into an opaque token of the form
// <ciphertext>.<hmac>, so tampered tokens are rejected before decryption.
func (s *modelProxyService) Seal(rawURL string) (string, error) {
	if err := ValidateModelURL(rawURL); err != nil {
		return "", err
	}

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(rawURL), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal model url: %w", err)
	}

	sealed := goshortcute.StringtoBase64Encode(encrypted)
	return sealed + "." + s.sign(sealed), nil
}

func (s *modelProxyService) sign(sealed string) string {
	mac := hmac.New(sha256.New, s.macKey)
	mac.Write([]byte(sealed))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *modelProxyService) verify(sealed, tag string) bool {
	got, err := hex.DecodeString(tag)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, s.macKey)
	mac.Write([]byte(sealed))
	return hmac.Equal(got, mac.Sum(nil))
}

// ProxyURL is the API path the frontend viewer loads instead of rawURL.
func (s *modelProxyService) ProxyURL(rawURL string) (string, error) {
	token, err := s.Seal(rawURL)
	if err != nil {
		return "", err
	}

	return ProxyPath + "?token=" + url.QueryEscape(token), nil
}

// Open reverses Seal.
func (s *modelProxyService) Open(token string) (string, error) {
	sealed, tag, ok := strings.Cut(token, ".")
	if !ok || sealed == "" || !s.verify(sealed, tag) {
		return "", ErrInvalidToken
	}

	decoded := goshortcute.StringtoBase64Decode(sealed)
	if decoded == "" {
		return "", ErrInvalidToken
	}

	rawURL, err := s.decrypt(decoded)
	if err != nil {
		return "", ErrInvalidToken
	}

	if err := ValidateModelURL(rawURL); err != nil {
		return "", ErrInvalidToken
	}

	return rawURL, nil
}

// decrypt turns a padding panic in the cipher helper into an error.
func (s *modelProxyService) decrypt(ciphertext string) (plain string, err error) {
	defer func() {
		if r := recover(); r != nil {
			plain, err = "", fmt.Errorf("%w: %v", ErrInvalidToken, r)
		}
	}()

	return goshortcute.AESCBCDecrypt([]byte(ciphertext), s.key)
}

func (s *modelProxyService) Fetch(ctx context.Context, token string) (Asset, error) {
	rawURL, err := s.Open(token)
	if err != nil {
		logger.Warn("Rejected model proxy token", "error", err)
		return Asset{}, err
	}

	asset, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		logger.Error("Failed to fetch model", "url", rawURL, "error", err)
		return Asset{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return asset, nil
}
