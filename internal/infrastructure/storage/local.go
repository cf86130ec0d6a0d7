package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"digimarket.backend/internal/config"
	"digimarket.backend/pkg/utils"
	"github.com/go-jose/go-jose/v3"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid file token")
	ErrTokenExpired = errors.New("file token expired")
	ErrInvalidRef   = errors.New("invalid file reference")
	ErrTooLarge     = errors.New("file too large")
)

type fileClaims struct {
	Ref string `json:"ref"`
	Exp int64  `json:"exp"`
}

// LocalStorage keeps product files on disk and hands out HS256-signed,
// short-lived download URLs for them.
type LocalStorage struct {
	root    string
	baseURL string
	key     []byte
	signer  jose.Signer
	ttl     time.Duration
	maxSize int64
}

func NewLocalStorage(cfg config.StorageConfig, publicBaseURL string) (*LocalStorage, error) {
	key, err := hex.DecodeString(cfg.SigningKey)
	if err != nil || len(key) < 32 {
		return nil, fmt.Errorf("storage signing key must be at least 32 hex-encoded bytes")
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key}, nil)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStorage{
		root:    cfg.Root,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		key:     key,
		signer:  signer,
		ttl:     cfg.SignedURLTTL,
		maxSize: cfg.MaxUploadSize,
	}, nil
}

// Save writes r below the owner's directory and returns the file reference.
func (s *LocalStorage) Save(_ context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error) {
	name := cleanName(filename)
	ref := path.Join(ownerID.String(), utils.GenerateUUIDv7().String()+"-"+name)

	full, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", err
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return ref, nil
}

// Open returns the stored file for ref.
func (s *LocalStorage) Open(_ context.Context, ref string) (*os.File, error) {
	full, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// SignedURL returns an absolute URL valid until the returned time.
func (s *LocalStorage) SignedURL(_ context.Context, ref string, now time.Time) (string, time.Time, error) {
	if _, err := s.resolve(ref); err != nil {
		return "", time.Time{}, err
	}
	expiresAt := now.Add(s.ttl)
	payload, err := json.Marshal(fileClaims{Ref: ref, Exp: expiresAt.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	jws, err := s.signer.Sign(payload)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := jws.CompactSerialize()
	if err != nil {
		return "", time.Time{}, err
	}
	return s.baseURL + "/files/" + url.PathEscape(token), expiresAt, nil
}

// Verify checks the token signature and expiry and returns its file reference.
func (s *LocalStorage) Verify(token string, now time.Time) (string, error) {
	jws, err := jose.ParseSigned(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(jws.Signatures) != 1 || jws.Signatures[0].Header.Algorithm != string(jose.HS256) {
		return "", ErrInvalidToken
	}
	payload, err := jws.Verify(s.key)
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims fileClaims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Ref == "" {
		return "", ErrInvalidToken
	}
	if now.Unix() >= claims.Exp {
		return "", ErrTokenExpired
	}
	return claims.Ref, nil
}

func (s *LocalStorage) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean == "/" || clean != "/"+ref {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}
