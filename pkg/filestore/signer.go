package filestore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Bucket all questionnaire attachments live in.
const UploadBucket = "form-uploads"

var (
	ErrSignatureMismatch = errors.New("upload signature mismatch")
	ErrSignatureExpired  = errors.New("upload signature expired")
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename keeps the original name recognizable while making it
// safe as a path segment.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

// BuildObjectKey derives the storage key for one upload. The timestamp
// prefix keeps repeated uploads of the same filename from colliding.
func BuildObjectKey(formID string, questionCode string, filename string) string {
	return fmt.Sprintf("%s/%s/%d-%s", formID, questionCode, time.Now().UnixMilli(), SanitizeFilename(filename))
}

// Signer issues and verifies pre-signed upload grants. A grant binds one
// object key to an expiry; the client PUTs the file bytes against it
// without any further credentials.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// UploadGrant is what the client receives in response to an upload
// request: where to PUT and until when.
type UploadGrant struct {
	ObjectKey string    `json:"objectKey"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueUploadGrant signs an object key for a time-limited direct upload.
// baseURL is the raw-upload endpoint prefix of the serving API.
func (s *Signer) IssueUploadGrant(baseURL string, objectKey string) UploadGrant {
	expiresAt := time.Now().Add(s.ttl)
	sig := s.sign(objectKey, expiresAt.Unix())

	q := url.Values{}
	q.Set("key", objectKey)
	q.Set("expires", strconv.FormatInt(expiresAt.Unix(), 10))
	q.Set("signature", sig)

	return UploadGrant{
		ObjectKey: objectKey,
		UploadURL: strings.TrimRight(baseURL, "/") + "?" + q.Encode(),
		ExpiresAt: expiresAt,
	}
}

// ValidateUpload checks a presented grant. Expiry is checked before the
// signature so an attacker cannot probe old signatures indefinitely.
func (s *Signer) ValidateUpload(objectKey string, expiresUnix int64, signature string) error {
	if time.Now().Unix() > expiresUnix {
		return ErrSignatureExpired
	}
	expected := s.sign(objectKey, expiresUnix)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (s *Signer) sign(objectKey string, expiresUnix int64) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s\n%d", objectKey, expiresUnix)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}
