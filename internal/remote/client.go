package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Page sizes of the post lists.
const (
	RecentPostsLimit = 20
	InfinitePageSize = 9
)

// FileStore keeps uploaded images.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, size int64, r io.Reader) (*storage.Object, error)
	Remove(ctx context.Context, id string) error
	PresignGet(ctx context.Context, id string, ttl time.Duration) (*url.URL, error)
}

// IDTokenVerifier checks Firebase ID tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Deps are the hosted services behind the Client.
type Deps struct {
	Accounts repositories.AccountRepository
	Users    repositories.UserRepository
	Posts    repositories.PostRepository
	Saves    repositories.SavedPostRepository
	Files    FileStore
	Signer   *tokens.Signer
	// Firebase is optional; federated sign-in fails with KindAuth without it.
	Firebase IDTokenVerifier

	PublicURL  string
	SessionTTL time.Duration
	// DownloadTTL bounds the lifetime of presigned file URLs.
	DownloadTTL time.Duration
	Logger      *slog.Logger
}

// Client performs every domain operation against the hosted services. Each
// method either returns its result or an *Error.
type Client struct {
	accounts repositories.AccountRepository
	users    repositories.UserRepository
	posts    repositories.PostRepository
	saves    repositories.SavedPostRepository
	files    FileStore
	signer   *tokens.Signer
	firebase IDTokenVerifier

	publicURL   string
	sessionTTL  time.Duration
	downloadTTL time.Duration
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

func New(d Deps) *Client {
	c := &Client{
		accounts:    d.Accounts,
		users:       d.Users,
		posts:       d.Posts,
		saves:       d.Saves,
		files:       d.Files,
		signer:      d.Signer,
		firebase:    d.Firebase,
		publicURL:   d.PublicURL,
		sessionTTL:  d.SessionTTL,
		downloadTTL: d.DownloadTTL,
		validate:    validator.New(),
		logger:      d.Logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sessionTTL <= 0 {
		c.sessionTTL = 72 * time.Hour
	}
	if c.downloadTTL <= 0 {
		c.downloadTTL = time.Hour
	}
	return c
}

// fail logs and wraps err.
func (c *Client) fail(op string, kind Kind, err error) error {
	c.logger.Error("remote operation failed", "op", op, "kind", string(kind), "error", err)
	return &Error{Op: op, Kind: kind, Err: err}
}

// readFail classifies a store read error.
func (c *Client) readFail(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.fail(op, KindNotFound, err)
	case errors.Is(err, repositories.ErrInvalidID):
		return c.fail(op, KindValidation, err)
	default:
		return c.fail(op, KindRequest, err)
	}
}

// writeFail classifies a store write error.
func (c *Client) writeFail(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.fail(op, KindNotFound, err)
	case errors.Is(err, repositories.ErrInvalidID), errors.Is(err, repositories.ErrDuplicate):
		return c.fail(op, KindValidation, err)
	default:
		return c.fail(op, KindDocumentWrite, err)
	}
}

func (c *Client) check(op string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return c.fail(op, KindValidation, err)
	}
	return nil
}

// require fails with KindValidation when a value is empty. Arguments
// alternate between field name and value.
func (c *Client) require(op string, nameValues ...string) error {
	for i := 0; i+1 < len(nameValues); i += 2 {
		if nameValues[i+1] == "" {
			return c.fail(op, KindValidation, fmt.Errorf("%s is required", nameValues[i]))
		}
	}
	return nil
}

// uploadImage stores f and returns its id and preview URL. Nothing is left
// in storage when it fails.
func (c *Client) uploadImage(ctx context.Context, op string, f *models.File) (id, previewURL string, err error) {
	obj, err := c.files.Put(ctx, f.Name, f.ContentType, f.Size, f.Reader)
	if err != nil {
		return "", "", c.fail(op, KindUpload, err)
	}
	previewURL, err = PreviewURL(c.publicURL, obj.ID)
	if err != nil {
		c.removeFile(ctx, op, obj.ID)
		return "", "", c.fail(op, KindUpload, err)
	}
	return obj.ID, previewURL, nil
}

// removeFile deletes a file that no document references any more. It runs
// even when ctx is already cancelled; a failure only leaves an orphan and is
// logged.
func (c *Client) removeFile(ctx context.Context, op, id string) {
	if err := c.files.Remove(context.WithoutCancel(ctx), id); err != nil {
		c.logger.Error("failed to delete unreferenced file", "op", op, "file_id", id, "error", err)
	}
}

// FileDownloadURL returns a presigned download address of a stored file.
func (c *Client) FileDownloadURL(ctx context.Context, fileID string) (string, error) {
	const op = "getFileDownload"
	if err := c.require(op, "fileId", fileID); err != nil {
		return "", err
	}
	u, err := c.files.PresignGet(ctx, fileID, c.downloadTTL)
	if err != nil {
		return "", c.fail(op, KindRequest, err)
	}
	return u.String(), nil
}
