package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/anonto42/snapgram/backend/internal/events"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/remote"
)

// Freshness windows of queries that must not follow the cache default.
const (
	accountStaleTime     = 30 * time.Second
	filePreviewStaleTime = 10 * time.Minute
)

// eventTimeout bounds how long a successful mutation waits on its event.
const eventTimeout = 2 * time.Second

// Remote is the data client the queries and mutations are bound to.
type Remote interface {
	CreateAccount(ctx context.Context, in models.NewUser) (*models.User, error)
	SignIn(ctx context.Context, in models.SignIn) (*models.Session, error)
	SignInWithFirebase(ctx context.Context, in models.FirebaseSignIn) (*models.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	GetAccount(ctx context.Context, sessionID string) (*models.Account, error)
	GetCurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)

	CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, in models.UpdatePost) (*models.Post, error)
	DeletePost(ctx context.Context, in models.DeletePost) error
	GetPostByID(ctx context.Context, postID string) (*models.Post, error)
	GetRecentPosts(ctx context.Context) ([]models.Post, error)
	GetInfinitePosts(ctx context.Context, cursor string) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
	GetUserPosts(ctx context.Context, userID string) ([]models.Post, error)
	LikePost(ctx context.Context, in models.LikePost) (*models.Post, error)

	SavePost(ctx context.Context, in models.SavePost) (*models.Save, error)
	DeleteSavedPost(ctx context.Context, saveID string) error

	GetUsers(ctx context.Context, limit int) ([]models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, in models.UpdateUser) (*models.User, error)

	FileDownloadURL(ctx context.Context, fileID string) (string, error)
}

var _ Remote = (*remote.Client)(nil)

// Client serves reads from the query cache and runs writes as mutations
// that invalidate the queries they affect.
type Client struct {
	cache  *cache.Cache
	remote Remote
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time

	eventTimeout time.Duration

	createAccount   cache.Mutation[models.NewUser, *models.User]
	signIn          cache.Mutation[models.SignIn, *models.Session]
	signInFirebase  cache.Mutation[models.FirebaseSignIn, *models.Session]
	signOut         cache.Mutation[string, struct{}]
	createPost      cache.Mutation[models.NewPost, *models.Post]
	updatePost      cache.Mutation[models.UpdatePost, *models.Post]
	deletePost      cache.Mutation[models.DeletePost, struct{}]
	likePost        cache.Mutation[models.LikePost, *models.Post]
	savePost        cache.Mutation[models.SavePost, *models.Save]
	deleteSavedPost cache.Mutation[string, struct{}]
	updateUser      cache.Mutation[models.UpdateUser, *models.User]
}

// New binds r to c. A nil publisher drops mutation events.
func New(c *cache.Cache, r Remote, pub events.Publisher, logger *slog.Logger) *Client {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := &Client{cache: c, remote: r, events: pub, logger: logger, now: time.Now, eventTimeout: eventTimeout}
	q.bindMutations()
	return q
}

// Cache returns the underlying query cache.
func (q *Client) Cache() *cache.Cache { return q.cache }

// HoldSession keeps the account and current user entries of a session in
// the cache until the returned release function is called.
func (q *Client) HoldSession(sessionID string) (release func()) {
	account := q.cache.Subscribe(AccountKey(sessionID))
	user := q.cache.Subscribe(CurrentUserKey(sessionID))
	return func() {
		user()
		account()
	}
}

// Account resolves a session to its account.
func (q *Client) Account(ctx context.Context, sessionID string) (*models.Account, error) {
	return cache.Fetch(ctx, q.cache, AccountKey(sessionID), func(ctx context.Context) (*models.Account, error) {
		return q.remote.GetAccount(ctx, sessionID)
	}, cache.StaleTime(accountStaleTime))
}

// CurrentUser returns the signed-in user with their saves.
func (q *Client) CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error) {
	return cache.Fetch(ctx, q.cache, CurrentUserKey(sessionID), func(ctx context.Context) (*models.CurrentUser, error) {
		return q.remote.GetCurrentUser(ctx, sessionID)
	})
}

func (q *Client) RecentPosts(ctx context.Context) ([]models.Post, error) {
	return cache.Fetch(ctx, q.cache, RecentPostsKey(), q.remote.GetRecentPosts)
}

func (q *Client) PostByID(ctx context.Context, postID string) (*models.Post, error) {
	return cache.Fetch(ctx, q.cache, PostByIDKey(postID), func(ctx context.Context) (*models.Post, error) {
		return q.remote.GetPostByID(ctx, postID)
	})
}

// InfinitePosts returns a walker over the feed ordered by last update.
func (q *Client) InfinitePosts() *cache.InfiniteQuery[models.Post] {
	return cache.NewInfiniteQuery(q.cache, PostListKey(), remote.InfinitePageSize,
		q.remote.GetInfinitePosts,
		func(p models.Post) string { return p.ID.Hex() })
}

// PostsPage returns the feed page after cursor together with the cursor of
// the page that follows it. hasNext is false once a short page was served.
func (q *Client) PostsPage(ctx context.Context, cursor string) (page []models.Post, next string, hasNext bool, err error) {
	walker := q.InfinitePosts().StartAfter(cursor)
	page, err = walker.FetchNextPage(ctx)
	if err != nil {
		return nil, "", false, err
	}
	if !walker.HasNextPage() {
		return page, "", false, nil
	}
	return page, walker.NextCursor(), true, nil
}

func (q *Client) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	return cache.Fetch(ctx, q.cache, SearchPostsKey(term), func(ctx context.Context) ([]models.Post, error) {
		return q.remote.SearchPosts(ctx, term)
	})
}

func (q *Client) UserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	return cache.Fetch(ctx, q.cache, UserPostsKey(userID), func(ctx context.Context) ([]models.Post, error) {
		return q.remote.GetUserPosts(ctx, userID)
	})
}

func (q *Client) Users(ctx context.Context, limit int) ([]models.User, error) {
	return cache.Fetch(ctx, q.cache, UsersKey(limit), func(ctx context.Context) ([]models.User, error) {
		return q.remote.GetUsers(ctx, limit)
	})
}

func (q *Client) UserByID(ctx context.Context, userID string) (*models.User, error) {
	return cache.Fetch(ctx, q.cache, UserByIDKey(userID), func(ctx context.Context) (*models.User, error) {
		return q.remote.GetUserByID(ctx, userID)
	})
}

// FilePreview returns a download address of a stored image. Addresses are
// presigned, so they are cached for less than their lifetime.
func (q *Client) FilePreview(ctx context.Context, fileID string) (string, error) {
	return cache.Fetch(ctx, q.cache, FilePreviewKey(fileID), func(ctx context.Context) (string, error) {
		return q.remote.FileDownloadURL(ctx, fileID)
	}, cache.StaleTime(filePreviewStaleTime))
}
