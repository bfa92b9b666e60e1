package queries

import (
	"strconv"

	"github.com/anonto42/snapgram/backend/internal/cache"
)

// Operation names of the cached queries. A key is one of these followed by
// the query parameters; a bare name invalidates every entry of the query.
const (
	KeyRecentPosts   = "getRecentPosts"
	KeyPostByID      = "getPostById"
	KeyInfinitePosts = "getInfinitePosts"
	KeySearchPosts   = "searchPosts"
	KeyUserPosts     = "getUserPosts"
	KeyCurrentUser   = "getCurrentUser"
	KeyAccount       = "getAccount"
	KeyUsers         = "getUsers"
	KeyUserByID      = "getUserById"
	KeyFilePreview   = "getFilePreview"
)

func RecentPostsKey() cache.Key { return cache.NewKey(KeyRecentPosts) }

func PostByIDKey(postID string) cache.Key { return cache.NewKey(KeyPostByID, postID) }

// AllPostsByID matches the post-by-id entry of every post.
func AllPostsByID() cache.Key { return cache.NewKey(KeyPostByID) }

// PostListKey is the base of the infinite feed; pages extend it with their
// cursor.
func PostListKey() cache.Key { return cache.NewKey(KeyInfinitePosts) }

func SearchPostsKey(term string) cache.Key { return cache.NewKey(KeySearchPosts, term) }

func UserPostsKey(userID string) cache.Key { return cache.NewKey(KeyUserPosts, userID) }

func CurrentUserKey(sessionID string) cache.Key { return cache.NewKey(KeyCurrentUser, sessionID) }

// AllCurrentUsers matches the current-user entry of every session.
func AllCurrentUsers() cache.Key { return cache.NewKey(KeyCurrentUser) }

func AccountKey(sessionID string) cache.Key { return cache.NewKey(KeyAccount, sessionID) }

func UsersKey(limit int) cache.Key { return cache.NewKey(KeyUsers, strconv.Itoa(limit)) }

// AllUsers matches the user list of every limit.
func AllUsers() cache.Key { return cache.NewKey(KeyUsers) }

func UserByIDKey(userID string) cache.Key { return cache.NewKey(KeyUserByID, userID) }

func FilePreviewKey(fileID string) cache.Key { return cache.NewKey(KeyFilePreview, fileID) }
