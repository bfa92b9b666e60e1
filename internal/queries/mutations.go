package queries

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/cache"
	"github.com/anonto42/snapgram/backend/internal/events"
	"github.com/anonto42/snapgram/backend/internal/models"
)

func (q *Client) bindMutations() {
	q.createAccount = cache.Mutation[models.NewUser, *models.User]{
		Name: "createUserAccount",
		Fn:   q.remote.CreateAccount,
		Invalidates: func(models.NewUser, *models.User) []cache.Key {
			return []cache.Key{AllUsers()}
		},
		OnSuccess: publish[models.NewUser, *models.User](q, "createUserAccount"),
	}
	q.signIn = cache.Mutation[models.SignIn, *models.Session]{
		Name: "signInAccount",
		Fn:   q.remote.SignIn,
	}
	q.signInFirebase = cache.Mutation[models.FirebaseSignIn, *models.Session]{
		Name: "signInWithFirebase",
		Fn:   q.remote.SignInWithFirebase,
		// A first federated sign-in may create the user document.
		Invalidates: func(models.FirebaseSignIn, *models.Session) []cache.Key {
			return []cache.Key{AllUsers()}
		},
	}
	q.signOut = cache.Mutation[string, struct{}]{
		Name: "signOutAccount",
		Fn: func(ctx context.Context, sessionID string) (struct{}, error) {
			return struct{}{}, q.remote.SignOut(ctx, sessionID)
		},
		Invalidates: func(sessionID string, _ struct{}) []cache.Key {
			return []cache.Key{CurrentUserKey(sessionID), AccountKey(sessionID)}
		},
	}

	q.createPost = cache.Mutation[models.NewPost, *models.Post]{
		Name: "createPost",
		Fn:   q.remote.CreatePost,
		Invalidates: func(models.NewPost, *models.Post) []cache.Key {
			return []cache.Key{RecentPostsKey()}
		},
		OnSuccess: publish[models.NewPost, *models.Post](q, "createPost"),
	}
	q.updatePost = cache.Mutation[models.UpdatePost, *models.Post]{
		Name: "updatePost",
		Fn:   q.remote.UpdatePost,
		Invalidates: func(in models.UpdatePost, _ *models.Post) []cache.Key {
			return []cache.Key{PostByIDKey(in.PostID)}
		},
		OnSuccess: publish[models.UpdatePost, *models.Post](q, "updatePost"),
	}
	q.deletePost = cache.Mutation[models.DeletePost, struct{}]{
		Name: "deletePost",
		Fn: func(ctx context.Context, in models.DeletePost) (struct{}, error) {
			return struct{}{}, q.remote.DeletePost(ctx, in)
		},
		Invalidates: func(in models.DeletePost, _ struct{}) []cache.Key {
			return []cache.Key{
				RecentPostsKey(),
				PostListKey(),
				PostByIDKey(in.PostID),
				cache.NewKey(KeyUserPosts),
				FilePreviewKey(in.ImageID),
			}
		},
		OnSuccess: publish[models.DeletePost, struct{}](q, "deletePost"),
	}
	q.likePost = cache.Mutation[models.LikePost, *models.Post]{
		Name: "likePost",
		Fn:   q.remote.LikePost,
		Invalidates: func(in models.LikePost, _ *models.Post) []cache.Key {
			return []cache.Key{PostByIDKey(in.PostID), PostListKey(), AllCurrentUsers()}
		},
		OnSuccess: publish[models.LikePost, *models.Post](q, "likePost"),
	}
	q.savePost = cache.Mutation[models.SavePost, *models.Save]{
		Name: "savePost",
		Fn:   q.remote.SavePost,
		Invalidates: func(models.SavePost, *models.Save) []cache.Key {
			return []cache.Key{AllPostsByID(), PostListKey(), AllCurrentUsers()}
		},
		OnSuccess: publish[models.SavePost, *models.Save](q, "savePost"),
	}
	q.deleteSavedPost = cache.Mutation[string, struct{}]{
		Name: "deleteSavedPost",
		Fn: func(ctx context.Context, saveID string) (struct{}, error) {
			return struct{}{}, q.remote.DeleteSavedPost(ctx, saveID)
		},
		Invalidates: func(string, struct{}) []cache.Key {
			return []cache.Key{AllPostsByID(), PostListKey(), AllCurrentUsers()}
		},
		OnSuccess: publish[string, struct{}](q, "deleteSavedPost"),
	}
	q.updateUser = cache.Mutation[models.UpdateUser, *models.User]{
		Name: "updateUser",
		Fn:   q.remote.UpdateUser,
		Invalidates: func(in models.UpdateUser, _ *models.User) []cache.Key {
			return []cache.Key{AllCurrentUsers(), UserByIDKey(in.UserID), AllUsers()}
		},
		OnSuccess: publish[models.UpdateUser, *models.User](q, "updateUser"),
	}
}

// publish announces a successful mutation. Event delivery never fails the
// mutation.
func publish[In, Out any](q *Client, name string) func(context.Context, In, Out, []cache.Key) {
	return func(ctx context.Context, _ In, _ Out, keys []cache.Key) {
		ev := events.MutationEvent{Name: name, Keys: make([][]string, len(keys)), At: q.now().UTC()}
		for i, k := range keys {
			ev.Keys[i] = []string(k)
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.eventTimeout)
		defer cancel()
		if err := q.events.PublishMutation(ctx, ev); err != nil {
			q.logger.Warn("failed to publish mutation event", "mutation", name, "error", err)
		}
	}
}

func (q *Client) CreateUserAccount(ctx context.Context, in models.NewUser) (*models.User, error) {
	return q.createAccount.Run(ctx, q.cache, in)
}

func (q *Client) SignIn(ctx context.Context, in models.SignIn) (*models.Session, error) {
	return q.signIn.Run(ctx, q.cache, in)
}

func (q *Client) SignInWithFirebase(ctx context.Context, in models.FirebaseSignIn) (*models.Session, error) {
	return q.signInFirebase.Run(ctx, q.cache, in)
}

func (q *Client) SignOut(ctx context.Context, sessionID string) error {
	_, err := q.signOut.Run(ctx, q.cache, sessionID)
	return err
}

func (q *Client) CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	return q.createPost.Run(ctx, q.cache, in)
}

func (q *Client) UpdatePost(ctx context.Context, in models.UpdatePost) (*models.Post, error) {
	return q.updatePost.Run(ctx, q.cache, in)
}

func (q *Client) DeletePost(ctx context.Context, in models.DeletePost) error {
	_, err := q.deletePost.Run(ctx, q.cache, in)
	return err
}

func (q *Client) LikePost(ctx context.Context, in models.LikePost) (*models.Post, error) {
	return q.likePost.Run(ctx, q.cache, in)
}

func (q *Client) SavePost(ctx context.Context, in models.SavePost) (*models.Save, error) {
	return q.savePost.Run(ctx, q.cache, in)
}

func (q *Client) DeleteSavedPost(ctx context.Context, saveID string) error {
	_, err := q.deleteSavedPost.Run(ctx, q.cache, saveID)
	return err
}

func (q *Client) UpdateUser(ctx context.Context, in models.UpdateUser) (*models.User, error) {
	return q.updateUser.Run(ctx, q.cache, in)
}
