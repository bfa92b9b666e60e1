package queries

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/remote"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRemote keeps posts newest first and counts calls per operation.
type fakeRemote struct {
	mu    sync.Mutex
	posts []models.Post
	calls map[string]int
	err   error

	// postGate, when set, holds GetPostByID until closed.
	postGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: map[string]int{}}
}

func (f *fakeRemote) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.err != nil {
		return &remote.Error{Op: op, Kind: remote.KindDocumentWrite, Err: f.err}
	}
	return nil
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) CreateAccount(_ context.Context, in models.NewUser) (*models.User, error) {
	if err := f.record("createAccount"); err != nil {
		return nil, err
	}
	return &models.User{ID: primitive.NewObjectID(), Name: in.Name, Email: in.Email}, nil
}

func (f *fakeRemote) SignIn(context.Context, models.SignIn) (*models.Session, error) {
	if err := f.record("signIn"); err != nil {
		return nil, err
	}
	return &models.Session{ID: "s1", AccountID: "a1", Token: "token"}, nil
}

func (f *fakeRemote) SignInWithFirebase(context.Context, models.FirebaseSignIn) (*models.Session, error) {
	if err := f.record("signInWithFirebase"); err != nil {
		return nil, err
	}
	return &models.Session{ID: "s2", AccountID: "a2", Token: "token"}, nil
}

func (f *fakeRemote) SignOut(context.Context, string) error { return f.record("signOut") }

func (f *fakeRemote) GetAccount(_ context.Context, sessionID string) (*models.Account, error) {
	if err := f.record("getAccount"); err != nil {
		return nil, err
	}
	return &models.Account{ID: "account-of-" + sessionID}, nil
}

func (f *fakeRemote) GetCurrentUser(_ context.Context, sessionID string) (*models.CurrentUser, error) {
	if err := f.record("getCurrentUser"); err != nil {
		return nil, err
	}
	return &models.CurrentUser{User: models.User{AccountID: "account-of-" + sessionID}}, nil
}

func (f *fakeRemote) CreatePost(_ context.Context, in models.NewPost) (*models.Post, error) {
	if err := f.record("createPost"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	post := models.Post{ID: primitive.NewObjectID(), Creator: in.UserID, Caption: in.Caption}
	f.posts = append([]models.Post{post}, f.posts...)
	return &post, nil
}

func (f *fakeRemote) UpdatePost(_ context.Context, in models.UpdatePost) (*models.Post, error) {
	if err := f.record("updatePost"); err != nil {
		return nil, err
	}
	return &models.Post{Caption: in.Caption}, nil
}

func (f *fakeRemote) DeletePost(context.Context, models.DeletePost) error {
	return f.record("deletePost")
}

func (f *fakeRemote) GetPostByID(_ context.Context, postID string) (*models.Post, error) {
	if f.postGate != nil {
		<-f.postGate
	}
	if err := f.record("getPostById"); err != nil {
		return nil, err
	}
	return &models.Post{Caption: "post " + postID}, nil
}

func (f *fakeRemote) GetRecentPosts(context.Context) ([]models.Post, error) {
	if err := f.record("getRecentPosts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeRemote) GetInfinitePosts(_ context.Context, cursor string) ([]models.Post, error) {
	if err := f.record("getInfinitePosts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if cursor != "" {
		start = -1
		for i, p := range f.posts {
			if p.ID.Hex() == cursor {
				start = i + 1
			}
		}
		if start < 0 {
			return nil, &remote.Error{Op: "getInfinitePosts", Kind: remote.KindNotFound, Err: fmt.Errorf("cursor %s", cursor)}
		}
	}
	end := min(start+remote.InfinitePageSize, len(f.posts))
	return append([]models.Post(nil), f.posts[start:end]...), nil
}

func (f *fakeRemote) SearchPosts(context.Context, string) ([]models.Post, error) {
	return nil, f.record("searchPosts")
}

func (f *fakeRemote) GetUserPosts(context.Context, string) ([]models.Post, error) {
	return nil, f.record("getUserPosts")
}

func (f *fakeRemote) LikePost(_ context.Context, in models.LikePost) (*models.Post, error) {
	if err := f.record("likePost"); err != nil {
		return nil, err
	}
	return &models.Post{Likes: in.Likes}, nil
}

func (f *fakeRemote) SavePost(_ context.Context, in models.SavePost) (*models.Save, error) {
	if err := f.record("savePost"); err != nil {
		return nil, err
	}
	return &models.Save{User: in.UserID, Post: in.PostID}, nil
}

func (f *fakeRemote) DeleteSavedPost(context.Context, string) error {
	return f.record("deleteSavedPost")
}

func (f *fakeRemote) GetUsers(context.Context, int) ([]models.User, error) {
	return nil, f.record("getUsers")
}

func (f *fakeRemote) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	if err := f.record("getUserById"); err != nil {
		return nil, err
	}
	return &models.User{Name: userID}, nil
}

func (f *fakeRemote) UpdateUser(_ context.Context, in models.UpdateUser) (*models.User, error) {
	if err := f.record("updateUser"); err != nil {
		return nil, err
	}
	return &models.User{Name: in.Name}, nil
}

func (f *fakeRemote) FileDownloadURL(_ context.Context, fileID string) (string, error) {
	if err := f.record("fileDownloadURL"); err != nil {
		return "", err
	}
	return "https://objects.test/" + fileID, nil
}
