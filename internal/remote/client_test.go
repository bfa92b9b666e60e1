package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_UploadsBeforeWriting(t *testing.T) {
	c, b := newTestClient(t)

	post, err := c.CreatePost(context.Background(), models.NewPost{
		UserID:  "u1",
		Caption: "Sunset",
		File:    image("sunset.jpg"),
		Tags:    "travel, food ,fun",
	})
	require.NoError(t, err)

	assert.True(t, b.files.has(post.ImageID))
	assert.Equal(t, []string{"travel", "food", "fun"}, post.Tags)
	want, err := PreviewURL(testPublicURL, post.ImageID)
	require.NoError(t, err)
	assert.Equal(t, want, post.ImageURL)

	stored, err := c.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, post.ImageID, stored.ImageID)
}

func TestCreatePost_WriteFailureDeletesUpload(t *testing.T) {
	c, b := newTestClient(t)
	b.posts.writeErr = errStoreDown

	_, err := c.CreatePost(context.Background(), models.NewPost{UserID: "u1", File: image("a.jpg")})
	require.ErrorIs(t, err, ErrDocumentWrite)
	assert.Equal(t, 0, b.files.count())
	assert.Equal(t, []string{"file-1"}, b.files.removed)
}

func TestCreatePost_UploadFailureWritesNothing(t *testing.T) {
	c, b := newTestClient(t)
	b.files.putErr = errStoreDown

	_, err := c.CreatePost(context.Background(), models.NewPost{UserID: "u1", File: image("a.jpg")})
	require.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, b.posts.posts)
}

func TestCreatePost_RejectsMissingFile(t *testing.T) {
	c, b := newTestClient(t)

	_, err := c.CreatePost(context.Background(), models.NewPost{UserID: "u1", Caption: "no image"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, b.files.count())
}

func createPost(t *testing.T, c *Client, caption string) *models.Post {
	t.Helper()
	post, err := c.CreatePost(context.Background(), models.NewPost{UserID: "u1", Caption: caption, File: image(caption + ".jpg")})
	require.NoError(t, err)
	return post
}

func TestUpdatePost_ReplacesImageAfterWrite(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "first")

	updated, err := c.UpdatePost(context.Background(), models.UpdatePost{
		PostID:   post.ID.Hex(),
		Caption:  "second",
		ImageID:  post.ImageID,
		ImageURL: post.ImageURL,
		File:     image("second.jpg"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, post.ImageID, updated.ImageID)
	assert.True(t, b.files.has(updated.ImageID))
	assert.False(t, b.files.has(post.ImageID))
	assert.Equal(t, "second", updated.Caption)
}

func TestUpdatePost_WriteFailureKeepsOldImage(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "first")
	b.posts.writeErr = errStoreDown

	_, err := c.UpdatePost(context.Background(), models.UpdatePost{
		PostID:   post.ID.Hex(),
		ImageID:  post.ImageID,
		ImageURL: post.ImageURL,
		File:     image("second.jpg"),
	})
	require.ErrorIs(t, err, ErrDocumentWrite)

	assert.True(t, b.files.has(post.ImageID))
	assert.Equal(t, 1, b.files.count())
	assert.Equal(t, []string{"file-2"}, b.files.removed)
}

func TestUpdatePost_WithoutFileKeepsImage(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "first")

	updated, err := c.UpdatePost(context.Background(), models.UpdatePost{
		PostID:   post.ID.Hex(),
		Caption:  "edited",
		ImageID:  post.ImageID,
		ImageURL: post.ImageURL,
		Tags:     "a,b",
	})
	require.NoError(t, err)
	assert.Equal(t, post.ImageID, updated.ImageID)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.Empty(t, b.files.removed)
}

func TestDeletePost(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "bye")

	err := c.DeletePost(context.Background(), models.DeletePost{PostID: post.ID.Hex()})
	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, b.files.has(post.ImageID))

	require.NoError(t, c.DeletePost(context.Background(), models.DeletePost{PostID: post.ID.Hex(), ImageID: post.ImageID}))
	assert.False(t, b.files.has(post.ImageID))

	_, err = c.GetPostByID(context.Background(), post.ID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePost_MissingDocumentKeepsFile(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "kept")

	err := c.DeletePost(context.Background(), models.DeletePost{PostID: "65f000000000000000000000", ImageID: post.ImageID})
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, b.files.has(post.ImageID))
}

func TestGetInfinitePosts_PagesStrictlyAfterCursor(t *testing.T) {
	c, _ := newTestClient(t)
	for i := 0; i < InfinitePageSize+2; i++ {
		createPost(t, c, "p")
	}

	first, err := c.GetInfinitePosts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, first, InfinitePageSize)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].UpdatedAt.After(first[i-1].UpdatedAt))
	}

	second, err := c.GetInfinitePosts(context.Background(), first[len(first)-1].ID.Hex())
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, p := range second {
		for _, q := range first {
			assert.NotEqual(t, q.ID, p.ID)
		}
	}
}

func TestGetRecentPosts_NewestFirst(t *testing.T) {
	c, _ := newTestClient(t)
	createPost(t, c, "old")
	createPost(t, c, "new")

	posts, err := c.GetRecentPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Caption)
}

func TestSearchPosts(t *testing.T) {
	c, _ := newTestClient(t)
	createPost(t, c, "Beach day")
	createPost(t, c, "mountains")

	_, err := c.SearchPosts(context.Background(), "")
	require.ErrorIs(t, err, ErrValidation)

	posts, err := c.SearchPosts(context.Background(), "beach")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Beach day", posts[0].Caption)
}

func TestLikePost_ChecksTheLikeUpdate(t *testing.T) {
	c, b := newTestClient(t)
	post := createPost(t, c, "liked")

	updated, err := c.LikePost(context.Background(), models.LikePost{PostID: post.ID.Hex(), Likes: []string{"u1", "u2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, updated.Likes)

	_, err = c.LikePost(context.Background(), models.LikePost{PostID: "65f000000000000000000000", Likes: []string{"u1"}})
	require.ErrorIs(t, err, ErrNotFound)

	b.posts.writeErr = errStoreDown
	_, err = c.LikePost(context.Background(), models.LikePost{PostID: post.ID.Hex(), Likes: nil})
	require.ErrorIs(t, err, ErrDocumentWrite)
	assert.Equal(t, "likePost", errOp(err))
}

func errOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

func TestSaves(t *testing.T) {
	c, _ := newTestClient(t)

	save, err := c.SavePost(context.Background(), models.SavePost{PostID: "p1", UserID: "u1"})
	require.NoError(t, err)

	_, err = c.SavePost(context.Background(), models.SavePost{PostID: "p1", UserID: "u1"})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.DeleteSavedPost(context.Background(), save.ID.Hex()))
	require.ErrorIs(t, c.DeleteSavedPost(context.Background(), save.ID.Hex()), ErrNotFound)
	require.ErrorIs(t, c.DeleteSavedPost(context.Background(), ""), ErrValidation)
}

func signUp(t *testing.T, c *Client) *models.User {
	t.Helper()
	user, err := c.CreateAccount(context.Background(), models.NewUser{
		Name:     "Ada Lovelace",
		Username: "ada",
		Email:    "Ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestCreateAccount_WritesProfileWithGeneratedAvatar(t *testing.T) {
	c, b := newTestClient(t)
	user := signUp(t, c)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, AvatarURL(testPublicURL, "Ada Lovelace"), user.ImageURL)
	assert.Empty(t, user.ImageID)
	assert.Len(t, b.accounts.accounts, 1)

	_, err := c.CreateAccount(context.Background(), models.NewUser{
		Name: "Ada Again", Username: "ada2", Email: "ada@example.com", Password: "another pass",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateAccount_ProfileFailureRemovesAccount(t *testing.T) {
	c, b := newTestClient(t)
	b.users.writeErr = errStoreDown

	_, err := c.CreateAccount(context.Background(), models.NewUser{
		Name: "Ada Lovelace", Username: "ada", Email: "ada@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrDocumentWrite)
	assert.Empty(t, b.accounts.accounts)
}

func TestSignInAndCurrentUser(t *testing.T) {
	c, b := newTestClient(t)
	user := signUp(t, c)

	_, err := c.SignIn(context.Background(), models.SignIn{Email: "ada@example.com", Password: "wrong password"})
	require.ErrorIs(t, err, ErrAuth)

	session, err := c.SignIn(context.Background(), models.SignIn{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	claims, err := b.signer.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.ID)

	_, err = c.SavePost(context.Background(), models.SavePost{PostID: "p1", UserID: user.ID.Hex()})
	require.NoError(t, err)

	current, err := c.GetCurrentUser(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	require.Len(t, current.Saves, 1)
	assert.Equal(t, "p1", current.Saves[0].Post)

	require.NoError(t, c.SignOut(context.Background(), session.ID))
	_, err = c.GetCurrentUser(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrAuth)
}

func TestGetAccount_ExpiredSession(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c)
	session, err := c.SignIn(context.Background(), models.SignIn{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	c.now = func() time.Time { return session.ExpiresAt }
	_, err = c.GetAccount(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrAuth)

	_, err = c.GetAccount(context.Background(), "")
	require.ErrorIs(t, err, ErrAuth)
}

type stubVerifier struct {
	token *fbauth.Token
	err   error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return s.token, s.err
}

func TestSignInWithFirebase(t *testing.T) {
	c, b := newTestClient(t)

	_, err := c.SignInWithFirebase(context.Background(), models.FirebaseSignIn{IDToken: "tok"})
	require.ErrorIs(t, err, ErrAuth)

	signUp(t, c)
	c.firebase = stubVerifier{token: &fbauth.Token{
		UID:    "fb-1",
		Claims: map[string]interface{}{"email": "ada@example.com", "name": "Ada"},
	}}

	session, err := c.SignInWithFirebase(context.Background(), models.FirebaseSignIn{IDToken: "tok"})
	require.NoError(t, err)
	assert.Len(t, b.accounts.accounts, 1)
	assert.Len(t, b.users.users, 1)

	account, err := c.GetAccount(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, account.FirebaseUID)
	assert.Equal(t, "fb-1", *account.FirebaseUID)

	c.firebase = stubVerifier{token: &fbauth.Token{
		UID:    "fb-2",
		Claims: map[string]interface{}{"email": "grace@example.com"},
	}}
	_, err = c.SignInWithFirebase(context.Background(), models.FirebaseSignIn{IDToken: "tok"})
	require.NoError(t, err)
	assert.Len(t, b.accounts.accounts, 2)
	assert.Len(t, b.users.users, 2)

	c.firebase = stubVerifier{err: errors.New("token expired")}
	_, err = c.SignInWithFirebase(context.Background(), models.FirebaseSignIn{IDToken: "tok"})
	require.ErrorIs(t, err, ErrAuth)
}

func TestUpdateUser_ImageInvariants(t *testing.T) {
	c, b := newTestClient(t)
	user := signUp(t, c)

	updated, err := c.UpdateUser(context.Background(), models.UpdateUser{
		UserID:   user.ID.Hex(),
		Name:     "Ada L.",
		ImageURL: user.ImageURL,
		File:     image("me.jpg"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.ImageID)
	assert.Empty(t, b.files.removed)

	b.users.writeErr = errStoreDown
	_, err = c.UpdateUser(context.Background(), models.UpdateUser{
		UserID:   user.ID.Hex(),
		Name:     "Ada L.",
		ImageID:  updated.ImageID,
		ImageURL: updated.ImageURL,
		File:     image("me2.jpg"),
	})
	require.ErrorIs(t, err, ErrDocumentWrite)
	assert.True(t, b.files.has(updated.ImageID))

	b.users.writeErr = nil
	again, err := c.UpdateUser(context.Background(), models.UpdateUser{
		UserID:   user.ID.Hex(),
		Name:     "Ada L.",
		ImageID:  updated.ImageID,
		ImageURL: updated.ImageURL,
		File:     image("me3.jpg"),
	})
	require.NoError(t, err)
	assert.False(t, b.files.has(updated.ImageID))
	assert.True(t, b.files.has(again.ImageID))
}

func TestGetUsers(t *testing.T) {
	c, _ := newTestClient(t)
	signUp(t, c)

	_, err := c.GetUsers(context.Background(), -1)
	require.ErrorIs(t, err, ErrValidation)

	users, err := c.GetUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = c.GetUserByID(context.Background(), "65f000000000000000000000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileDownloadURL(t *testing.T) {
	c, _ := newTestClient(t)

	u, err := c.FileDownloadURL(context.Background(), "file-9")
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/images/file-9?ttl=3600", u)

	_, err = c.FileDownloadURL(context.Background(), "")
	require.ErrorIs(t, err, ErrValidation)
}
