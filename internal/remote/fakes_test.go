package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"github.com/anonto42/snapgram/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testPublicURL = "https://snapgram.test"

var errStoreDown = errors.New("store unavailable")

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string]storage.Object
	removed []string
	seq     int
	putErr  error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string]storage.Object{}}
}

func (f *fakeFiles) Put(_ context.Context, name, contentType string, size int64, r io.Reader) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	f.seq++
	obj := storage.Object{ID: fmt.Sprintf("file-%d", f.seq), Name: name, ContentType: contentType, Size: size}
	f.objects[obj.ID] = obj
	return &obj, nil
}

func (f *fakeFiles) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeFiles) PresignGet(_ context.Context, id string, ttl time.Duration) (*url.URL, error) {
	return url.Parse(fmt.Sprintf("https://objects.test/images/%s?ttl=%d", id, int(ttl.Seconds())))
}

func (f *fakeFiles) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[id]
	return ok
}

func (f *fakeFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakePosts struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	clock    time.Time
	writeErr error
}

func newFakePosts() *fakePosts {
	return &fakePosts{
		posts: map[string]*models.Post{},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *fakePosts) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakePosts) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.tick()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	r.posts[post.ID.Hex()] = &cp
	return nil
}

func (r *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePosts) sorted(less func(a, b *models.Post) bool) []models.Post {
	all := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		out = append(out, *p)
	}
	return out
}

func byCreated(a, b *models.Post) bool { return a.CreatedAt.After(b.CreatedAt) }

func byUpdated(a, b *models.Post) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func (r *fakePosts) GetRecentPosts(_ context.Context, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(byCreated)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePosts) GetPostsAfter(_ context.Context, cursor string, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(byUpdated)
	if cursor != "" {
		start := -1
		for i, p := range out {
			if p.ID.Hex() == cursor {
				start = i + 1
			}
		}
		if start < 0 {
			return nil, repositories.ErrNotFound
		}
		out = out[start:]
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePosts) GetPostsByCreator(_ context.Context, userID string) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.sorted(byCreated) {
		if p.Creator == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePosts) SearchPosts(_ context.Context, term string) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.sorted(byCreated) {
		if strings.Contains(strings.ToLower(p.Caption), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePosts) UpdatePost(_ context.Context, id string, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Caption, p.ImageURL, p.ImageID = post.Caption, post.ImageURL, post.ImageID
	p.Location, p.Tags = post.Location, post.Tags
	p.UpdatedAt = r.tick()
	cp := *p
	return &cp, nil
}

func (r *fakePosts) SetLikes(_ context.Context, id string, likes []string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Likes = append([]string{}, likes...)
	p.UpdatedAt = r.tick()
	cp := *p
	return &cp, nil
}

func (r *fakePosts) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[string]*models.User
	writeErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*models.User{}} }

func (r *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return nil
}

func (r *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsers) GetUserByAccountID(_ context.Context, accountID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AccountID == accountID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUsers) GetUsers(_ context.Context, limit int64) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUsers) UpdateUser(_ context.Context, id string, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.Name, u.Bio, u.ImageURL, u.ImageID = user.Name, user.Bio, user.ImageURL, user.ImageID
	cp := *u
	return &cp, nil
}

type fakeSaves struct {
	mu    sync.Mutex
	saves map[string]*models.Save
}

func newFakeSaves() *fakeSaves { return &fakeSaves{saves: map[string]*models.Save{}} }

func (r *fakeSaves) SavePost(_ context.Context, save *models.Save) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.saves {
		if s.User == save.User && s.Post == save.Post {
			return repositories.ErrDuplicate
		}
	}
	save.ID = primitive.NewObjectID()
	cp := *save
	r.saves[save.ID.Hex()] = &cp
	return nil
}

func (r *fakeSaves) DeleteSave(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saves[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.saves, id)
	return nil
}

func (r *fakeSaves) GetSavesByUser(_ context.Context, userID string) ([]models.Save, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Save
	for _, s := range r.saves {
		if s.User == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	sessions map[string]*models.Session
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*models.Account{}, sessions: map[string]*models.Session{}}
}

func (r *fakeAccounts) CreateAccount(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return repositories.ErrDuplicate
		}
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccounts) find(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAccounts) GetAccountByID(_ context.Context, id string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.ID == id })
}

func (r *fakeAccounts) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.Email == email })
}

func (r *fakeAccounts) GetAccountByFirebaseUID(_ context.Context, uid string) (*models.Account, error) {
	return r.find(func(a *models.Account) bool { return a.FirebaseUID != nil && *a.FirebaseUID == uid })
}

func (r *fakeAccounts) UpdateAccount(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccounts) DeleteAccount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	for sid, s := range r.sessions {
		if s.AccountID == id {
			delete(r.sessions, sid)
		}
	}
	return nil
}

func (r *fakeAccounts) CreateSession(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeAccounts) GetSession(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeAccounts) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type backend struct {
	accounts *fakeAccounts
	users    *fakeUsers
	posts    *fakePosts
	saves    *fakeSaves
	files    *fakeFiles
	signer   *tokens.Signer
}

func newTestClient(t *testing.T) (*Client, *backend) {
	t.Helper()
	b := &backend{
		accounts: newFakeAccounts(),
		users:    newFakeUsers(),
		posts:    newFakePosts(),
		saves:    newFakeSaves(),
		files:    newFakeFiles(),
		signer:   tokens.NewSigner("test-secret"),
	}
	c := New(Deps{
		Accounts:  b.accounts,
		Users:     b.users,
		Posts:     b.posts,
		Saves:     b.saves,
		Files:     b.files,
		Signer:    b.signer,
		PublicURL: testPublicURL,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return c, b
}

func image(name string) *models.File {
	return &models.File{Name: name, ContentType: "image/jpeg", Size: 4, Reader: strings.NewReader("jpeg")}
}
