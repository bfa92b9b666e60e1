package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/tokens"
	"golang.org/x/crypto/bcrypt"
)

// CreateAccount registers an account and its profile document with a
// generated avatar. The account is removed again when the document cannot
// be written.
func (c *Client) CreateAccount(ctx context.Context, in models.NewUser) (*models.User, error) {
	const op = "createAccount"
	if err := c.check(op, in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, c.fail(op, KindRequest, err)
	}
	account := &models.Account{
		ID:           c.newID(),
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
	}
	if err := c.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, c.fail(op, KindValidation, errors.New("an account with this email already exists"))
		}
		return nil, c.fail(op, KindDocumentWrite, err)
	}

	user, err := c.CreateUser(ctx, models.NewUserDocument{
		AccountID: account.ID,
		Name:      account.Name,
		Username:  in.Username,
		Email:     account.Email,
		ImageURL:  AvatarURL(c.publicURL, account.Name),
	})
	if err != nil {
		if derr := c.accounts.DeleteAccount(context.WithoutCancel(ctx), account.ID); derr != nil {
			c.logger.Error("failed to roll back account", "account_id", account.ID, "error", derr)
		}
		return nil, err
	}
	return user, nil
}

// CreateUser writes the profile document of an account.
func (c *Client) CreateUser(ctx context.Context, in models.NewUserDocument) (*models.User, error) {
	const op = "createUser"
	if err := c.check(op, in); err != nil {
		return nil, err
	}
	user := &models.User{
		AccountID: in.AccountID,
		Name:      in.Name,
		Username:  in.Username,
		Email:     in.Email,
		ImageURL:  in.ImageURL,
	}
	if err := c.users.CreateUser(ctx, user); err != nil {
		return nil, c.writeFail(op, err)
	}
	return user, nil
}

// SignIn checks email and password and opens a session.
func (c *Client) SignIn(ctx context.Context, in models.SignIn) (*models.Session, error) {
	const op = "signIn"
	if err := c.check(op, in); err != nil {
		return nil, err
	}
	account, err := c.accounts.GetAccountByEmail(ctx, strings.ToLower(in.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, c.fail(op, KindAuth, errors.New("invalid credentials"))
		}
		return nil, c.fail(op, KindRequest, err)
	}
	if account.PasswordHash == "" {
		return nil, c.fail(op, KindAuth, errors.New("account has no password, use federated sign-in"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, c.fail(op, KindAuth, errors.New("invalid credentials"))
	}
	return c.openSession(ctx, op, account.ID)
}

// SignInWithFirebase exchanges a Firebase ID token for a session. Unknown
// identities get an account linked by email, or a new account and profile.
func (c *Client) SignInWithFirebase(ctx context.Context, in models.FirebaseSignIn) (*models.Session, error) {
	const op = "signInWithFirebase"
	if err := c.check(op, in); err != nil {
		return nil, err
	}
	if c.firebase == nil {
		return nil, c.fail(op, KindAuth, errors.New("federated sign-in is not configured"))
	}
	token, err := c.firebase.VerifyIDToken(ctx, in.IDToken)
	if err != nil {
		return nil, c.fail(op, KindAuth, err)
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, c.fail(op, KindAuth, errors.New("firebase token carries no email"))
	}
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	account, err := c.linkFirebaseAccount(ctx, op, token.UID, strings.ToLower(email), name)
	if err != nil {
		return nil, err
	}

	if _, err := c.users.GetUserByAccountID(ctx, account.ID); err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, c.fail(op, KindRequest, err)
		}
		if _, err := c.CreateUser(ctx, models.NewUserDocument{
			AccountID: account.ID,
			Name:      account.Name,
			Username:  strings.SplitN(account.Email, "@", 2)[0],
			Email:     account.Email,
			ImageURL:  AvatarURL(c.publicURL, account.Name),
		}); err != nil {
			return nil, err
		}
	}
	return c.openSession(ctx, op, account.ID)
}

func (c *Client) linkFirebaseAccount(ctx context.Context, op, uid, email, name string) (*models.Account, error) {
	account, err := c.accounts.GetAccountByFirebaseUID(ctx, uid)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, c.fail(op, KindRequest, err)
	}

	account, err = c.accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		account.FirebaseUID = &uid
		if err := c.accounts.UpdateAccount(ctx, account); err != nil {
			return nil, c.fail(op, KindDocumentWrite, err)
		}
		return account, nil
	case errors.Is(err, repositories.ErrNotFound):
		account = &models.Account{ID: c.newID(), Name: name, Email: email, FirebaseUID: &uid}
		if err := c.accounts.CreateAccount(ctx, account); err != nil {
			return nil, c.fail(op, KindDocumentWrite, err)
		}
		return account, nil
	default:
		return nil, c.fail(op, KindRequest, err)
	}
}

func (c *Client) openSession(ctx context.Context, op, accountID string) (*models.Session, error) {
	session := tokens.NewSession(c.newID(), accountID, c.now().UTC(), c.sessionTTL)
	if err := c.accounts.CreateSession(ctx, session); err != nil {
		return nil, c.fail(op, KindDocumentWrite, err)
	}
	token, err := c.signer.Issue(session)
	if err != nil {
		return nil, c.fail(op, KindRequest, err)
	}
	session.Token = token
	return session, nil
}

// SignOut deletes the session.
func (c *Client) SignOut(ctx context.Context, sessionID string) error {
	const op = "signOut"
	if err := c.require(op, "sessionId", sessionID); err != nil {
		return err
	}
	if err := c.accounts.DeleteSession(ctx, sessionID); err != nil {
		return c.writeFail(op, err)
	}
	return nil
}

// GetAccount resolves a live session to its account.
func (c *Client) GetAccount(ctx context.Context, sessionID string) (*models.Account, error) {
	const op = "getAccount"
	if sessionID == "" {
		return nil, c.fail(op, KindAuth, errors.New("no session"))
	}
	session, err := c.accounts.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, c.fail(op, KindAuth, errors.New("session not found"))
		}
		return nil, c.fail(op, KindRequest, err)
	}
	if !c.now().Before(session.ExpiresAt) {
		return nil, c.fail(op, KindAuth, errors.New("session expired"))
	}
	account, err := c.accounts.GetAccountByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, c.fail(op, KindAuth, errors.New("account not found"))
		}
		return nil, c.fail(op, KindRequest, err)
	}
	return account, nil
}

// GetCurrentUser returns the profile of the session's account with its saves.
func (c *Client) GetCurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error) {
	const op = "getCurrentUser"
	account, err := c.GetAccount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := c.users.GetUserByAccountID(ctx, account.ID)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	saves, err := c.saves.GetSavesByUser(ctx, user.ID.Hex())
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return &models.CurrentUser{User: *user, Saves: saves}, nil
}
