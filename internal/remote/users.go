package remote

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
)

// GetUsers returns the newest users. A limit of zero returns all of them.
func (c *Client) GetUsers(ctx context.Context, limit int) ([]models.User, error) {
	const op = "getUsers"
	if limit < 0 {
		return nil, c.fail(op, KindValidation, errors.New("limit must not be negative"))
	}
	users, err := c.users.GetUsers(ctx, int64(limit))
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return users, nil
}

// GetUserByID fetches one profile.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "getUserById"
	if err := c.require(op, "userId", userID); err != nil {
		return nil, err
	}
	user, err := c.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return user, nil
}

// UpdateUser rewrites a profile. A new avatar is uploaded before the write
// and the previous uploaded avatar is deleted only after it succeeded.
// Generated avatars have no file and are never deleted.
func (c *Client) UpdateUser(ctx context.Context, in models.UpdateUser) (*models.User, error) {
	const op = "updateUser"
	if err := c.check(op, in); err != nil {
		return nil, err
	}

	imageID, imageURL := in.ImageID, in.ImageURL
	replaced := in.File != nil
	if replaced {
		id, previewURL, err := c.uploadImage(ctx, op, in.File)
		if err != nil {
			return nil, err
		}
		imageID, imageURL = id, previewURL
	}

	updated, err := c.users.UpdateUser(ctx, in.UserID, &models.User{
		Name:     in.Name,
		Bio:      in.Bio,
		ImageURL: imageURL,
		ImageID:  imageID,
	})
	if err != nil {
		if replaced {
			c.removeFile(ctx, op, imageID)
		}
		return nil, c.writeFail(op, err)
	}

	if replaced && in.ImageID != "" && in.ImageID != imageID {
		c.removeFile(ctx, op, in.ImageID)
	}
	return updated, nil
}
