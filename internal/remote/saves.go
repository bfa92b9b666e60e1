package remote

import (
	"context"

	"github.com/anonto42/snapgram/backend/internal/models"
)

// SavePost bookmarks a post for a user.
func (c *Client) SavePost(ctx context.Context, in models.SavePost) (*models.Save, error) {
	const op = "savePost"
	if err := c.check(op, in); err != nil {
		return nil, err
	}
	save := &models.Save{User: in.UserID, Post: in.PostID}
	if err := c.saves.SavePost(ctx, save); err != nil {
		return nil, c.writeFail(op, err)
	}
	return save, nil
}

// DeleteSavedPost removes a bookmark.
func (c *Client) DeleteSavedPost(ctx context.Context, saveID string) error {
	const op = "deleteSavedPost"
	if err := c.require(op, "saveId", saveID); err != nil {
		return err
	}
	if err := c.saves.DeleteSave(ctx, saveID); err != nil {
		return c.writeFail(op, err)
	}
	return nil
}
