package remote

import (
	"context"
	"errors"

	"github.com/anonto42/snapgram/backend/internal/models"
)

// CreatePost uploads the image and writes the post document. The upload is
// deleted again when the document cannot be written.
func (c *Client) CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	const op = "createPost"
	if err := c.check(op, in); err != nil {
		return nil, err
	}

	fileID, previewURL, err := c.uploadImage(ctx, op, in.File)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Creator:  in.UserID,
		Caption:  in.Caption,
		ImageURL: previewURL,
		ImageID:  fileID,
		Location: in.Location,
		Tags:     ParseTags(in.Tags),
	}
	if err := c.posts.CreatePost(ctx, post); err != nil {
		c.removeFile(ctx, op, fileID)
		return nil, c.writeFail(op, err)
	}
	return post, nil
}

// UpdatePost rewrites a post. When a new file is given it is uploaded first
// and the previous image is deleted only after the document write succeeded.
func (c *Client) UpdatePost(ctx context.Context, in models.UpdatePost) (*models.Post, error) {
	const op = "updatePost"
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

	updated, err := c.posts.UpdatePost(ctx, in.PostID, &models.Post{
		Caption:  in.Caption,
		ImageURL: imageURL,
		ImageID:  imageID,
		Location: in.Location,
		Tags:     ParseTags(in.Tags),
	})
	if err != nil {
		if replaced {
			c.removeFile(ctx, op, imageID)
		}
		return nil, c.writeFail(op, err)
	}

	if replaced && in.ImageID != imageID {
		c.removeFile(ctx, op, in.ImageID)
	}
	return updated, nil
}

// DeletePost deletes the post document and then its image.
func (c *Client) DeletePost(ctx context.Context, in models.DeletePost) error {
	const op = "deletePost"
	if err := c.require(op, "postId", in.PostID, "imageId", in.ImageID); err != nil {
		return err
	}
	if err := c.posts.DeletePost(ctx, in.PostID); err != nil {
		return c.writeFail(op, err)
	}
	c.removeFile(ctx, op, in.ImageID)
	return nil
}

// GetPostByID fetches one post.
func (c *Client) GetPostByID(ctx context.Context, postID string) (*models.Post, error) {
	const op = "getPostById"
	if err := c.require(op, "postId", postID); err != nil {
		return nil, err
	}
	post, err := c.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return post, nil
}

// GetRecentPosts returns the newest posts by creation time.
func (c *Client) GetRecentPosts(ctx context.Context) ([]models.Post, error) {
	const op = "getRecentPosts"
	posts, err := c.posts.GetRecentPosts(ctx, RecentPostsLimit)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return posts, nil
}

// GetInfinitePosts returns one feed page ordered by last update, strictly
// after the post whose id is cursor. An empty cursor yields the first page.
func (c *Client) GetInfinitePosts(ctx context.Context, cursor string) ([]models.Post, error) {
	const op = "getInfinitePosts"
	posts, err := c.posts.GetPostsAfter(ctx, cursor, InfinitePageSize)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return posts, nil
}

// SearchPosts matches term against post captions.
func (c *Client) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	const op = "searchPosts"
	if err := c.require(op, "searchTerm", term); err != nil {
		return nil, err
	}
	posts, err := c.posts.SearchPosts(ctx, term)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return posts, nil
}

// GetUserPosts returns the posts of one creator, newest first.
func (c *Client) GetUserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	const op = "getUserPosts"
	if err := c.require(op, "userId", userID); err != nil {
		return nil, err
	}
	posts, err := c.posts.GetPostsByCreator(ctx, userID)
	if err != nil {
		return nil, c.readFail(op, err)
	}
	return posts, nil
}

// LikePost replaces the like list of a post with likes.
func (c *Client) LikePost(ctx context.Context, in models.LikePost) (*models.Post, error) {
	const op = "likePost"
	if err := c.check(op, in); err != nil {
		return nil, err
	}
	updated, err := c.posts.SetLikes(ctx, in.PostID, in.Likes)
	if err != nil {
		return nil, c.writeFail(op, err)
	}
	if updated == nil {
		return nil, c.fail(op, KindDocumentWrite, errors.New("like update returned no document"))
	}
	return updated, nil
}
