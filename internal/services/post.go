package services

import (
	"context"

	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/validation"
)

// PostReader defines read-only operations for posts.
type PostReader interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Post, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
}

// PostService publishes and lists posts.
type PostService struct {
	tx     Transactor
	users  UserReader
	reader PostReader
	writer PostWriter
	events *EventPublisher
	opts   options
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(
	tx Transactor,
	users UserReader,
	reader PostReader,
	writer PostWriter,
	events *EventPublisher,
	opts ...Option,
) *PostService {
	return &PostService{
		tx:     tx,
		users:  users,
		reader: reader,
		writer: writer,
		events: events,
		opts:   newOptions(opts),
	}
}

// Create publishes a post by authorID, dated now in UTC.
// Nothing is stored when the author does not exist.
func (svc *PostService) Create(ctx context.Context, title, content string, authorID int64) (*models.Post, error) {
	if err := validation.Struct(models.NewPost{Title: title, Content: content}); err != nil {
		return nil, err
	}

	var created *models.Post
	err := svc.tx.Do(ctx, func(ctx context.Context) error {
		author, err := svc.users.GetByID(ctx, authorID)
		if err != nil {
			return err
		}

		post, err := svc.writer.Create(ctx, &models.Post{
			Title:      title,
			Content:    content,
			UserID:     author.ID,
			DatePosted: svc.opts.now().UTC(),
		})
		if err != nil {
			return err
		}
		post.Author = models.Author{ID: author.ID, Username: author.Username}
		created = post
		return nil
	})
	if err != nil {
		logError("failed to create post", err, "user_id", authorID)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventPostCreated, authorID, created.ID)
	return created, nil
}

// Get returns the post with the given id.
func (svc *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logError("failed to get post", err, "post_id", id)
		return nil, err
	}
	return post, nil
}

// List returns every post in publication order.
func (svc *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := svc.reader.List(ctx)
	if err != nil {
		logError("failed to list posts", err)
		return nil, err
	}
	return posts, nil
}

// ListByUser returns the posts of userID, newest first.
func (svc *PostService) ListByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	if _, err := svc.users.GetByID(ctx, userID); err != nil {
		logError("failed to list user posts", err, "user_id", userID)
		return nil, err
	}

	posts, err := svc.reader.ListByUserID(ctx, userID)
	if err != nil {
		logError("failed to list user posts", err, "user_id", userID)
		return nil, err
	}
	return posts, nil
}
