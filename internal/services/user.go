package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/metrics"
	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/password"
	"github.com/sbilibin2017/gw-blog/internal/validation"
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

// UserCache caches user records. Get returns nil, nil on a miss.
// Every Delete bumps the user's version; Set writes nothing unless the
// version is still the one read before the database lookup.
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	Version(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, user *models.User, version int64) error
	Delete(ctx context.Context, id int64) error
}

// UserService registers, reads, updates and deletes users.
type UserService struct {
	tx     Transactor
	reader UserReader
	writer UserWriter
	hasher PasswordHasher
	cache  UserCache
	events *EventPublisher
	opts   options
}

// NewUserService creates a new UserService. cache and events may be nil.
func NewUserService(
	tx Transactor,
	reader UserReader,
	writer UserWriter,
	hasher PasswordHasher,
	cache UserCache,
	events *EventPublisher,
	opts ...Option,
) *UserService {
	return &UserService{
		tx:     tx,
		reader: reader,
		writer: writer,
		hasher: hasher,
		cache:  cache,
		events: events,
		opts:   newOptions(opts),
	}
}

// Create registers a new user. The username is checked before the email,
// both case-insensitively, and the email is stored lower-cased.
func (svc *UserService) Create(ctx context.Context, username, email, plain string) (*models.User, error) {
	input := models.NewUser{Username: username, Email: email, Password: plain}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if len(plain) > password.MaxLength {
		return nil, errs.NewValidation("password", fmt.Sprintf("must be at most %d bytes", password.MaxLength))
	}

	hash, err := svc.hasher.Hash(plain)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *models.User
	err = svc.tx.Do(ctx, func(ctx context.Context) error {
		if err := svc.checkUnique(ctx, username, email, 0); err != nil {
			return err
		}

		user, err := svc.writer.Create(ctx, &models.User{
			Username:     username,
			Email:        strings.ToLower(email),
			PasswordHash: hash,
			CreatedAt:    svc.opts.now().UTC(),
		})
		if err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		logError("failed to create user", err, "username", username)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventUserCreated, created.ID, 0)
	return created, nil
}

// Get returns the user with the given id, reading through the cache when configured.
func (svc *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	var (
		version   int64
		cacheable bool
	)
	if svc.cache != nil {
		cached, err := svc.cache.Get(ctx, id)
		switch {
		case err != nil:
			logger.Log.Errorw("failed to read user cache", "user_id", id, "err", err)
			metrics.IncCacheLookup("error")
		case cached != nil:
			metrics.IncCacheLookup("hit")
			return cached, nil
		default:
			metrics.IncCacheLookup("miss")
		}

		if version, err = svc.cache.Version(ctx, id); err != nil {
			logger.Log.Errorw("failed to read user cache version", "user_id", id, "err", err)
		} else {
			cacheable = true
		}
	}

	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logError("failed to get user", err, "user_id", id)
		return nil, err
	}

	if cacheable {
		if err := svc.cache.Set(ctx, user, version); err != nil {
			logger.Log.Errorw("failed to write user cache", "user_id", id, "err", err)
		}
	}
	return user, nil
}

// Update applies patch to user id on behalf of callerID.
// Only the owner may update; that is checked before the patch is looked at.
// An empty patch returns the stored user and writes nothing.
func (svc *UserService) Update(ctx context.Context, id, callerID int64, patch models.UserPatch) (*models.User, error) {
	if id != callerID {
		logger.Log.Warnw("update forbidden", "user_id", id, "caller_id", callerID)
		return nil, errs.ErrUpdateForbidden
	}
	if err := validation.UserPatch(patch); err != nil {
		return nil, err
	}

	var (
		updated *models.User
		changed bool
	)
	err := svc.tx.Do(ctx, func(ctx context.Context) error {
		user, err := svc.reader.GetByID(ctx, id)
		if err != nil {
			return err
		}

		var newUsername, newEmail string
		if patch.Username != nil && !strings.EqualFold(*patch.Username, user.Username) {
			newUsername = *patch.Username
		}
		if patch.Email != nil && !strings.EqualFold(*patch.Email, user.Email) {
			newEmail = *patch.Email
		}
		if err := svc.checkUnique(ctx, newUsername, newEmail, id); err != nil {
			return err
		}

		if patch.Username != nil && *patch.Username != user.Username {
			user.Username = *patch.Username
			changed = true
		}
		if patch.Email != nil && strings.ToLower(*patch.Email) != user.Email {
			user.Email = strings.ToLower(*patch.Email)
			changed = true
		}

		updated = user
		if !changed {
			return nil
		}
		return svc.writer.Update(ctx, user)
	})
	if err != nil {
		logError("failed to update user", err, "user_id", id)
		return nil, err
	}

	if changed {
		svc.invalidate(ctx, id)
		svc.events.Publish(ctx, models.EventUserUpdated, id, 0)
	}
	return updated, nil
}

// Delete removes user id and all of its posts on behalf of callerID.
func (svc *UserService) Delete(ctx context.Context, id, callerID int64) error {
	if id != callerID {
		logger.Log.Warnw("delete forbidden", "user_id", id, "caller_id", callerID)
		return errs.ErrDeleteForbidden
	}

	err := svc.tx.Do(ctx, func(ctx context.Context) error {
		return svc.writer.Delete(ctx, id)
	})
	if err != nil {
		logError("failed to delete user", err, "user_id", id)
		return err
	}

	svc.invalidate(ctx, id)
	svc.events.Publish(ctx, models.EventUserDeleted, id, 0)
	return nil
}

// checkUnique reports a taken username before a taken email. Empty values are skipped.
func (svc *UserService) checkUnique(ctx context.Context, username, email string, excludeID int64) error {
	if username != "" {
		taken, err := svc.reader.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return errs.ErrUsernameTaken
		}
	}
	if email != "" {
		taken, err := svc.reader.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return errs.ErrEmailTaken
		}
	}
	return nil
}

func (svc *UserService) invalidate(ctx context.Context, id int64) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Delete(ctx, id); err != nil {
		logger.Log.Errorw("failed to invalidate user cache", "user_id", id, "err", err)
	}
}
