package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// versionTTL bounds how long a user's cache version outlives its last bump.
const versionTTL = 24 * time.Hour

// setIfVersion writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing version key counts as "0". ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[1], ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

// UserCacheRepository caches user records in Redis.
// The password hash is never written to the cache. Each user has a version
// key that Delete increments, so a row read before an eviction is never cached after it.
type UserCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached users
}

// NewUserCacheRepository creates a new repository instance with the given TTL
func NewUserCacheRepository(client *redis.Client, expiration time.Duration) *UserCacheRepository {
	return &UserCacheRepository{
		client: client,
		exp:    expiration,
	}
}

type cachedUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func versionKey(id int64) string {
	return fmt.Sprintf("user:%d:version", id)
}

// Get returns the cached user, or nil with no error on a cache miss.
func (r *UserCacheRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	key := userKey(id)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Infow("cache",
			"key", key,
			"result", nil,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cu cachedUser
	if err := json.Unmarshal(val, &cu); err != nil {
		logger.Log.Infow("cache",
			"key", key,
			"value", string(val),
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow("cache",
		"key", key,
		"result", cu.ID,
		"error", nil,
	)

	return &models.User{
		ID:        cu.ID,
		Username:  cu.Username,
		Email:     cu.Email,
		CreatedAt: cu.CreatedAt,
	}, nil
}

// Version returns the current cache version of user id, 0 if it was never bumped.
func (r *UserCacheRepository) Version(ctx context.Context, id int64) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set caches user with expiration, unless its version moved past version.
func (r *UserCacheRepository) Set(ctx context.Context, user *models.User, version int64) error {
	key := userKey(user.ID)
	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return err
	}

	written, err := setIfVersion.Run(ctx, r.client,
		[]string{key, versionKey(user.ID)},
		strconv.FormatInt(version, 10), data, r.exp.Milliseconds(),
	).Int()

	result := "set"
	if err == nil && written == 0 {
		result = "stale"
	}
	logger.Log.Infow("cache",
		"key", key,
		"result", result,
		"error", err,
	)

	return err
}

// Delete bumps the user's version and evicts the cached user.
func (r *UserCacheRepository) Delete(ctx context.Context, id int64) error {
	key := userKey(id)

	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, versionKey(id))
	pipe.Expire(ctx, versionKey(id), versionTTL)
	pipe.Del(ctx, key)
	_, err := pipe.Exec(ctx)

	logger.Log.Infow("cache",
		"key", key,
		"result", "del",
		"error", err,
	)

	return err
}
