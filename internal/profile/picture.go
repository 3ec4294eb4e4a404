package profile

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const picturePrefix = "profile_picture:"

// PictureStore keeps per-user profile picture references. The value is an
// opaque URL string with no format contract; absence is not an error.
type PictureStore struct {
	client *redis.Client
}

// NewPictureStore constructs a PictureStore backed by Redis.
func NewPictureStore(client *redis.Client) *PictureStore {
	return &PictureStore{client: client}
}

// Get returns the stored picture URL for the key (username or user id),
// or ok=false when none is stored.
func (p *PictureStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := p.client.Get(ctx, picturePrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores the picture URL for the key. No expiry; the reference lives
// until overwritten or deleted.
func (p *PictureStore) Set(ctx context.Context, key, url string) error {
	return p.client.Set(ctx, picturePrefix+key, url, 0).Err()
}

// Delete removes the stored reference.
func (p *PictureStore) Delete(ctx context.Context, key string) error {
	err := p.client.Del(ctx, picturePrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
