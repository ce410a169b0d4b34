package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to the unified AppError type with appropriate
// status codes. redis.Nil becomes a NotFound; anything else is treated as the
// storage layer being unavailable and is surfaced, not retried.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(errors.Join(ErrNotFound, err), http.StatusNotFound, RedisNotFoundMessage)
	}

	return New(errors.Join(ErrStorageUnavailable, err), http.StatusBadGateway, RedisErrorMessage)
}
