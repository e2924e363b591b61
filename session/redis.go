package session

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/cityreport_bot/config"
)

// Sessions are short-lived; abandoned drafts expire on their own.
const sessionTTL = 48 * time.Hour

// RedisStore keeps sessions in redis so conversations survive restarts and
// multiple bot instances see the same state. Encoding and key handling go
// through the shared config helpers.
type RedisStore struct{}

func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (Session, error) {
	var s Session
	found, err := config.GetRedisObject(ctx, sessionKey(chatID), &s)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, nil
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, chatID int64, s Session) error {
	return config.SetRedisObject(ctx, sessionKey(chatID), s, sessionTTL)
}

func (r *RedisStore) Clear(ctx context.Context, chatID int64) error {
	return config.RemoveRedisKey(ctx, sessionKey(chatID))
}
