package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
	logx "github.com/agent-poc-v1/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// lastActiveIndexKey is a sorted set of conversation ids scored by the unix
// timestamp of their last activity. It drives List and Cleanup.
const lastActiveIndexKey = "conversations:last_active"

const (
	metaFieldUserID       = "user_id"
	metaFieldTitle        = "title"
	metaFieldCreatedAt    = "created_at"
	metaFieldLastActive   = "last_active"
	metaFieldMessageCount = "message_count"
)

type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisConversationRepository) messagesKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

func (r *RedisConversationRepository) metaKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:meta", conversationID)
}

func (r *RedisConversationRepository) Create(ctx context.Context, userID, title string) (string, error) {
	conversationID := uuid.NewString()
	now := r.now().UTC()

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.metaKey(conversationID), map[string]any{
		metaFieldUserID:       userID,
		metaFieldTitle:        title,
		metaFieldCreatedAt:    now.Format(time.RFC3339Nano),
		metaFieldLastActive:   now.Format(time.RFC3339Nano),
		metaFieldMessageCount: 0,
	})
	pipe.ZAdd(ctx, lastActiveIndexKey, redis.Z{Score: float64(now.Unix()), Member: conversationID})
	if r.ttl > 0 {
		pipe.Expire(ctx, r.metaKey(conversationID), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to create conversation")
		return "", errx.WrapRedis(err)
	}
	return conversationID, nil
}

func (r *RedisConversationRepository) Exists(ctx context.Context, conversationID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.metaKey(conversationID)).Result()
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to check conversation existence")
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

func (r *RedisConversationRepository) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	exists, err := r.Exists(ctx, conversationID)
	if err != nil {
		return err
	}
	if !exists {
		return errx.NotFound(fmt.Sprintf("conversation %s not found", conversationID))
	}

	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}

	now := r.now().UTC()
	msgKey := r.messagesKey(conversationID)
	metKey := r.metaKey(conversationID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, msgKey, b)
	pipe.HSet(ctx, metKey, metaFieldLastActive, now.Format(time.RFC3339Nano))
	pipe.HIncrBy(ctx, metKey, metaFieldMessageCount, 1)
	pipe.ZAdd(ctx, lastActiveIndexKey, redis.Z{Score: float64(now.Unix()), Member: conversationID})
	if r.ttl > 0 {
		pipe.Expire(ctx, msgKey, r.ttl)
		pipe.Expire(ctx, metKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", msgKey).Msg("failed to append message")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	meta, err := r.rdb.HGetAll(ctx, r.metaKey(conversationID)).Result()
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load conversation metadata")
		return nil, errx.WrapRedis(err)
	}
	if len(meta) == 0 {
		return nil, errx.NotFound(fmt.Sprintf("conversation %s not found", conversationID))
	}

	rows, err := r.rdb.LRange(ctx, r.messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to load conversation history")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}

	return &model.ConversationHistory{
		Summary:  summaryFromMeta(conversationID, meta),
		Messages: msgs,
	}, nil
}

func (r *RedisConversationRepository) Delete(ctx context.Context, conversationID string) (bool, error) {
	removed, err := r.rdb.Del(ctx, r.messagesKey(conversationID), r.metaKey(conversationID)).Result()
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to delete conversation")
		return false, errx.WrapRedis(err)
	}
	if err := r.rdb.ZRem(ctx, lastActiveIndexKey, conversationID).Err(); err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to drop conversation from index")
		return false, errx.WrapRedis(err)
	}
	return removed > 0, nil
}

func (r *RedisConversationRepository) List(ctx context.Context) ([]model.ConversationSummary, error) {
	ids, err := r.rdb.ZRevRange(ctx, lastActiveIndexKey, 0, -1).Result()
	if err != nil {
		logx.Error().Err(err).Msg("failed to list conversations")
		return nil, errx.WrapRedis(err)
	}

	summaries := make([]model.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		meta, err := r.rdb.HGetAll(ctx, r.metaKey(id)).Result()
		if err != nil {
			return nil, errx.WrapRedis(err)
		}
		if len(meta) == 0 {
			// Meta expired under TTL but the index entry lingered; drop it.
			r.rdb.ZRem(ctx, lastActiveIndexKey, id)
			continue
		}
		summaries = append(summaries, summaryFromMeta(id, meta))
	}
	return summaries, nil
}

func (r *RedisConversationRepository) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	ids, err := r.rdb.ZRangeByScore(ctx, lastActiveIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", olderThan.Unix()),
	}).Result()
	if err != nil {
		logx.Error().Err(err).Msg("failed to scan stale conversations")
		return 0, errx.WrapRedis(err)
	}

	removed := 0
	for _, id := range ids {
		if err := r.rdb.Del(ctx, r.messagesKey(id), r.metaKey(id)).Err(); err != nil {
			return removed, errx.WrapRedis(err)
		}
		if err := r.rdb.ZRem(ctx, lastActiveIndexKey, id).Err(); err != nil {
			return removed, errx.WrapRedis(err)
		}
		removed++
	}
	if removed > 0 {
		logx.Info().Int("removed", removed).Time("older_than", olderThan).Msg("cleaned up stale conversations")
	}
	return removed, nil
}

func summaryFromMeta(conversationID string, meta map[string]string) model.ConversationSummary {
	createdAt, _ := time.Parse(time.RFC3339Nano, meta[metaFieldCreatedAt])
	lastActive, _ := time.Parse(time.RFC3339Nano, meta[metaFieldLastActive])
	count, _ := strconv.Atoi(meta[metaFieldMessageCount])
	return model.ConversationSummary{
		ConversationID: conversationID,
		UserID:         meta[metaFieldUserID],
		Title:          meta[metaFieldTitle],
		CreatedAt:      createdAt,
		LastActive:     lastActive,
		MessageCount:   count,
	}
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
