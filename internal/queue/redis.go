package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propstack/catalog/internal/config"
	"propstack/catalog/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// StreamPrefix prefixes the stream of every task type
const StreamPrefix = "propstack:stream:"

const (
	readBlock  = 5 * time.Second
	claimBatch = 10
)

type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	GetTask(ctx context.Context, group, consumer, stream string) (*redis.XMessage, error)
	AckTask(ctx context.Context, stream, group, msgID string) error
	CreateGroup(ctx context.Context, stream, group string) error
	AutoClaim(ctx context.Context, group, consumer, stream string, minIdleTime time.Duration) ([]redis.XMessage, error)
	EnsureStreamsExist(ctx context.Context) error
}

// StreamName returns the stream carrying tasks of taskType
func StreamName(taskType string) string {
	return StreamPrefix + taskType
}

// RedisQueue keeps enrichment tasks in one redis stream per task type
type RedisQueue struct {
	rdb   *redis.Client
	group string
}

func NewRedisQueue(ctx context.Context, rdb *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		rdb:   rdb,
		group: cfg.ConsumerGroup,
	}

	if err := q.EnsureStreamsExist(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare task streams: %w", err)
	}

	return q, nil
}

// CreateGroup creates stream and group; an existing group is fine
func (q *RedisQueue) CreateGroup(ctx context.Context, stream, group string) error {
	err := q.rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Debugf("Consumer group %s already exists on %s", group, stream)
		return nil
	}
	return fmt.Errorf("failed to create group %s on %s: %w", group, stream, err)
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	stream := StreamName(t.TaskType())

	values, err := task.Values(t)
	if err != nil {
		return "", err
	}

	id, err := q.rdb.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add %s to %s: %w", t.TaskType(), stream, err)
	}

	log.Debugf("Queued %s as %s on %s", t.TaskType(), id, stream)
	return id, nil
}

// GetTask blocks for up to readBlock and returns nil when nothing arrived
func (q *RedisQueue) GetTask(ctx context.Context, group, consumer, stream string) (*redis.XMessage, error) {
	streams, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from %s: %w", stream, err)
	}

	for _, s := range streams {
		if len(s.Messages) > 0 {
			return &s.Messages[0], nil
		}
	}
	return nil, nil
}

func (q *RedisQueue) AckTask(ctx context.Context, stream, group, msgID string) error {
	if err := q.rdb.XAck(ctx, stream, group, msgID).Err(); err != nil {
		return fmt.Errorf("failed to ack %s on %s: %w", msgID, stream, err)
	}
	return nil
}

// AutoClaim takes over messages idle for minIdleTime, at most claimBatch per call
func (q *RedisQueue) AutoClaim(
	ctx context.Context,
	group,
	consumer,
	stream string,
	minIdleTime time.Duration,
) ([]redis.XMessage, error) {
	claimed := make([]redis.XMessage, 0)
	cursor := "0-0"

	for len(claimed) < claimBatch {
		messages, next, err := q.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    group,
			Consumer: consumer,
			MinIdle:  minIdleTime,
			Start:    cursor,
			Count:    int64(claimBatch - len(claimed)),
		}).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim idle messages on %s: %w", stream, err)
		}

		claimed = append(claimed, messages...)
		if next == "0-0" || len(messages) == 0 {
			break
		}
		cursor = next
	}

	return claimed, nil
}

// EnsureStreamsExist creates every task stream and its consumer group
func (q *RedisQueue) EnsureStreamsExist(ctx context.Context) error {
	for _, taskType := range task.Types {
		stream := StreamName(taskType)
		if err := q.CreateGroup(ctx, stream, q.group); err != nil {
			return err
		}
		log.Infof("✅ Stream %s ready for group %s", stream, q.group)
	}
	return nil
}
