package analysisinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Abraxas-365/careerqr/career/analysis"
	"github.com/Abraxas-365/careerqr/pkg/logx"
)

// RedisQueue implements analysis.JobQueue on a Redis list, with a
// sorted set holding delayed retries.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

// NewRedisQueue creates a new Redis-based queue
func NewRedisQueue(client *redis.Client, queueName string) analysis.JobQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

// Enqueue adds a job to the ready queue
func (q *RedisQueue) Enqueue(ctx context.Context, job *analysis.AnalysisJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}

	return nil
}

// Dequeue pops a job from the queue, blocking up to timeout.
// Returns nil, nil when the timeout elapses with no work.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*analysis.AnalysisJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		// redis.Nil is returned when the timeout occurs
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}

	var job analysis.AnalysisJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal dequeued job: %w", err)
	}

	return &job, nil
}

// EnqueueDelayed schedules a job for later processing (for retries)
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, job *analysis.AnalysisJob, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delayed job %s: %w", job.ID, err)
	}

	score := float64(time.Now().Add(delay).Unix())

	if err := q.client.ZAdd(ctx, q.delayedQueue(), &redis.Z{
		Score:  score,
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed job %s: %w", job.ID, err)
	}

	return nil
}

// MoveDelayedToReady moves due delayed jobs onto the ready queue
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) error {
	now := float64(time.Now().Unix())

	jobs, err := q.client.ZRangeByScore(ctx, q.delayedQueue(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return fmt.Errorf("get delayed jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	// Pipeline keeps the move atomic enough for a single consumer group
	pipe := q.client.Pipeline()
	for _, job := range jobs {
		pipe.LPush(ctx, q.queueName, job)
		pipe.ZRem(ctx, q.delayedQueue(), job)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("move delayed jobs to ready: %w", err)
	}

	logx.Debugf("Moved %d delayed jobs to ready queue", len(jobs))
	return nil
}

// GetQueueSize returns the number of ready jobs
func (q *RedisQueue) GetQueueSize(ctx context.Context) (int64, error) {
	size, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("get queue size: %w", err)
	}
	return size, nil
}

// Clear removes all ready and delayed jobs (testing/maintenance)
func (q *RedisQueue) Clear(ctx context.Context) error {
	pipe := q.client.Pipeline()
	pipe.Del(ctx, q.queueName)
	pipe.Del(ctx, q.delayedQueue())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}

	return nil
}

func (q *RedisQueue) delayedQueue() string {
	return q.queueName + ":delayed"
}
