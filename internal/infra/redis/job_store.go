package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

// JobStore keeps each job in a hash at summary_job:<id>. Keys expire after ttl,
// so Sweep has nothing to do. Transitions and consume-once reads run as Lua scripts.
type JobStore struct {
	cli *redis.Client
	ttl time.Duration
}

var _ repository.JobStore = (*JobStore)(nil)

func NewJobStore(c *Client, ttl time.Duration) *JobStore {
	return &JobStore{cli: c.cli, ttl: ttl}
}

func jobKey(id string) string { return "summary_job:" + id }

const (
	fStatus   = "status"
	fOwner    = "owner"
	fPayload  = "payload"
	fCustom   = "custom_prompt"
	fResult   = "result"
	fError    = "error_detail"
	fCreated  = "created_at"
	fFinished = "finished_at"
)

// KEYS[1]=job key; ARGV = new status, field, value, finished_at.
// Returns -1 when missing, 0 when already terminal, 1 on success.
var luaFinish = redis.NewScript(`
local st = redis.call("HGET", KEYS[1], "status")
if not st then
	return -1
end
if st ~= "pending" then
	return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[1], ARGV[2], ARGV[3], "finished_at", ARGV[4])
return 1`)

// Returns the hash, deleting it when terminal. Nil when missing.
var luaTake = redis.NewScript(`
local st = redis.call("HGET", KEYS[1], "status")
if not st then
	return false
end
local h = redis.call("HGETALL", KEYS[1])
if st ~= "pending" then
	redis.call("DEL", KEYS[1])
end
return h`)

func (s *JobStore) Create(ctx context.Context, job *model.SummaryJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	key := jobKey(job.ID)
	_, err := s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, map[string]interface{}{
			fStatus:  string(job.Status),
			fOwner:   job.Owner,
			fPayload: job.Payload,
			fCustom:  job.CustomPrompt,
			fCreated: job.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *JobStore) Complete(ctx context.Context, id string, result model.SummaryResult) error {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return s.finish(ctx, id, model.JobStatusComplete, fResult, string(b))
}

func (s *JobStore) Fail(ctx context.Context, id string, detail string) error {
	if detail == "" {
		detail = "unknown error"
	}
	return s.finish(ctx, id, model.JobStatusError, fError, detail)
}

func (s *JobStore) finish(ctx context.Context, id string, st model.JobStatus, field, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	n, err := luaFinish.Run(ctx, s.cli, []string{jobKey(id)}, string(st), field, value, now).Int()
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	switch n {
	case -1:
		return domain.ErrNotFound
	case 0:
		return domain.ErrJobFinalized
	}
	return nil
}

func (s *JobStore) Take(ctx context.Context, id string) (*model.SummaryJob, error) {
	res, err := luaTake.Run(ctx, s.cli, []string{jobKey(id)}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take job: %w", err)
	}
	flat, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("take job: unexpected reply %T", res)
	}
	h := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		k, _ := flat[i].(string)
		v, _ := flat[i+1].(string)
		h[k] = v
	}
	return decodeJob(id, h)
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.SummaryJob, error) {
	h, err := s.cli.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if len(h) == 0 {
		return nil, domain.ErrNotFound
	}
	return decodeJob(id, h)
}

func (s *JobStore) PeekStatus(ctx context.Context, id string) (model.JobStatus, error) {
	st, err := s.cli.HGet(ctx, jobKey(id), fStatus).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("peek job: %w", err)
	}
	return model.JobStatus(st), nil
}

func (s *JobStore) Sweep(context.Context, time.Time) (int, error) { return 0, nil }

func decodeJob(id string, h map[string]string) (*model.SummaryJob, error) {
	j := &model.SummaryJob{
		ID:           id,
		Owner:        h[fOwner],
		Status:       model.JobStatus(h[fStatus]),
		Payload:      h[fPayload],
		CustomPrompt: h[fCustom],
		ErrorDetail:  h[fError],
	}
	if v := h[fCreated]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("decode created_at: %w", err)
		}
		j.CreatedAt = t
	}
	if v := h[fFinished]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			j.FinishedAt = t
		}
	}
	if v := h[fResult]; v != "" {
		var r model.SummaryResult
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		j.Result = &r
	}
	return j, nil
}
