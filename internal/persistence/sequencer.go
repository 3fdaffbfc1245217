package persistence

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SequenceSource exposes the stored identifiers a sequencer is seeded from.
type SequenceSource interface {
	ListTicketIDs(ctx context.Context) ([]string, error)
	MaxSrNo(ctx context.Context) (int64, error)
}

// raiseTo sets KEYS[1] to ARGV[1] unless it already holds a larger value.
var raiseTo = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
  redis.call('SET', KEYS[1], ARGV[1])
  return floor
end
return current
`)

// RedisSequencer issues ticket ids and serial numbers with atomic INCR. The counters are
// raised to the store maximum once per process, so ids survive a Redis flush.
type RedisSequencer struct {
	client *redis.Client
	prefix string
	source SequenceSource

	mu     sync.Mutex
	seeded bool
}

// NewRedisSequencer builds a sequencer over client, seeded from source.
func NewRedisSequencer(client *redis.Client, keyPrefix string, source SequenceSource) *RedisSequencer {
	return &RedisSequencer{client: client, prefix: keyPrefix, source: source}
}

// NextTicketID returns the next ticket id.
func (s *RedisSequencer) NextTicketID(ctx context.Context) (string, error) {
	if err := s.seed(ctx); err != nil {
		return "", err
	}
	n, err := s.client.Incr(ctx, s.key("ticket_id")).Result()
	if err != nil {
		return "", fmt.Errorf("increment ticket id: %w", err)
	}
	return strconv.FormatInt(n, 10), nil
}

// NextSrNo returns the next serial number.
func (s *RedisSequencer) NextSrNo(ctx context.Context) (int64, error) {
	if err := s.seed(ctx); err != nil {
		return 0, err
	}
	n, err := s.client.Incr(ctx, s.key("sr_no")).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sr no: %w", err)
	}
	return n, nil
}

// Resync raises the counters to the store maximum again, typically after a duplicate key.
func (s *RedisSequencer) Resync(ctx context.Context) error {
	s.mu.Lock()
	s.seeded = false
	s.mu.Unlock()
	return s.seed(ctx)
}

func (s *RedisSequencer) seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}

	ids, err := s.source.ListTicketIDs(ctx)
	if err != nil {
		return fmt.Errorf("load ticket ids: %w", err)
	}
	maxSr, err := s.source.MaxSrNo(ctx)
	if err != nil {
		return fmt.Errorf("load max sr no: %w", err)
	}

	if err := raiseTo.Run(ctx, s.client, []string{s.key("ticket_id")}, domain.TicketIDBase(ids)).Err(); err != nil {
		return fmt.Errorf("seed ticket id: %w", err)
	}
	if err := raiseTo.Run(ctx, s.client, []string{s.key("sr_no")}, maxSr).Err(); err != nil {
		return fmt.Errorf("seed sr no: %w", err)
	}
	s.seeded = true
	return nil
}

func (s *RedisSequencer) key(name string) string {
	return s.prefix + "seq:" + name
}
