package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rowanhq/leadflow/internal/intake"
)

const recordKeyPrefix = "intake:record:"

// StoredRecord is the intake record plus its generated proposal, persisted
// together under the record id.
type StoredRecord struct {
	Intake   *intake.Record `json:"intake"`
	Proposal *Document      `json:"proposal"`
}

// Store persists proposal records in Redis with a time-to-live.
// Every call is a fresh round trip; there is no local caching.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewStore creates a record store. A nil client yields a nil store whose
// methods report ErrStoreUnavailable, so persistence failures stay non-fatal.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		redis:  redisClient,
		ttl:    ttl,
		tracer: otel.Tracer("leadflow.internal.proposal.store"),
	}
}

// Put serializes the record and sets it under its namespaced key with the
// configured TTL.
func (s *Store) Put(ctx context.Context, id string, rec StoredRecord) error {
	if s == nil || s.redis == nil {
		return ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if id == "" {
		return errors.New("proposal: record id required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("proposal: marshal record: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "proposal.store.put")
	defer span.End()

	if err := s.redis.Set(ctx, recordKey(id), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("proposal: set record: %w", err)
	}
	return nil
}

// Get retrieves a stored record by id. Absent, expired, or undecodable
// values all report found=false rather than an error.
func (s *Store) Get(ctx context.Context, id string) (*StoredRecord, bool, error) {
	if s == nil || s.redis == nil {
		return nil, false, ErrStoreUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if id == "" {
		return nil, false, nil
	}

	ctx, span := s.tracer.Start(ctx, "proposal.store.get")
	defer span.End()

	data, err := s.redis.Get(ctx, recordKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("proposal: get record: %w", err)
	}

	var rec StoredRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt value is indistinguishable from an expired one to callers.
		span.RecordError(err)
		return nil, false, nil
	}
	return &rec, true, nil
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}
