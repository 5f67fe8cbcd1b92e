package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LastSeenStatus is the durable online hint shown on profiles. It is
// deliberately separate from the in-process presence registry, which
// owns live connection handles: this survives restarts and answers
// "when was this user last here", nothing more.
type LastSeenStatus struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// LastSeenStore tracks last-seen/online hints in Redis.
type LastSeenStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	lastSeenKeyPrefix = "presence:"
	lastSeenOnlineSet = "presence:online"
)

func NewLastSeenStore(client *goredis.Client, ttl time.Duration) *LastSeenStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &LastSeenStore{client: client, ttl: ttl}
}

// SetOnline marks a user online while their realtime connection lives.
func (p *LastSeenStore) SetOnline(ctx context.Context, userID string) error {
	status := LastSeenStatus{UserID: userID, IsOnline: true, LastSeen: time.Now()}
	data, _ := json.Marshal(status)

	pipe := p.client.Pipeline()
	pipe.Set(ctx, lastSeenKeyPrefix+userID, data, p.ttl)
	pipe.SAdd(ctx, lastSeenOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline records the disconnect time. The offline record is kept
// longer than the online TTL so last-seen queries keep working.
func (p *LastSeenStore) SetOffline(ctx context.Context, userID string) error {
	status := LastSeenStatus{UserID: userID, IsOnline: false, LastSeen: time.Now()}
	data, _ := json.Marshal(status)

	pipe := p.client.Pipeline()
	pipe.Set(ctx, lastSeenKeyPrefix+userID, data, 24*time.Hour)
	pipe.SRem(ctx, lastSeenOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// Heartbeat refreshes the online TTL.
func (p *LastSeenStore) Heartbeat(ctx context.Context, userID string) error {
	return p.client.Expire(ctx, lastSeenKeyPrefix+userID, p.ttl).Err()
}

func (p *LastSeenStore) Get(ctx context.Context, userID string) (LastSeenStatus, error) {
	data, err := p.client.Get(ctx, lastSeenKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return LastSeenStatus{UserID: userID, IsOnline: false}, nil
	}
	if err != nil {
		return LastSeenStatus{}, err
	}

	var status LastSeenStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return LastSeenStatus{}, err
	}
	return status, nil
}

func (p *LastSeenStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, lastSeenOnlineSet, userID).Result()
}
