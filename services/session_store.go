package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"social-campaign-platform/internal/logger"
	"social-campaign-platform/internal/wizard"
	"social-campaign-platform/utils"
)

// ErrSessionNotFound aliases the wizard package's sentinel so callers on
// either side of the queue boundary match the same error.
var ErrSessionNotFound = wizard.ErrSessionNotFound

// SessionStore persists wizard sessions in Redis as JSON blobs. Sessions
// expire after the configured TTL so abandoned drafts clean themselves up.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("wizard:session:%s", id)
}

// encodeSession marshals a session and compresses large blobs. The payload
// is prefixed with the algorithm name so Get can decode either form.
func encodeSession(sess *wizard.Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	algo := utils.BestCompression(data)
	compressed, err := utils.CompressData(data, algo)
	if err != nil {
		return nil, fmt.Errorf("compress session: %w", err)
	}

	payload := append([]byte(string(algo)+"|"), compressed...)
	return payload, nil
}

func decodeSession(payload []byte) (*wizard.Session, error) {
	sep := bytes.IndexByte(payload, '|')
	if sep < 0 {
		return nil, errors.New("malformed session payload")
	}

	data, err := utils.DecompressData(payload[sep+1:], utils.CompressionAlgorithm(payload[:sep]))
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}

	var sess wizard.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *wizard.Session) error {
	payload, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*wizard.Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(payload)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		logger.Warn("Failed to delete session", "session_id", id, "error", err)
		return err
	}
	return nil
}

// Touch extends a session's TTL without rewriting it.
func (s *SessionStore) Touch(ctx context.Context, id string) error {
	ok, err := s.rdb.Expire(ctx, sessionKey(id), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// ListUserSessions scans for sessions belonging to a user. Scan is fine at
// wizard-session cardinality.
func (s *SessionStore) ListUserSessions(ctx context.Context, userID string) ([]*wizard.Session, error) {
	var out []*wizard.Session
	iter := s.rdb.Scan(ctx, 0, "wizard:session:*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		sess, err := decodeSession(payload)
		if err != nil {
			logger.Warn("Skipping corrupt session blob", "key", iter.Val(), "error", err)
			continue
		}
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
