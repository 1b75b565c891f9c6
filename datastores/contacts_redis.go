package datastores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// maxTxAttempts bounds the retries of a transaction losing a WATCH race.
const maxTxAttempts = 16

// ContactsRedis implements [ContactsStore] on Redis.
//
// Each contact is a JSON document under its own key. A sorted set scored by
// the numeric identifier keeps insertion order, a hash maps folded names to
// identifiers and a counter hands out identifiers. Writes claim and release
// names in the same MULTI/EXEC as the contact itself.
type ContactsRedis struct {
	client *redis.Client
	prefix string
}

var _ ContactsStore = (*ContactsRedis)(nil)

// NewContactsRedis returns a store using client with keys under prefix.
// A ping is performed to verify connectivity.
func NewContactsRedis(ctx context.Context, client *redis.Client, prefix string) (*ContactsRedis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &ContactsRedis{client: client, prefix: prefix}, nil
}

func (s *ContactsRedis) seqKey() string { return s.prefix + "contacts:seq" }
func (s *ContactsRedis) idsKey() string { return s.prefix + "contacts:ids" }
func (s *ContactsRedis) namesKey() string { return s.prefix + "contacts:names" }
func (s *ContactsRedis) contactKey(id ContactID) string { return s.prefix + "contact:" + id }

func (s *ContactsRedis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *ContactsRedis) Close(context.Context) error {
	return s.client.Close()
}

func (s *ContactsRedis) List(ctx context.Context) ([]*Contact, error) {
	ids, err := s.client.ZRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrange: %w", err)
	}
	contacts := make([]*Contact, 0, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.contactKey(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // deleted between ZRANGE and MGET
		}
		c, err := decodeContact([]byte(str))
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func (s *ContactsRedis) Get(ctx context.Context, id ContactID) (*Contact, error) {
	data, err := s.client.Get(ctx, s.contactKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeContact(data)
}

func (s *ContactsRedis) Create(ctx context.Context, c *Contact) (ContactID, error) {
	var id ContactID
	var seq int64
	err := s.watch(ctx, func(tx *redis.Tx) error {
		if err := s.nameTaken(ctx, tx, nameKey(c.Name), ""); err != nil {
			return err
		}
		if id == "" {
			var err error
			if seq, err = tx.Incr(ctx, s.seqKey()).Result(); err != nil {
				return fmt.Errorf("redis incr: %w", err)
			}
			id = strconv.FormatInt(seq, 10)
		}

		data, err := json.Marshal(&Contact{ID: id, Name: c.Name, Number: c.Number})
		if err != nil {
			return fmt.Errorf("marshal contact: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.contactKey(id), data, 0)
			pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(seq), Member: id})
			pipe.HSet(ctx, s.namesKey(), nameKey(c.Name), id)
			return nil
		})
		return err
	}, s.namesKey())
	if err != nil {
		return "", err
	}
	c.ID = id
	return id, nil
}

func (s *ContactsRedis) Update(ctx context.Context, id ContactID, c *Contact) (*Contact, error) {
	key := s.contactKey(id)
	updated := &Contact{ID: id, Name: c.Name, Number: c.Number}
	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrObjectNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeContact(data)
		if err != nil {
			return err
		}

		oldKey, newKey := nameKey(current.Name), nameKey(c.Name)
		if err := s.nameTaken(ctx, tx, newKey, id); err != nil {
			return err
		}

		data, err = json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal contact: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if oldKey != newKey {
				pipe.HDel(ctx, s.namesKey(), oldKey)
				pipe.HSet(ctx, s.namesKey(), newKey, id)
			}
			return nil
		})
		return err
	}, key, s.namesKey())
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ContactsRedis) Delete(ctx context.Context, id ContactID) error {
	key := s.contactKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err := decodeContact(data)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.idsKey(), id)
			pipe.HDel(ctx, s.namesKey(), nameKey(current.Name))
			return nil
		})
		return err
	}, key, s.namesKey())
}

// watch runs fn in an optimistic transaction over keys, retrying while
// another client changes them between WATCH and EXEC.
func (s *ContactsRedis) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxAttempts {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis: %d attempts: %w", maxTxAttempts, redis.TxFailedErr)
}

// nameTaken returns [ErrDuplicateName] when key belongs to a contact other
// than self. The names hash must be watched by tx.
func (s *ContactsRedis) nameTaken(ctx context.Context, tx *redis.Tx, key string, self ContactID) error {
	owner, err := tx.HGet(ctx, s.namesKey(), key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return fmt.Errorf("redis hget: %w", err)
	case owner != self:
		return ErrDuplicateName
	default:
		return nil
	}
}

func (s *ContactsRedis) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.idsKey()).Result()
	return int(n), err
}

func decodeContact(data []byte) (*Contact, error) {
	var c Contact
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	return &c, nil
}
