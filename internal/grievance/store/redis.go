package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"civicdesk/internal/grievance/models"
)

const (
	grievanceKeyPrefix = "grievance:"
	scanBatch          = 200
	maxTxRetries       = 5
)

// ErrContention is returned when optimistic updates keep losing the race.
var ErrContention = errors.New("grievance update contention")

// Redis stores each grievance as a JSON string under {namespace}grievance:{id}.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedis keys records under namespace, which lets several deployments share
// one Redis. An empty namespace is allowed.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (s *Redis) key(id string) string {
	return s.namespace + grievanceKeyPrefix + id
}

// CreateIfAbsent uses SETNX so concurrent intakes for one id cannot both win.
func (s *Redis) CreateIfAbsent(ctx context.Context, g *models.Grievance) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal grievance: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(g.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx grievance: %w", err)
	}
	if !ok {
		return ErrAlreadyUsed
	}
	return nil
}

func (s *Redis) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get grievance: %w", err)
	}
	return decode(data)
}

func (s *Redis) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("exists grievance: %w", err)
	}
	return n > 0, nil
}

// Execute is a WATCH/MULTI optimistic transaction, retried a bounded number
// of times when another writer touches the key first.
func (s *Redis) Execute(ctx context.Context, id string, validate func(*models.Grievance) error, mutate func(*models.Grievance)) (*models.Grievance, error) {
	key := s.key(id)
	var out *models.Grievance

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get grievance: %w", err)
		}
		g, err := decode(data)
		if err != nil {
			return err
		}
		if validate != nil {
			if err := validate(g); err != nil {
				return err
			}
		}
		mutate(g)

		updated, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal grievance: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		out = g
		return nil
	}

	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrContention
}

// ListAll walks the keyspace with SCAN and fetches values with MGET. Records
// written during the walk may or may not appear.
func (s *Redis) ListAll(ctx context.Context) ([]*models.Grievance, error) {
	var out []*models.Grievance
	iter := s.client.Scan(ctx, 0, s.key("*"), scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		vals, err := s.client.MGet(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("mget grievances: %w", err)
		}
		for _, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			g, err := decode([]byte(str))
			if err != nil {
				return err
			}
			out = append(out, g)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan grievances: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	sortRecords(out)
	return out, nil
}

func decode(data []byte) (*models.Grievance, error) {
	var g models.Grievance
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode grievance: %w", err)
	}
	return &g, nil
}
