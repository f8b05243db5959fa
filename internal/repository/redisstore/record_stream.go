package redisstore

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/httplog-starter/internal/infra"
	"github.com/xela07ax/httplog-starter/internal/shipper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RecordStream дописывает пачки записей в Redis-список и публикует сигнал о новой пачке.
// Список обрезается до maxLen последних записей.
type RecordStream struct {
	rdb     *redis.Client
	key     string
	channel string
	maxLen  int64
}

func NewRecordStream(rdb *redis.Client, maxLen int64) *RecordStream {
	return &RecordStream{
		rdb:     rdb,
		key:     infra.RedisKeyRecords,
		channel: infra.RedisChanRecords,
		maxLen:  maxLen,
	}
}

func (s *RecordStream) WriteBatch(ctx context.Context, records []shipper.Record) error {
	if len(records) == 0 {
		return nil
	}

	values, err := encode(records)
	if err != nil {
		return err
	}

	// Одна пачка — один round-trip
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, values...)
		if s.maxLen > 0 {
			pipe.LTrim(ctx, s.key, -s.maxLen, -1)
		}
		pipe.Publish(ctx, s.channel, len(records))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: failed to push %d records: %w", len(records), err)
	}
	return nil
}

func encode(records []shipper.Record) ([]interface{}, error) {
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("redis: failed to encode record %s: %w", rec.ID, err)
		}
		values = append(values, string(b))
	}
	return values, nil
}
