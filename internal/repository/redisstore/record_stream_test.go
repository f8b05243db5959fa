package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/httplog-starter/internal/advice"
	"github.com/xela07ax/httplog-starter/internal/shipper"
)

func TestEncode(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	values, err := encode([]shipper.Record{
		{ID: "a", Level: advice.LevelWarn, Message: "slow", Timestamp: ts},
	})
	require.NoError(t, err)
	require.Len(t, values, 1)

	assert.JSONEq(t,
		`{"id":"a","level":"WARN","message":"slow","timestamp":"2024-05-01T10:00:00Z"}`,
		values[0].(string))
}

func TestRecordStream_EmptyBatchSkipsRedis(t *testing.T) {
	// клиент указывает в никуда: пустая пачка не должна доходить до сети
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	assert.NoError(t, NewRecordStream(rdb, 100).WriteBatch(context.Background(), nil))
}
