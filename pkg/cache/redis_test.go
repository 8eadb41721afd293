package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusProjection struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`
}

func TestRedisStatusCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisStatusCache(db, 5*time.Minute)
	ctx := context.Background()

	payload := `{"order_code":"ORD1700000000abcd1234","status":"pending"}`
	mock.ExpectSet("order_status:ORD1700000000abcd1234", payload, 5*time.Minute).SetVal("OK")
	mock.ExpectGet("order_status:ORD1700000000abcd1234").SetVal(payload)

	err := c.Set(ctx, "ORD1700000000abcd1234", statusProjection{OrderCode: "ORD1700000000abcd1234", Status: "pending"})
	require.NoError(t, err)

	var got statusProjection
	found, err := c.Get(ctx, "ORD1700000000abcd1234", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "pending", got.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStatusCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisStatusCache(db, time.Minute)

	mock.ExpectGet("order_status:missing").RedisNil()

	var got statusProjection
	found, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStatusCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisStatusCache(db, time.Minute)

	mock.ExpectGet("order_status:ORD1").SetErr(errors.New("connection refused"))

	var got statusProjection
	found, err := c.Get(context.Background(), "ORD1", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisStatusCache_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisStatusCache(db, time.Minute)

	mock.ExpectDel("order_status:ORD1").SetVal(1)

	require.NoError(t, c.Delete(context.Background(), "ORD1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
