package holdstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/holdstore"
)

func TestRedisStoreGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectGet("hold:9:alice").SetVal(`{"seatIds":["A1","A2"],"showtimeId":9}`)

	rec, err := store.Get(ctx, 9, "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"A1", "A2"}, rec.SeatIDs)
	assert.Equal(t, uint64(9), rec.ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)

	mock.ExpectGet("hold:9:alice").RedisNil()

	rec, err := store.Get(context.Background(), 9, "alice")
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetCorruptValue(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)

	mock.ExpectGet("hold:9:alice").SetVal("{not json")

	rec, err := store.Get(context.Background(), 9, "alice")
	require.NoError(t, err)
	assert.Nil(t, rec, "undecodable values are treated as missing")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorePut(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)

	rec := holdstore.HoldRecord{SeatIDs: []string{"A1"}, ScheduleID: 9}
	mock.ExpectSet("hold:9:alice", []byte(`{"seatIds":["A1"],"showtimeId":9}`), 5*time.Minute).SetVal("OK")

	require.NoError(t, store.Put(context.Background(), "alice", rec, 5*time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreScan(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)

	mock.ExpectScan(0, "hold:9:*", 100).SetVal([]string{"hold:9:alice", "hold:9:bob"}, 0)
	mock.ExpectGet("hold:9:alice").SetVal(`{"seatIds":["A1"],"showtimeId":9}`)
	mock.ExpectGet("hold:9:bob").RedisNil() // expired between SCAN and GET

	holds, err := store.Scan(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, []string{"A1"}, holds["alice"].SeatIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := holdstore.NewRedisStore(client)

	mock.ExpectDel("hold:9:alice").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), 9, "alice"))
	require.NoError(t, mock.ExpectationsWereMet())
}
