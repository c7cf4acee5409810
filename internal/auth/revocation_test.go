package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/models"
)

// fakeRedis answers SET and EXISTS from memory. Commands never reach the
// network because the hook does not call next.
type fakeRedis struct {
	mu   sync.Mutex
	keys map[string][]interface{} // key -> SET args after the value
	err  error
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("fake redis does not dial")
	}
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.err != nil {
			cmd.SetErr(f.err)
			return f.err
		}
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StatusCmd:
			if cmd.Name() != "set" {
				return fmt.Errorf("unexpected command %s", cmd.Name())
			}
			f.keys[args[1].(string)] = args[3:]
			c.SetVal("OK")
		case *redis.IntCmd:
			if cmd.Name() != "exists" {
				return fmt.Errorf("unexpected command %s", cmd.Name())
			}
			var n int64
			for _, k := range args[1:] {
				if _, ok := f.keys[k.(string)]; ok {
					n++
				}
			}
			c.SetVal(n)
		default:
			return fmt.Errorf("unexpected command %s", cmd.Name())
		}
		return nil
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newFakeRedis(t *testing.T) (*redis.Client, *fakeRedis) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	t.Cleanup(func() { rdb.Close() })
	fake := &fakeRedis{keys: map[string][]interface{}{}}
	rdb.AddHook(fake)
	return rdb, fake
}

func TestRedisRevokerRevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeRedis(t)
	rev := NewRedisRevoker(rdb)

	revoked, err := rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rev.Revoke(ctx, "jti-1", 2*time.Hour))
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// The key expires together with the token.
	require.Contains(t, fake.keys, "revoked:jti-1")
	assert.Equal(t, []interface{}{"ex", int64(7200)}, fake.keys["revoked:jti-1"])

	revoked, err = rev.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevokerSkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeRedis(t)
	rev := NewRedisRevoker(rdb)

	require.NoError(t, rev.Revoke(ctx, "jti-1", 0))
	require.NoError(t, rev.Revoke(ctx, "jti-2", -time.Minute))
	assert.Empty(t, fake.keys)
}

func TestRedisRevokerPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeRedis(t)
	fake.err = errors.New("connection reset")
	rev := NewRedisRevoker(rdb)

	assert.Error(t, rev.Revoke(ctx, "jti-1", time.Hour))
	_, err := rev.IsRevoked(ctx, "jti-1")
	assert.Error(t, err)
}

func TestVerifyFailsClosedWhenRevocationStoreErrors(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeRedis(t)
	svc, _, _ := newTestService(t)
	svc.revoker = NewRedisRevoker(rdb)

	sess, err := svc.CreateAccount(ctx, models.CreateAccountRequest{FullName: "Alice", Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, sess.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.Verify(ctx, sess.Token)
	assert.True(t, apperr.IsKind(err, apperr.KindAuth))

	fake.err = errors.New("connection reset")
	_, err = svc.Verify(ctx, sess.Token)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}
