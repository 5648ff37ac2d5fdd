package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowWithinWindow(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}
	ok, _ := l.Allow(ctx, "k")
	assert.False(t, ok, "fourth attempt should be limited")
	assert.Equal(t, 0, l.Remaining("k"))

	ok, _ = l.Allow(ctx, "other")
	assert.True(t, ok, "keys are independent")
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	defer l.Stop()
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	require.False(t, ok)

	time.Sleep(30 * time.Millisecond)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok, "new window should allow again")
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	require.NoError(t, l.Reset(ctx, "k"))
	assert.Equal(t, 1, l.Remaining("k"))
	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedis(client, "condopay:rl:", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("condopay:rl:a@example.com"))
	assert.Equal(t, time.Minute, mr.TTL("condopay:rl:a@example.com"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "window should reopen after expiry")
}

func TestRedisLimiter_Reset(t *testing.T) {
	_, client := setupRedis(t)
	l := NewRedis(client, "rl:", 1, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	ok, _ := l.Allow(ctx, "k")
	require.False(t, ok)

	require.NoError(t, l.Reset(ctx, "k"))
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedis(client, "rl:", 1, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "9.9.9.9:1234", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "9.9.9.9:1234", "5.6.7.8"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote addr without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestLoginLimiter_Middleware(t *testing.T) {
	ip := New(1, time.Minute)
	email := New(5, time.Minute)
	defer ip.Stop()
	defer email.Stop()
	ll := NewLoginLimiterWith(ip, email)

	h := ll.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgTooManyFromIP)
}

func TestLoginLimiter_Account(t *testing.T) {
	ll := NewLoginLimiterWith(New(100, time.Minute), New(2, time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := ll.AccountAllow(ctx, "A@Example.com ")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := ll.AccountAllow(ctx, "a@example.com")
	assert.False(t, ok, "email keys are case-insensitive")

	require.NoError(t, ll.AccountReset(ctx, "a@example.com"))
	ok, _ = ll.AccountAllow(ctx, "a@example.com")
	assert.True(t, ok)
}
