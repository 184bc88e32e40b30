// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/users"
)

func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	t.Helper()
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			t.Helper()
			b := NewMemoryBackend()
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
		"redis": func(t *testing.T) Backend {
			t.Helper()
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			b := NewRedisBackendWithClient(client, "test:")
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}
}

func TestSession_RoundTrip(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := New("sid-1", newBackend(t), time.Hour)

			in := &Values{
				User:         &users.User{Subject: "1001", LoginID: "john", GivenName: "John"},
				AuthTime:     1700000000,
				Ticket:       "ticket-1",
				ClaimNames:   []string{"given_name", "email#essential"},
				ClaimLocales: []string{"en"},
				Client:       &engine.Client{ClientID: 42, SubjectType: engine.SubjectTypePairwise},
			}
			require.NoError(t, s.SetBatch(ctx, in, AllKeys...))

			out, err := s.GetBatch(ctx, AllKeys...)
			require.NoError(t, err)
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("session values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSession_PartialAccess(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := New("sid-2", newBackend(t), time.Hour)

			require.NoError(t, s.SetBatch(ctx, &Values{
				User:     &users.User{Subject: "1001"},
				AuthTime: 1700000000,
				Ticket:   "t",
			}, KeyUser, KeyAuthTime, KeyTicket))

			v, err := s.Get(ctx, KeyTicket)
			require.NoError(t, err)
			assert.Equal(t, "t", v.Ticket)
			assert.Nil(t, v.User, "keys not requested are not loaded")

			require.NoError(t, s.Delete(ctx, KeyTicket))
			v, err = s.GetBatch(ctx, KeyUser, KeyTicket)
			require.NoError(t, err)
			assert.Empty(t, v.Ticket)
			require.NotNil(t, v.User)
			assert.Equal(t, "1001", v.User.Subject)

			// A zero field removes its key.
			require.NoError(t, s.Set(ctx, KeyUser, &Values{}))
			v, err = s.Get(ctx, KeyUser)
			require.NoError(t, err)
			assert.Nil(t, v.User)

			v, err = s.Get(ctx, KeyAuthTime)
			require.NoError(t, err)
			assert.Equal(t, int64(1700000000), v.AuthTime)
			assert.Equal(t, time.Unix(1700000000, 0), v.AuthenticatedAt())

			require.NoError(t, s.DeleteBatch(ctx, KeyUser, KeyAuthTime))
			v, err = s.GetBatch(ctx, AllKeys...)
			require.NoError(t, err)
			assert.Equal(t, &Values{}, v)
		})
	}
}

func TestSession_Clear(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			b := newBackend(t)
			s := New("sid-3", b, time.Hour)
			other := New("sid-4", b, time.Hour)

			require.NoError(t, s.Set(ctx, KeyTicket, &Values{Ticket: "a"}))
			require.NoError(t, other.Set(ctx, KeyTicket, &Values{Ticket: "b"}))
			require.NoError(t, s.Clear(ctx))

			v, err := s.Get(ctx, KeyTicket)
			require.NoError(t, err)
			assert.Empty(t, v.Ticket)

			v, err = other.Get(ctx, KeyTicket)
			require.NoError(t, err)
			assert.Equal(t, "b", v.Ticket, "clearing one session leaves others intact")
		})
	}
}

func TestSession_UnknownKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := NewMemoryBackend()
	t.Cleanup(func() { _ = b.Close() })
	s := New("sid", b, time.Hour)

	_, err := s.Get(ctx, Key("nope"))
	assert.ErrorContains(t, err, `unknown session key "nope"`)

	err = s.Set(ctx, Key("nope"), &Values{})
	assert.ErrorContains(t, err, `unknown session key "nope"`)
}

func TestRedisBackend_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)
	b := NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "authfront:")
	t.Cleanup(func() { _ = b.Close() })

	s := New("sid", b, time.Minute)
	require.NoError(t, s.Set(ctx, KeyTicket, &Values{Ticket: "t"}))

	assert.True(t, mr.Exists("authfront:session:sid"))
	assert.Equal(t, time.Minute, mr.TTL("authfront:session:sid"))

	mr.FastForward(2 * time.Minute)

	v, err := s.Get(ctx, KeyTicket)
	require.NoError(t, err)
	assert.Empty(t, v.Ticket)
}

func TestNewRedisBackend(t *testing.T) {
	t.Parallel()

	t.Run("connects", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		b, err := NewRedisBackend(context.Background(), RedisConfig{
			Addrs:     []string{mr.Addr()},
			KeyPrefix: "authfront:",
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		assert.NoError(t, b.Ping(context.Background()))
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()
		_, err := NewRedisBackend(context.Background(), RedisConfig{KeyPrefix: "x"})
		assert.ErrorContains(t, err, "at least one redis address is required")

		_, err = NewRedisBackend(context.Background(), RedisConfig{Addrs: []string{"localhost:6379"}})
		assert.ErrorContains(t, err, "key prefix is required")
	})

	t.Run("gives up when unreachable", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisBackend(context.Background(), RedisConfig{
			Addrs:           []string{addr},
			KeyPrefix:       "authfront:",
			DialTimeout:     100 * time.Millisecond,
			ConnectAttempts: 1,
		})
		assert.ErrorContains(t, err, "failed to connect to redis")
	})
}
