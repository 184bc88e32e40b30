// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session holds per-browser state between the authorization,
// decision and no-interaction flows.
//
// A session is a set of typed values addressed by a fixed Key set. Values
// are persisted by a Backend, one encoded blob per key, so reads and writes
// can be limited to the keys a handler needs. There is no atomicity across
// keys.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/users"
)

// Key names one value held in a session.
type Key string

// Session keys.
const (
	KeyUser         Key = "user"
	KeyAuthTime     Key = "authTime"
	KeyTicket       Key = "ticket"
	KeyClaimNames   Key = "claimNames"
	KeyClaimLocales Key = "claimLocales"
	KeyClient       Key = "client"
)

// AllKeys lists every session key.
var AllKeys = []Key{KeyUser, KeyAuthTime, KeyTicket, KeyClaimNames, KeyClaimLocales, KeyClient}

// Values is the typed content of a session. A zero field means the key is
// absent.
type Values struct {
	// User is the authenticated end user.
	User *users.User

	// AuthTime is when User authenticated, in unix seconds.
	AuthTime int64

	// Ticket identifies the authorization transaction awaiting a decision.
	Ticket string

	// ClaimNames and ClaimLocales are the claims requested by the client
	// of the pending transaction.
	ClaimNames   []string
	ClaimLocales []string

	// Client is the client of the pending transaction.
	Client *engine.Client
}

// AuthenticatedAt returns AuthTime as a time.
func (v *Values) AuthenticatedAt() time.Time {
	return time.Unix(v.AuthTime, 0)
}

type field struct {
	encode func(v *Values) (any, bool)
	decode func(v *Values, data []byte) error
}

func decodeInto[T any](set func(*Values, T)) func(*Values, []byte) error {
	return func(v *Values, data []byte) error {
		var out T
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		set(v, out)
		return nil
	}
}

var fields = map[Key]field{
	KeyUser: {
		encode: func(v *Values) (any, bool) { return v.User, v.User != nil },
		decode: decodeInto(func(v *Values, u *users.User) { v.User = u }),
	},
	KeyAuthTime: {
		encode: func(v *Values) (any, bool) { return v.AuthTime, v.AuthTime != 0 },
		decode: decodeInto(func(v *Values, t int64) { v.AuthTime = t }),
	},
	KeyTicket: {
		encode: func(v *Values) (any, bool) { return v.Ticket, v.Ticket != "" },
		decode: decodeInto(func(v *Values, t string) { v.Ticket = t }),
	},
	KeyClaimNames: {
		encode: func(v *Values) (any, bool) { return v.ClaimNames, len(v.ClaimNames) > 0 },
		decode: decodeInto(func(v *Values, n []string) { v.ClaimNames = n }),
	},
	KeyClaimLocales: {
		encode: func(v *Values) (any, bool) { return v.ClaimLocales, len(v.ClaimLocales) > 0 },
		decode: decodeInto(func(v *Values, l []string) { v.ClaimLocales = l }),
	},
	KeyClient: {
		encode: func(v *Values) (any, bool) { return v.Client, v.Client != nil },
		decode: decodeInto(func(v *Values, c *engine.Client) { v.Client = c }),
	},
}

func lookupField(k Key) (field, error) {
	f, ok := fields[k]
	if !ok {
		return field{}, fmt.Errorf("unknown session key %q", k)
	}
	return f, nil
}

// Session is a handle on one stored session. It holds no values itself;
// every accessor goes to the backend.
type Session struct {
	id      string
	backend Backend
	ttl     time.Duration
}

// New returns a handle on the session id stored in backend. Writes extend
// the session lifetime to ttl.
func New(id string, backend Backend, ttl time.Duration) *Session {
	return &Session{id: id, backend: backend, ttl: ttl}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Get loads a single key.
func (s *Session) Get(ctx context.Context, key Key) (*Values, error) {
	return s.GetBatch(ctx, key)
}

// GetBatch loads the given keys. Keys absent from the store leave their
// field zero.
func (s *Session) GetBatch(ctx context.Context, keys ...Key) (*Values, error) {
	for _, k := range keys {
		if _, err := lookupField(k); err != nil {
			return nil, err
		}
	}

	raw, err := s.backend.Load(ctx, s.id, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	v := &Values{}
	for k, data := range raw {
		f, err := lookupField(k)
		if err != nil {
			continue
		}
		if err := f.decode(v, data); err != nil {
			return nil, fmt.Errorf("failed to decode session key %q: %w", k, err)
		}
	}
	return v, nil
}

// Set stores the field of v selected by key. A zero field removes the key.
func (s *Session) Set(ctx context.Context, key Key, v *Values) error {
	return s.SetBatch(ctx, v, key)
}

// SetBatch stores the fields of v selected by keys. Zero fields remove their
// keys.
func (s *Session) SetBatch(ctx context.Context, v *Values, keys ...Key) error {
	store := make(map[Key][]byte, len(keys))
	var remove []Key
	for _, k := range keys {
		f, err := lookupField(k)
		if err != nil {
			return err
		}
		value, present := f.encode(v)
		if !present {
			remove = append(remove, k)
			continue
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode session key %q: %w", k, err)
		}
		store[k] = data
	}

	if len(store) > 0 {
		if err := s.backend.Store(ctx, s.id, store, s.ttl); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}
	if len(remove) > 0 {
		return s.DeleteBatch(ctx, remove...)
	}
	return nil
}

// Delete removes a single key.
func (s *Session) Delete(ctx context.Context, key Key) error {
	return s.DeleteBatch(ctx, key)
}

// DeleteBatch removes the given keys.
func (s *Session) DeleteBatch(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.Remove(ctx, s.id, keys); err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

// Clear removes every key of the session.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.backend.Destroy(ctx, s.id); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
