// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package users

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// dummyHash is compared against when the login ID is unknown so that unknown
// and known users take the same time to reject.
//
//nolint:gosec // G101: bcrypt hash of a random string, not a credential
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZDfhh0sV3DBpRnXNpg.d7W"

// StaticStore is a read-only, in-memory user store loaded once at startup.
type StaticStore struct {
	byLoginID map[string]*User
	bySubject map[string]*User
}

// Compile-time interface check.
var _ Store = (*StaticStore)(nil)

// fileFormat is the on-disk layout of a user file.
type fileFormat struct {
	Users []User `yaml:"users"`
}

// NewStaticStore builds a store from the given users. Subjects and login IDs
// must be unique and non-empty.
func NewStaticStore(list []User) (*StaticStore, error) {
	s := &StaticStore{
		byLoginID: make(map[string]*User, len(list)),
		bySubject: make(map[string]*User, len(list)),
	}

	var errs []error
	for i := range list {
		u := list[i]
		switch {
		case u.Subject == "":
			errs = append(errs, fmt.Errorf("user %d: subject is required", i))
			continue
		case u.LoginID == "":
			errs = append(errs, fmt.Errorf("user %q: loginId is required", u.Subject))
			continue
		case u.PasswordHash == "":
			errs = append(errs, fmt.Errorf("user %q: passwordHash is required", u.Subject))
			continue
		}
		if _, dup := s.bySubject[u.Subject]; dup {
			errs = append(errs, fmt.Errorf("duplicate subject %q", u.Subject))
			continue
		}
		if _, dup := s.byLoginID[u.LoginID]; dup {
			errs = append(errs, fmt.Errorf("duplicate loginId %q", u.LoginID))
			continue
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			errs = append(errs, fmt.Errorf("user %q: passwordHash is not a bcrypt hash: %w", u.Subject, err))
			continue
		}
		s.bySubject[u.Subject] = &u
		s.byLoginID[u.LoginID] = &u
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStaticStore reads a YAML user file.
func LoadStaticStore(path string) (*StaticStore, error) {
	// #nosec G304 - path comes from operator configuration
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse user file %s: %w", path, err)
	}
	return NewStaticStore(f.Users)
}

// Authenticate implements Store.
func (s *StaticStore) Authenticate(_ context.Context, loginID, password string) (*User, error) {
	u, ok := s.byLoginID[strings.TrimSpace(loginID)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u.clone(), nil
}

// Lookup implements Store.
func (s *StaticStore) Lookup(_ context.Context, subject string) (*User, error) {
	u, ok := s.bySubject[subject]
	if !ok {
		return nil, ErrNotFound
	}
	return u.clone(), nil
}

// Len returns the number of users in the store.
func (s *StaticStore) Len() int {
	return len(s.bySubject)
}

func (u *User) clone() *User {
	c := *u
	if u.Address != nil {
		addr := *u.Address
		c.Address = &addr
	}
	if u.EmailVerified != nil {
		v := *u.EmailVerified
		c.EmailVerified = &v
	}
	if u.PhoneNumberVerified != nil {
		v := *u.PhoneNumberVerified
		c.PhoneNumberVerified = &v
	}
	return &c
}
