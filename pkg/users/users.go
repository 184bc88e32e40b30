// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package users is the credential-validation backend of the adapter: it
// authenticates end users by login ID and password and resolves their
// profiles by subject.
package users

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=users.go Store

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned when a login ID and password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned when no user has the requested subject.
	ErrNotFound = errors.New("user not found")
)

// Address is the postal address of a user (OpenID Connect Core §5.1.1).
type Address struct {
	Formatted     string `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty" yaml:"streetAddress,omitempty"`
	Locality      string `json:"locality,omitempty" yaml:"locality,omitempty"`
	Region        string `json:"region,omitempty" yaml:"region,omitempty"`
	PostalCode    string `json:"postalCode,omitempty" yaml:"postalCode,omitempty"`
	Country       string `json:"country,omitempty" yaml:"country,omitempty"`
}

// User is an end-user profile. Field names follow the camelCase form of the
// OpenID Connect standard claims so that a claim name such as "given_name"
// maps onto the "givenName" field.
type User struct {
	Subject string `json:"subject" yaml:"subject"`
	LoginID string `json:"loginId" yaml:"loginId"`

	// PasswordHash is a bcrypt hash. It is never serialized to JSON.
	PasswordHash string `json:"-" yaml:"passwordHash"`

	Name                string   `json:"name,omitempty" yaml:"name,omitempty"`
	GivenName           string   `json:"givenName,omitempty" yaml:"givenName,omitempty"`
	FamilyName          string   `json:"familyName,omitempty" yaml:"familyName,omitempty"`
	MiddleName          string   `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	Nickname            string   `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	PreferredUsername   string   `json:"preferredUsername,omitempty" yaml:"preferredUsername,omitempty"`
	Profile             string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	Picture             string   `json:"picture,omitempty" yaml:"picture,omitempty"`
	Website             string   `json:"website,omitempty" yaml:"website,omitempty"`
	Email               string   `json:"email,omitempty" yaml:"email,omitempty"`
	EmailVerified       *bool    `json:"emailVerified,omitempty" yaml:"emailVerified,omitempty"`
	Gender              string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	Birthdate           string   `json:"birthdate,omitempty" yaml:"birthdate,omitempty"`
	Zoneinfo            string   `json:"zoneinfo,omitempty" yaml:"zoneinfo,omitempty"`
	Locale              string   `json:"locale,omitempty" yaml:"locale,omitempty"`
	PhoneNumber         string   `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	PhoneNumberVerified *bool    `json:"phoneNumberVerified,omitempty" yaml:"phoneNumberVerified,omitempty"`
	Address             *Address `json:"address,omitempty" yaml:"address,omitempty"`
	UpdatedAt           int64    `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Store validates credentials and looks up user profiles.
type Store interface {
	// Authenticate returns the user with the given login ID if password
	// matches. It returns ErrInvalidCredentials otherwise, including when no
	// such user exists.
	Authenticate(ctx context.Context, loginID, password string) (*User, error)

	// Lookup returns the user with the given subject, or ErrNotFound.
	Lookup(ctx context.Context, subject string) (*User, error)
}
