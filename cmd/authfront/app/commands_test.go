// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stacklok/authfront/pkg/config"
	"github.com/stacklok/authfront/pkg/versions"
)

// These tests share the global viper instance through the --config flag and
// therefore do not run in parallel.

func writeFixtures(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	usersFile := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(usersFile, []byte(fmt.Sprintf(`users:
  - subject: "1001"
    loginId: alice
    passwordHash: %q
    name: Alice
`, hash)), 0o600))

	cfgFile := filepath.Join(dir, "authfront.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf(`server:
  address: "127.0.0.1:0"
engine:
  base_url: https://engine.example.com/api
  access_token: service-token
users:
  file: %s
telemetry:
  metrics_address: "127.0.0.1:0"
%s`, usersFile, extra)), 0o600))
	return cfgFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "authfront ")
	assert.Contains(t, out, "Platform: ")
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info versions.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, versions.GetVersionInfo(), info)
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		want    []string
		wantErr string
	}{
		{
			name: "minimal",
			want: []string{"✓ Configuration is valid", "Sessions: memory", "Users: 1"},
		},
		{
			name: "rate limit and resource servers",
			extra: `rate_limit:
  requests_per_second: 5
  burst: 10
introspection:
  resource_servers:
    - id: rs
      secret: s
`,
			want: []string{"Rate limit: 5 req/s (burst 10)", "Introspection resource servers: 1"},
		},
		{
			name: "invalid session backend",
			extra: `session:
  backend: etcd
`,
			wantErr: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "validate", "--config", writeFixtures(t, tt.extra))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestValidateCmd_MissingUsersFile(t *testing.T) {
	cfgFile := writeFixtures(t, "")
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfgFile), "users.yaml")))

	_, err := execute(t, "validate", "--config", cfgFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user database is invalid")
}

func TestValidateCmd_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration loading failed")
}

func TestBuildServer_ServesHealth(t *testing.T) {
	cfg, err := config.Load(writeFixtures(t, ""))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := buildServer(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + srv.MetricsAddr() + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestBuildServer_InvalidUsers(t *testing.T) {
	cfg, err := config.Load(writeFixtures(t, ""))
	require.NoError(t, err)
	cfg.Users.File = filepath.Join(t.TempDir(), "absent.yaml")

	_, err = buildServer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load users")
}
