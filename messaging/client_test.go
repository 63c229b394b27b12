// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chaperone-chat/chaperone/lib/secret"
)

func TestNewClientRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("NewClient with empty URL succeeded, want error")
	}
}

func TestServerVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/versions" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, ServerVersionsResponse{Versions: []string{"v1.11"}})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	response, err := client.ServerVersions(context.Background())
	if err != nil {
		t.Fatalf("ServerVersions failed: %v", err)
	}
	if len(response.Versions) != 1 || response.Versions[0] != "v1.11" {
		t.Errorf("unexpected versions: %v", response.Versions)
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/v3/login" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, map[string]string{
			"user_id":      "@mod:local",
			"access_token": "syt_token",
			"device_id":    "DEV1",
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	password, err := secret.NewFromBytes([]byte("hunter2"))
	if err != nil {
		t.Fatalf("secret.NewFromBytes failed: %v", err)
	}
	defer password.Close()

	session, err := client.Login(context.Background(), "mod", password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	defer session.Close()

	if session.UserID().String() != "@mod:local" {
		t.Errorf("unexpected user ID: %s", session.UserID())
	}
	if session.DeviceID() != "DEV1" {
		t.Errorf("unexpected device ID: %s", session.DeviceID())
	}
}

func TestLoginFailureIsMatrixError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeMatrixError(writer, http.StatusForbidden, ErrCodeForbidden, "bad password")
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	password, err := secret.NewFromBytes([]byte("wrong"))
	if err != nil {
		t.Fatalf("secret.NewFromBytes failed: %v", err)
	}
	defer password.Close()

	if _, err := client.Login(context.Background(), "mod", password); !IsMatrixError(err, ErrCodeForbidden) {
		t.Errorf("expected M_FORBIDDEN, got %v", err)
	}
}
