// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/chaperone-chat/chaperone/lib/config"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/secret"
	"github.com/chaperone-chat/chaperone/messaging"
)

// SessionConfig carries the homeserver coordinates a command connects
// with. Built from the config file's homeserver section; the token is
// read from TokenPath at connect time, never held in the config.
type SessionConfig struct {
	HomeserverURL string
	UserID        string
	TokenPath     string
}

// FromConfig builds a SessionConfig from a loaded configuration.
func FromConfig(cfg *config.Config) SessionConfig {
	return SessionConfig{
		HomeserverURL: cfg.Homeserver.URL,
		UserID:        cfg.Homeserver.UserID,
		TokenPath:     cfg.Homeserver.TokenPath,
	}
}

// Connect opens an authenticated session using the saved access token.
// The caller owns both returned values: close the session, then the
// client's idle connections.
func (sc SessionConfig) Connect() (*messaging.Client, *messaging.DirectSession, error) {
	if sc.HomeserverURL == "" {
		return nil, nil, fmt.Errorf("homeserver URL not configured")
	}
	if sc.UserID == "" {
		return nil, nil, fmt.Errorf("user ID not configured; run 'chaperone login' first")
	}

	userID, err := ref.ParseUserID(sc.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("configured user ID: %w", err)
	}

	token, err := secret.ReadFromPath(sc.TokenPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading access token from %s (run 'chaperone login'?): %w", sc.TokenPath, err)
	}
	defer token.Close()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: sc.HomeserverURL,
	})
	if err != nil {
		return nil, nil, err
	}

	session, err := client.SessionFromToken(userID, token.String())
	if err != nil {
		client.CloseIdleConnections()
		return nil, nil, err
	}
	return client, session, nil
}
