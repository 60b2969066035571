package auth

import (
	"context"
	"fmt"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/store"
	"github.com/Akashic-y/Pikax/webclient"
)

// StoredSession restores a previously persisted session and verifies it is
// still accepted by the server.
type StoredSession struct {
	log    pikax.Logger
	client *webclient.Client
	store  *store.SessionStore
}

func NewStoredSession(log pikax.Logger, client *webclient.Client, sessionStore *store.SessionStore) *StoredSession {
	return &StoredSession{log: log, client: client, store: sessionStore}
}

func (s *StoredSession) Name() string {
	return "stored"
}

func (s *StoredSession) Attempt(ctx context.Context) (*Session, error) {
	cookies, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pikax.ErrSessionUnavailable, err)
	}

	s.log.Debugf("session file found: %s, attempting login with stored session", s.store.Path())

	if err := s.client.ReplaceCookies(cookies); err != nil {
		return nil, fmt.Errorf("failed installing stored cookies: %w", err)
	}

	logged, err := s.client.IsLoggedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed verifying stored session: %w", err)
	}

	if !logged {
		if err := s.store.Delete(); err != nil {
			s.log.WithError(err).Warn("failed removing outdated session file")
		} else {
			s.log.Info("removed outdated session file")
		}

		return nil, pikax.ErrSessionStale
	}

	return &Session{Client: s.client}, nil
}
