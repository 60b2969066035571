package auth

import (
	"context"
	"fmt"
	"regexp"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/store"
	"github.com/Akashic-y/Pikax/webclient"
)

var postKeyRegexp = regexp.MustCompile(`post_key" value="(.*?)"`)

// DirectCredentials logs in with username and password. The exchange is two
// step: fetch a one-time token from the login page, then submit the
// credentials together with the token.
type DirectCredentials struct {
	log    pikax.Logger
	client *webclient.Client
	store  *store.SessionStore

	username string
	password string
}

func NewDirectCredentials(log pikax.Logger, client *webclient.Client, sessionStore *store.SessionStore, username, password string) *DirectCredentials {
	return &DirectCredentials{
		log:      log,
		client:   client,
		store:    sessionStore,
		username: username,
		password: password,
	}
}

func (s *DirectCredentials) Name() string {
	return "password"
}

func (s *DirectCredentials) Attempt(ctx context.Context) (*Session, error) {
	postKey, err := s.fetchPostKey(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Debugf("attempting login for %s", pikax.ObfuscateUsername(s.username))

	if err := s.client.SubmitLogin(ctx, s.username, s.password, postKey); err != nil {
		return nil, fmt.Errorf("%w: %w", pikax.ErrRequestFailed, err)
	}

	logged, err := s.client.IsLoggedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed verifying login: %w", err)
	} else if !logged {
		return nil, pikax.ErrLoginRejected
	}

	if err := s.store.Save(s.client.Cookies()); err != nil {
		s.log.WithError(err).Warn("failed persisting session")
	}

	return &Session{Client: s.client}, nil
}

func (s *DirectCredentials) fetchPostKey(ctx context.Context) (string, error) {
	body, err := s.client.LoginPage(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pikax.ErrRequestFailed, err)
	}

	match := postKeyRegexp.FindSubmatch(body)
	if match == nil {
		return "", pikax.ErrTokenNotFound
	}

	postKey := string(match[1])
	s.log.Debugf("login token retrieved: %s", postKey)
	return postKey, nil
}
