package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/store"
	"github.com/Akashic-y/Pikax/webclient"
)

// Prompter is the line oriented human interaction boundary used by the
// interactive strategy. The command line tool backs it with a terminal,
// tests with a scripted implementation.
type Prompter interface {
	Ask(prompt string) (string, error)
}

// InteractiveSession asks a human for a raw cookie string and keeps asking
// until a supplied cookie set verifies or the human explicitly declines.
type InteractiveSession struct {
	log      pikax.Logger
	client   *webclient.Client
	store    *store.SessionStore
	prompter Prompter
}

func NewInteractiveSession(log pikax.Logger, client *webclient.Client, sessionStore *store.SessionStore, prompter Prompter) *InteractiveSession {
	return &InteractiveSession{log: log, client: client, store: sessionStore, prompter: prompter}
}

func (s *InteractiveSession) Name() string {
	return "interactive"
}

func (s *InteractiveSession) Attempt(ctx context.Context) (*Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		answer, err := s.prompter.Ask("would you like to provide new cookies? [y/n]: ")
		if err != nil {
			return nil, fmt.Errorf("failed reading answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "n", "no":
			return nil, fmt.Errorf("cookies login declined: %w", pikax.ErrLoginRejected)
		case "y", "yes":
		default:
			s.log.Info("please answer with a case-insensitive y, n, yes or no")
			continue
		}

		raw, err := s.prompter.Ask("enter your cookies, just the session id will work, e.g. PHPSESSID=123456: ")
		if err != nil {
			return nil, fmt.Errorf("failed reading cookies: %w", err)
		}

		cookies, err := ParseCookies(raw)
		if err != nil {
			// prior session cookies are untouched, ask again
			s.log.WithError(err).Warn("cookies entered are invalid")
			continue
		}

		if err := s.client.ReplaceCookies(cookies); err != nil {
			return nil, fmt.Errorf("failed installing cookies: %w", err)
		}

		logged, err := s.client.IsLoggedIn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed verifying cookies: %w", err)
		}

		if !logged {
			s.log.Warn("login with the cookies entered was rejected")
			continue
		}

		if err := s.store.Save(s.client.Cookies()); err != nil {
			s.log.WithError(err).Warn("failed persisting session")
		}

		return &Session{Client: s.client}, nil
	}
}

// ParseCookies splits a semicolon separated key=value cookie string into
// discrete cookies. A single malformed entry fails the whole parse.
func ParseCookies(raw string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: entry %q is not in key=value form", pikax.ErrInvalidCookies, entry)
		}

		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no cookie entries", pikax.ErrInvalidCookies)
	}

	return cookies, nil
}
