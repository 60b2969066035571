package auth_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/auth"
	"github.com/Akashic-y/Pikax/store"
	"github.com/Akashic-y/Pikax/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPostKey = "a1b2c3d4"
	testCookie  = "gold"
)

// fakeFrontend emulates the minimal login surface: a login page embedding a
// one-time token, a login endpoint granting a session cookie, and a status
// endpoint reporting whether the session cookie is the granted one.
type fakeFrontend struct {
	username string
	password string

	// omitPostKey serves a login page without the token pattern
	omitPostKey bool
	// breakLoginEndpoint makes the login endpoint unreachable
	breakLoginEndpoint bool
}

func (f *fakeFrontend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if f.omitPostKey {
			fmt.Fprint(w, `<html><body>maintenance</body></html>`)
			return
		}

		fmt.Fprintf(w, `<html><input type="hidden" name="post_key" value="%s"></html>`, testPostKey)
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if f.breakLoginEndpoint {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("pixiv_id") == f.username &&
			r.PostForm.Get("password") == f.password &&
			r.PostForm.Get("post_key") == testPostKey {
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: testCookie, Path: "/"})
		}

		// the endpoint answers 200 either way, acceptance is only
		// observable through the status endpoint
		fmt.Fprint(w, `{"error":false}`)
	})
	mux.HandleFunc("/touch/ajax/user/self/status", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("PHPSESSID")
		logged := err == nil && cookie.Value == testCookie
		fmt.Fprintf(w, `{"body":{"user_status":{"is_logged_in":%t}}}`, logged)
	})

	return mux
}

type testEnv struct {
	client *webclient.Client
	store  *store.SessionStore
}

func newTestEnv(t *testing.T, frontend *fakeFrontend) *testEnv {
	server := httptest.NewServer(frontend.handler(t))
	t.Cleanup(server.Close)

	client, err := webclient.NewClientWithUrls(&pikax.NullLogger{}, server.URL, server.URL)
	require.NoError(t, err)

	return &testEnv{
		client: client,
		store:  store.NewSessionStore(&pikax.NullLogger{}, filepath.Join(t.TempDir(), "cookies.json")),
	}
}

func TestDirectCredentialsSuccess(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{username: "user@example.com", password: "hunter2"})

	strategy := auth.NewDirectCredentials(&pikax.NullLogger{}, env.client, env.store, "user@example.com", "hunter2")
	sess, err := strategy.Attempt(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)

	// the session is verified and usable
	logged, err := sess.Client.IsLoggedIn(context.Background())
	require.NoError(t, err)
	assert.True(t, logged)

	// a fresh login persists the session
	cookies, err := env.store.Load()
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "PHPSESSID", cookies[0].Name)
	assert.Equal(t, testCookie, cookies[0].Value)
}

func TestDirectCredentialsTokenNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{omitPostKey: true})

	strategy := auth.NewDirectCredentials(&pikax.NullLogger{}, env.client, env.store, "user", "pass")
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrTokenNotFound)
}

func TestDirectCredentialsRequestFailure(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{breakLoginEndpoint: true})

	strategy := auth.NewDirectCredentials(&pikax.NullLogger{}, env.client, env.store, "user", "pass")
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrRequestFailed)
}

func TestDirectCredentialsRejected(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{username: "user", password: "correct"})

	strategy := auth.NewDirectCredentials(&pikax.NullLogger{}, env.client, env.store, "user", "wrong")
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrLoginRejected)

	// a rejected login must not persist anything
	_, err = env.store.Load()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoredSessionNoFile(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})

	strategy := auth.NewStoredSession(&pikax.NullLogger{}, env.client, env.store)
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrSessionUnavailable)

	// the attempt must not create any file
	_, statErr := os.Stat(env.store.Path())
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestStoredSessionCorruptedSelfHeals(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})
	require.NoError(t, os.WriteFile(env.store.Path(), []byte("\x00not json\xff"), 0o600))

	strategy := auth.NewStoredSession(&pikax.NullLogger{}, env.client, env.store)
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrSessionUnavailable)
	assert.ErrorIs(t, err, store.ErrCorrupted)

	// the corrupted file is gone, the next run starts clean
	_, statErr := os.Stat(env.store.Path())
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestStoredSessionStale(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})
	require.NoError(t, env.store.Save([]*http.Cookie{{Name: "PHPSESSID", Value: "expired"}}))

	strategy := auth.NewStoredSession(&pikax.NullLogger{}, env.client, env.store)
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrSessionStale)

	// the outdated file is removed
	_, statErr := os.Stat(env.store.Path())
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestStoredSessionSuccess(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})
	require.NoError(t, env.store.Save([]*http.Cookie{{Name: "PHPSESSID", Value: testCookie}}))

	strategy := auth.NewStoredSession(&pikax.NullLogger{}, env.client, env.store)
	sess, err := strategy.Attempt(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)

	// a restored session stays persisted
	_, err = env.store.Load()
	require.NoError(t, err)
}

type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) Ask(string) (string, error) {
	if len(p.answers) == 0 {
		return "", io.ErrUnexpectedEOF
	}

	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func TestInteractiveSessionDecline(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})

	strategy := auth.NewInteractiveSession(&pikax.NullLogger{}, env.client, env.store, &scriptedPrompter{answers: []string{"N"}})
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrLoginRejected)
}

func TestInteractiveSessionInvalidCookiesKeepsSession(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})
	require.NoError(t, env.client.ReplaceCookies([]*http.Cookie{{Name: "prior", Value: "kept"}}))

	prompter := &scriptedPrompter{answers: []string{"y", "a=1;bad", "no"}}
	strategy := auth.NewInteractiveSession(&pikax.NullLogger{}, env.client, env.store, prompter)
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	require.Error(t, err)

	// the malformed cookie string never touched the session cookies
	cookies := env.client.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "prior", cookies[0].Name)
	assert.Equal(t, "kept", cookies[0].Value)
}

func TestInteractiveSessionSuccess(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})

	prompter := &scriptedPrompter{answers: []string{"yes", "PHPSESSID=" + testCookie}}
	strategy := auth.NewInteractiveSession(&pikax.NullLogger{}, env.client, env.store, prompter)
	sess, err := strategy.Attempt(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)

	// the verified cookies are persisted
	cookies, err := env.store.Load()
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Value)
}

func TestInteractiveSessionRejectedThenRetry(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})

	prompter := &scriptedPrompter{answers: []string{"y", "PHPSESSID=wrong", "y", "PHPSESSID=" + testCookie}}
	strategy := auth.NewInteractiveSession(&pikax.NullLogger{}, env.client, env.store, prompter)
	sess, err := strategy.Attempt(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
}

func TestInteractiveSessionUnrecognizedAnswerReprompts(t *testing.T) {
	env := newTestEnv(t, &fakeFrontend{})

	prompter := &scriptedPrompter{answers: []string{"maybe", "n"}}
	strategy := auth.NewInteractiveSession(&pikax.NullLogger{}, env.client, env.store, prompter)
	sess, err := strategy.Attempt(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, pikax.ErrLoginRejected)
}

func TestParseCookies(t *testing.T) {
	cookies, err := auth.ParseCookies("a=1;b=2")
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "a", cookies[0].Name)
	assert.Equal(t, "1", cookies[0].Value)
	assert.Equal(t, "b", cookies[1].Name)
	assert.Equal(t, "2", cookies[1].Value)

	_, err = auth.ParseCookies("a=1;bad")
	assert.ErrorIs(t, err, pikax.ErrInvalidCookies)

	_, err = auth.ParseCookies("")
	assert.ErrorIs(t, err, pikax.ErrInvalidCookies)

	// spaces around entries are tolerated, values may contain '='
	cookies, err = auth.ParseCookies("PHPSESSID=123456; token=a=b")
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "123456", cookies[0].Value)
	assert.Equal(t, "a=b", cookies[1].Value)
}
