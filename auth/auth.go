// Package auth establishes a verified session against the web frontend by
// trying login strategies in a caller supplied order.
package auth

import (
	"context"
	"errors"
	"fmt"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/webclient"
)

// Session is a verified logged in handle. It only ever exists after a
// strategy has confirmed with the server that the client's cookies belong to
// a logged in account.
type Session struct {
	Client *webclient.Client
}

// Strategy is one concrete way of obtaining a Session. Attempt must verify
// the session server side before returning it, building a credential object
// client side is never enough.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context) (*Session, error)
}

// Authenticator drives the strategy cascade. It is order agnostic, the
// preference between fresh login, stored session and interactive login is
// entirely the caller's configuration.
type Authenticator struct {
	log        pikax.Logger
	strategies []Strategy
}

func NewAuthenticator(log pikax.Logger, strategies ...Strategy) *Authenticator {
	return &Authenticator{log: log, strategies: strategies}
}

// Login tries each strategy strictly in order, the first success wins. When
// every strategy has failed the composite error wraps
// pikax.ErrAllStrategiesFailed together with each strategy's cause.
func (a *Authenticator) Login(ctx context.Context) (*Session, error) {
	var causes []error
	for _, strategy := range a.strategies {
		sess, err := strategy.Attempt(ctx)
		if err == nil {
			a.log.Infof("logged in with %s strategy", strategy.Name())
			return sess, nil
		}

		a.log.WithError(err).Warnf("%s login failed", strategy.Name())
		causes = append(causes, fmt.Errorf("%s: %w", strategy.Name(), err))
	}

	return nil, fmt.Errorf("%w: %w", pikax.ErrAllStrategiesFailed, errors.Join(causes...))
}
