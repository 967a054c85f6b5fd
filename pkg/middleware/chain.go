package middleware

import (
	"github.com/alexedwards/scs/v2"
	"github.com/justinas/alice"
	"go.uber.org/zap"
)

// Base is the chain shared by every route: panic recovery, then request
// logging.
func Base(logger *zap.Logger) alice.Chain {
	return alice.New(Recoverer(logger), RequestLogger(logger))
}

// Session extends Base with scs session loading for the workspace routes.
func Session(logger *zap.Logger, sessions *scs.SessionManager) alice.Chain {
	return Base(logger).Append(sessions.LoadAndSave)
}
