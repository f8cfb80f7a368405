package core

import "context"

type ContextKey string

const SessionContextKey ContextKey = "session"

// ContextSession is the request-scoped identity of whoever triggered
// the current update. It lives only as long as the request context.
type ContextSession struct {
	ChatID   int64
	PlayerID int64
	UserID   int64
}

func WithSession(ctx context.Context, session ContextSession) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

func Session(ctx context.Context) ContextSession {
	session, ok := ctx.Value(SessionContextKey).(ContextSession)
	if !ok {
		return ContextSession{}
	}

	return session
}

// ChatScoped is implemented by requests that act on a single chat.
// Pipeline behaviors use it to apply per-chat checks and locks.
type ChatScoped interface {
	Chat() int64
}
