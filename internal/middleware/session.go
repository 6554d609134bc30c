package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gogitters/apcimap/internal/auth"
	"github.com/gogitters/apcimap/internal/handler"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/session"
)

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session loads the caller's session from the store, or starts an anonymous
// one, and puts it in the request context. Changes are written back before
// the first byte of the response so the cookie can still be set.
func Session(store session.Store, cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loadSession(r, store, cfg.CookieName)
			if err != nil {
				logging.FromContext(r.Context()).Error("session load failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError)
				return
			}

			ctx := session.NewContext(r.Context(), sess)
			if sess.Authenticated() {
				ctx = auth.ContextWithUserID(ctx, sess.UserID)
			}
			r = r.WithContext(ctx)

			sw := &sessionWriter{ResponseWriter: w, r: r, sess: sess, store: store, cfg: cfg}
			next.ServeHTTP(sw, r)
			sw.commit()
		})
	}
}

func loadSession(r *http.Request, store session.Store, cookieName string) (*session.Session, error) {
	c, err := r.Cookie(cookieName)
	if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return nil, err
	}
	if c != nil && c.Value != "" {
		sess, err := store.Get(r.Context(), c.Value)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
	}
	return session.New()
}

type sessionWriter struct {
	http.ResponseWriter
	r         *http.Request
	sess      *session.Session
	store     session.Store
	cfg       SessionConfig
	committed bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	if !w.sess.Modified() {
		return
	}
	ctx := w.r.Context()
	if err := w.store.Save(ctx, w.sess); err != nil {
		if errors.Is(err, session.ErrGone) {
			logging.FromContext(ctx).Warn("session ended by another request, changes dropped")
			return
		}
		logging.FromContext(ctx).Error("session save failed", "error", err)
		// The old id must not outlive a sign-in or sign-out even when the
		// replacement could not be written.
		if stale := w.sess.StaleID(); stale != "" {
			if err := w.store.Delete(ctx, stale); err != nil {
				logging.FromContext(ctx).Error("stale session delete failed", "error", err)
			}
		}
		return
	}
	if w.sess.IDChanged() {
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     w.cfg.CookieName,
			Value:    w.sess.ID,
			Path:     "/",
			MaxAge:   int(w.cfg.TTL.Seconds()),
			Secure:   w.cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.sess.MarkSaved()
}
