package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// authMiddleware resolves the bearer token into a principal. In no-auth
// mode the authenticator returns the development principal for any request.
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				errutil.HandleHTTP(r.Context(), w,
					goerr.Wrap(usecase.ErrUnauthenticated, "authentication is not configured"),
					http.StatusUnauthorized)
				return
			}

			token := bearerToken(r)
			if token == "" && !authUC.IsNoAuthn() {
				errutil.HandleHTTP(r.Context(), w,
					goerr.Wrap(usecase.ErrUnauthenticated, "authentication required"),
					http.StatusUnauthorized)
				return
			}

			principal, err := authUC.Authenticate(r.Context(), token)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireRole rejects callers that do not hold the role
func requireRole(role types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if !p.HasRole(role) {
				errutil.HandleHTTP(r.Context(), w,
					goerr.New("insufficient role", goerr.V("required", role)),
					http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// principalLimiter keeps one token bucket per authenticated subject
type principalLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newPrincipalLimiter(limit rate.Limit, burst int) *principalLimiter {
	return &principalLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *principalLimiter) get(subject string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[subject]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[subject] = lim
	}
	return lim
}

// middleware answers 429 once the caller's bucket is empty. A nil limiter
// lets every request through.
func (l *principalLimiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := ""
		if p := auth.PrincipalFromContext(r.Context()); p != nil {
			subject = p.Subject
		}

		res := l.get(subject).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(delay.Round(time.Second)/time.Second)+1))
			errutil.HandleHTTP(r.Context(), w,
				goerr.New("too many requests", goerr.V("subject", subject)),
				http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
