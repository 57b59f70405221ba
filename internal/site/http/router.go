package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/httpx"
	"github.com/paymall/site-api/pkg/jwtx"
	"github.com/paymall/site-api/pkg/slogx"
)

// maxRequestBody caps request bodies well above the largest legitimate
// payload (a full blog post) while keeping junk uploads cheap.
const maxRequestBody = 1 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.EdDSAKeyPair
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService     *service.AuthService
	VerifyService   *service.VerifyService
	RegisterService *service.RegisterService
	InviteService   *service.InviteService
	BlogService     *service.BlogService
	LeadService     *service.LeadService
	SetupService    *service.SetupService
}

func NewRouter(
	keys *jwtx.EdDSAKeyPair,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain. CORS sits outermost so even rate
	// limited and error responses carry the headers the site needs.
	r.middlewares = []httpx.Middleware{
		httpx.CORSMiddleware(),
		httpx.MaxBodyBytes(maxRequestBody),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerVerify()
	r.registerInvites()
	r.registerBlogs()
	r.registerLeads()
	r.registerSetup()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// requireAdmin resolves the session from the verified token and enforces
// the admin grant. It runs inside AuthnMiddleware, which has already
// verified the token signature and expiry.
func (r *Router) requireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			sessionID := httpx.SessionIDFromContext(ctx)
			if sessionID == "" {
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Authentication required",
				})
				return
			}

			_, user, err := r.AuthService.ResolveSession(ctx, sessionID)
			if err != nil {
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "Session expired or revoked",
				})
				return
			}

			isAdmin, err := r.AuthService.IsAdmin(ctx, user.ID)
			if err != nil {
				httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
					Error: "server_error",
				})
				return
			}
			if !isAdmin {
				httpx.WriteJSON(w, http.StatusForbidden, ErrorResponse{
					Error:            "forbidden",
					ErrorDescription: "No admin privileges",
				})
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	sessionHandler := &SessionHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /v1/auth/session",
		httpx.Chain(sessionHandler,
			httpx.AuthnMiddleware(r.verifier),
			r.requireAdmin(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerVerify() {
	h := &VerifyCodeHandler{VerifyService: r.VerifyService}

	// The verify service carries its own fixed-window limiter; the route
	// level limit only sheds abusive volume before it reaches the service.
	r.Mux.Handle("POST /v1/verify-admin-code",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvites() {
	registerHandler := &RegisterHandler{RegisterService: r.RegisterService}
	r.Mux.Handle("POST /v1/register-admin",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	invitesHandler := &InvitesHandler{InviteService: r.InviteService}
	secured := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		r.requireAdmin(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	}
	r.Mux.Handle("POST /v1/admin/invites",
		httpx.Chain(http.HandlerFunc(invitesHandler.HandleMint), secured...))
	r.Mux.Handle("GET /v1/admin/invites",
		httpx.Chain(http.HandlerFunc(invitesHandler.HandleList), secured...))
}

func (r *Router) registerBlogs() {
	h := &BlogsHandler{BlogService: r.BlogService}

	// Public reads
	public := []httpx.Middleware{httpx.RateLimitByIP(httpx.PublicLimit)}
	r.Mux.Handle("GET /v1/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleListPublished), public...))
	r.Mux.Handle("GET /v1/blogs/featured",
		httpx.Chain(http.HandlerFunc(h.HandleListFeatured), public...))
	r.Mux.Handle("GET /v1/blogs/{slug}",
		httpx.Chain(http.HandlerFunc(h.HandleGetBySlug), public...))

	// Admin writes
	secured := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		r.requireAdmin(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	}
	r.Mux.Handle("GET /v1/admin/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleListAll), secured...))
	r.Mux.Handle("POST /v1/admin/blogs",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), secured...))
	r.Mux.Handle("GET /v1/admin/blogs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGetByID), secured...))
	r.Mux.Handle("PUT /v1/admin/blogs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), secured...))
	r.Mux.Handle("DELETE /v1/admin/blogs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), secured...))
}

func (r *Router) registerLeads() {
	h := &LeadsHandler{LeadService: r.LeadService}

	public := []httpx.Middleware{httpx.RateLimitByIP(httpx.LenientLimit)}
	r.Mux.Handle("POST /v1/contact",
		httpx.Chain(http.HandlerFunc(h.HandleContact), public...))
	r.Mux.Handle("POST /v1/reviews",
		httpx.Chain(http.HandlerFunc(h.HandleReview), public...))
	r.Mux.Handle("POST /v1/newsletter/subscribe",
		httpx.Chain(http.HandlerFunc(h.HandleSubscribe), public...))
}

func (r *Router) registerSetup() {
	h := &SetupHandler{SetupService: r.SetupService}
	r.Mux.Handle("POST /v1/setup",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
