package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/apperror"
	"masterboxer.com/social-feed/handlers"
	"masterboxer.com/social-feed/middleware"
)

// PublicRoutes lists every endpoint reachable without a bearer token.
var PublicRoutes = []middleware.Exclusion{
	{Method: "POST", Template: "/auth/login"},
	{Method: "POST", Template: "/auth/verify"},
	{Method: "POST", Template: "/upload"},
	{Method: "GET", Template: "/"},
	{Method: "GET", Template: "/metrics"},
	{Method: "GET", Template: "/uploads/{file}"},
	{Method: "GET", Template: "/posts"},
	{Method: "GET", Template: "/posts/{post_id}"},
	{Method: "GET", Template: "/posts/user/{user_id}"},
	{Method: "GET", Template: "/comments/post/{post_id}"},
	{Method: "GET", Template: "/comments/user/{user_id}"},
}

type Options struct {
	Posts    handlers.PostService
	Comments handlers.CommentService
	Users    handlers.UserService
	Auth     handlers.AuthService
	Uploads  handlers.Uploader

	Resolver middleware.IdentityResolver
	Metrics  interface {
		middleware.MetricsRecorder
		Handler() http.Handler
	}
	VerifyLimit func(http.Handler) http.Handler

	PageLimit      int
	MaxUploadBytes int64
	UploadDir      string
	Log            *zap.SugaredLogger
}

// NewRouter wires every resource. Authentication and metrics run as router
// middleware, so unmatched paths and methods get their envelopes without
// passing the auth gate.
func NewRouter(opts Options) *mux.Router {
	router := mux.NewRouter()

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apperror.Write(w, apperror.NotFound("Not Found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apperror.Write(w, apperror.New(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}).Methods("GET")

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
		router.Use(middleware.Metrics(opts.Metrics))
	}
	router.Use(middleware.AuthGate(opts.Resolver, middleware.NewExclusionTable(PublicRoutes...)))

	CreateAuthRoutes(router, opts.Auth, opts.VerifyLimit)
	CreateUserRoutes(router, opts.Users)
	CreatePostRoutes(router, opts.Posts, opts.PageLimit)
	CreateCommentRoutes(router, opts.Comments, opts.PageLimit)
	CreateUploadRoutes(router, opts.Uploads, opts.MaxUploadBytes, opts.UploadDir, opts.Log)

	return router
}
