package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/handlers"
)

func CreateUserRoutes(router *mux.Router, svc handlers.UserService) *mux.Router {
	router.HandleFunc("/user/me", handlers.GetMe(svc)).Methods("GET")
	router.HandleFunc("/user/update_profile", handlers.UpdateProfile(svc)).Methods("PATCH")
	router.HandleFunc("/user/device-tokens", handlers.RegisterDeviceToken(svc)).Methods("POST")

	return router
}

// CreateAuthRoutes registers login and verification. verifyLimit, when set,
// wraps the verify endpoint.
func CreateAuthRoutes(router *mux.Router, svc handlers.AuthService, verifyLimit func(http.Handler) http.Handler) *mux.Router {
	var verify http.Handler = handlers.Verify(svc)
	if verifyLimit != nil {
		verify = verifyLimit(verify)
	}

	router.HandleFunc("/auth/login", handlers.Login(svc)).Methods("POST")
	router.Handle("/auth/verify", verify).Methods("POST")

	return router
}
