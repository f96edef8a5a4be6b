package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"masterboxer.com/social-feed/handlers"
)

// CreateUploadRoutes registers the upload endpoint and, when dir is set,
// serves stored files from it under /uploads/.
func CreateUploadRoutes(router *mux.Router, store handlers.Uploader, maxBytes int64, dir string, log *zap.SugaredLogger) *mux.Router {
	router.HandleFunc("/upload", handlers.UploadFile(store, maxBytes, log)).Methods("POST")

	if dir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
		router.Handle("/uploads/{file}", files).Methods("GET")
	}

	return router
}
