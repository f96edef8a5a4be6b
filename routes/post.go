package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/handlers"
)

func CreatePostRoutes(router *mux.Router, svc handlers.PostService, pageLimit int) *mux.Router {
	router.HandleFunc("/posts", handlers.GetPosts(svc, pageLimit)).Methods("GET")
	router.HandleFunc("/posts", handlers.CreatePost(svc)).Methods("POST")
	router.HandleFunc("/posts/user/{user_id}", handlers.GetPostsByUser(svc, pageLimit)).Methods("GET")
	router.HandleFunc("/posts/{post_id}", handlers.GetPost(svc)).Methods("GET")
	router.HandleFunc("/posts/{post_id}", handlers.UpdatePost(svc)).Methods("PATCH")
	router.HandleFunc("/posts/{post_id}", handlers.DeletePost(svc)).Methods("DELETE")
	router.HandleFunc("/posts/{post_id}/like", handlers.ToggleLike(svc)).Methods("POST")

	return router
}
