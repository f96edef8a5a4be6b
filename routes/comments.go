package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/social-feed/handlers"
)

func CreateCommentRoutes(router *mux.Router, svc handlers.CommentService, pageLimit int) *mux.Router {
	router.HandleFunc("/comments", handlers.CreateComment(svc)).Methods("POST")
	router.HandleFunc("/comments/post/{post_id}", handlers.GetPostComments(svc, pageLimit)).Methods("GET")
	router.HandleFunc("/comments/user/{user_id}", handlers.GetUserComments(svc, pageLimit)).Methods("GET")
	router.HandleFunc("/comments/{comment_id}", handlers.UpdateComment(svc)).Methods("PATCH")
	router.HandleFunc("/comments/{comment_id}", handlers.DeleteComment(svc)).Methods("DELETE")

	return router
}
