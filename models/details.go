package models

// PostDetails is the read view of a post: the post itself joined with its
// author, media and engagement counts.
type PostDetails struct {
	Post
	Author        User        `json:"author"`
	Media         []PostMedia `json:"media"`
	LikesCount    int64       `json:"likesCount"`
	CommentsCount int64       `json:"commentsCount"`
}

type PostCommentDetails struct {
	PostComment
	Author User `json:"author"`
}

type CreatePostResult struct {
	Post  Post        `json:"post"`
	Media []PostMedia `json:"media"`
}

type VerifyResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
