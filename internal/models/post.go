package models

// Post is a portfolio/blog entry. Content is an HTML string produced by the
// admin editor; the counters are denormalized and refreshed from the comment
// and like collections when a post is served.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Likes       int    `json:"likes,omitempty"`
	Comments    int    `json:"comments,omitempty"`
	Shares      int    `json:"shares,omitempty"`
}

type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Content   string `json:"content"`
	Date      string `json:"date"`
}

// Like is keyed by (PostID, UserID); liking is idempotent per pair.
type Like struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
}
