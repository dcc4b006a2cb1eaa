package entities

import "time"

// Asset is a catalog entry for a shared FiveM resource.
type Asset struct {
	ID          string    `gorm:"primarykey" json:"id"`
	Title       string    `json:"title"`
	Category    string    `gorm:"index" json:"category"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url"`
	ImageURL    string    `json:"image_url"`
	AuthorEmail string    `gorm:"index" json:"author_email"`
	Downloads   int       `json:"downloads"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}

type ForumPost struct {
	ID          string    `gorm:"primarykey" json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `gorm:"index" json:"category"`
	AuthorEmail string    `gorm:"index" json:"author_email"`
	Likes       int       `json:"likes"`
	Replies     int       `json:"replies"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostLike records one member's like on a post, so likes toggle instead of
// stacking.
type PostLike struct {
	ID        string    `gorm:"primarykey" json:"id"`
	PostID    string    `gorm:"index" json:"post_id"`
	UserEmail string    `gorm:"index" json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID            string    `gorm:"primarykey" json:"id"`
	PostID        string    `gorm:"index" json:"post_id"`
	ReporterEmail string    `json:"reporter_email"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

type Notification struct {
	ID        string    `gorm:"primarykey" json:"id"`
	UserEmail string    `gorm:"index" json:"user_email"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
