package domain

import "time"

// Idea is a user-submitted suggestion. Voting never modifies an Idea.
type Idea struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	StatusID     int       `json:"status_id" db:"status_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	CategoryName string    `json:"category_name"`
	StatusName   string    `json:"status_name"`
	StatusClass  string    `json:"status_class"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IdeaSummary is an idea as shown to one viewer: the authoritative vote
// count at read time and whether that viewer has voted.
type IdeaSummary struct {
	Idea
	VotesCount    int  `json:"votes_count"`
	VotedByViewer bool `json:"voted_by_viewer"`
}

// IdeaFilter narrows a listing. Zero values mean no filter.
type IdeaFilter struct {
	CategoryID int
	StatusID   int
}

// Category groups ideas
type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Status is the lifecycle state of an idea
type Status struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Class string `json:"class" db:"class"`
}
