package models

import "time"

// BlogPost is one generated article. Rows are created once per successful
// pipeline run and never mutated afterwards.
type BlogPost struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	YoutubeTitle     string    `json:"youtube_title"`
	YoutubeLink      string    `json:"youtube_link"`
	Transcript       string    `json:"transcript,omitempty"` // only populated on detail fetch
	GeneratedContent string    `json:"generated_content"`
	CreatedAt        time.Time `json:"created_at"`
}

type GenerateRequest struct {
	Link string `json:"link" binding:"required,url"`
}

type GenerateResponse struct {
	Content string   `json:"content"`
	Post    BlogPost `json:"post"`
}

type BlogListResponse struct {
	Posts    []BlogPost `json:"posts"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}
