package domain

import "time"

// SavedFlyer is a generated flyer persisted in the user's gallery.
type SavedFlyer struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id"`
	Category    Category  `json:"category"`
	Headline    string    `json:"headline"`
	AspectRatio string    `json:"aspect_ratio"`
	Prompt      string    `json:"prompt"`
	ImageKey    string    `json:"image_key"`
	MIME        string    `json:"mime"`
	Bytes       int64     `json:"bytes"`
	CreditsUsed int       `json:"credits_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratedImage is what an image provider returns before persistence.
type GeneratedImage struct {
	Data     []byte
	MIME     string
	Provider string
}
