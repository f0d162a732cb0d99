package dto

import (
	"time"

	"titlehub/internal/http-api/models"
)

type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required,max=256"`
	Score int    `json:"score" binding:"required,min=1,max=10"`
}

type UpdateReviewDTO struct {
	Text  *string `json:"text" binding:"omitempty,max=256"`
	Score *int    `json:"score" binding:"omitempty,min=1,max=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ReviewFromModel(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
