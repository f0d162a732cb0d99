package dto

import (
	"time"

	"titlehub/internal/http-api/models"
)

type CreateCommentDTO struct {
	Text string `json:"text" binding:"required,max=256"`
}

type UpdateCommentDTO struct {
	Text string `json:"text" binding:"required,max=256"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func CommentFromModel(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
