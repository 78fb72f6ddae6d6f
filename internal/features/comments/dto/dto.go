package comments_dto

import (
	comments_models "untitledone/internal/features/comments/models"
	"untitledone/internal/features/mentions"

	"github.com/google/uuid"
)

type CreateCommentRequestDTO struct {
	Body             string     `json:"body"              binding:"required,max=10000"`
	ParentID         *uuid.UUID `json:"parent_id"`
	FileID           *uuid.UUID `json:"file_id"`
	VersionID        *uuid.UUID `json:"version_id"`
	TimestampSeconds *float64   `json:"timestamp_seconds" binding:"omitempty,min=0"`
}

type UpdateCommentRequestDTO struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type ResolveCommentRequestDTO struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

type CommentResponseDTO struct {
	comments_models.Comment
	AuthorUsername string `json:"author_username"`
	// Mentions lists the users notified by this save. Empty in listings.
	Mentions []mentions.MentionedUser `json:"mentions"`
}

type ListCommentsResponseDTO struct {
	Comments []CommentResponseDTO `json:"comments"`
}

type DeleteCommentResponseDTO struct {
	Success bool `json:"success"`
}
