package comments_services

import (
	"context"
	"errors"
	"fmt"

	comments_dto "untitledone/internal/features/comments/dto"
	comments_models "untitledone/internal/features/comments/models"
	"untitledone/internal/features/mentions"
	notifications_services "untitledone/internal/features/notifications/services"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

var (
	ErrCommentNotFound       = errors.New("comment not found")
	ErrParentCommentNotFound = errors.New("parent comment not found in this project")
	ErrCommentAccessDenied   = errors.New("access denied")
	ErrNotCommentAuthor      = errors.New("only the author can edit this comment")
	ErrResolveDenied         = errors.New("viewers cannot resolve comments")
	ErrDeleteDenied          = errors.New("only the author or the project owner can delete this comment")
)

type CommentService struct {
	commentStore    CommentStore
	projectAccess   ProjectAccess
	mentionResolver MentionResolver
	mentionNotifier MentionNotifier
	userDirectory   UserDirectory
}

func NewCommentService(
	commentStore CommentStore,
	projectAccess ProjectAccess,
	mentionResolver MentionResolver,
	mentionNotifier MentionNotifier,
	userDirectory UserDirectory,
) *CommentService {
	return &CommentService{
		commentStore:    commentStore,
		projectAccess:   projectAccess,
		mentionResolver: mentionResolver,
		mentionNotifier: mentionNotifier,
		userDirectory:   userDirectory,
	}
}

// CreateComment stores the comment and notifies every valid mentioned member.
// Notification problems never fail the call.
func (s *CommentService) CreateComment(
	ctx context.Context,
	projectID uuid.UUID,
	request *comments_dto.CreateCommentRequestDTO,
	user *users_models.User,
) (*comments_dto.CommentResponseDTO, error) {
	if _, err := s.requireAccess(projectID, user); err != nil {
		return nil, err
	}

	if request.ParentID != nil {
		parent, err := s.commentStore.GetCommentByID(ctx, *request.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent comment: %w", err)
		}
		if parent == nil || parent.ProjectID != projectID {
			return nil, ErrParentCommentNotFound
		}
	}

	comment := &comments_models.Comment{
		ID:               uuid.New(),
		ProjectID:        projectID,
		AuthorID:         user.ID,
		ParentID:         request.ParentID,
		Body:             request.Body,
		FileID:           request.FileID,
		VersionID:        request.VersionID,
		TimestampSeconds: request.TimestampSeconds,
	}

	if err := s.commentStore.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	mentioned := s.notifyMentions(ctx, comment, mentions.ParseMentions(comment.Body))

	return &comments_dto.CommentResponseDTO{
		Comment:        *comment,
		AuthorUsername: user.Username,
		Mentions:       mentioned,
	}, nil
}

func (s *CommentService) GetProjectComments(
	ctx context.Context,
	projectID uuid.UUID,
	user *users_models.User,
) (*comments_dto.ListCommentsResponseDTO, error) {
	if _, err := s.requireAccess(projectID, user); err != nil {
		return nil, err
	}

	comments, err := s.commentStore.GetProjectComments(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	usernames, err := s.authorUsernames(comments)
	if err != nil {
		return nil, err
	}

	response := &comments_dto.ListCommentsResponseDTO{
		Comments: make([]comments_dto.CommentResponseDTO, 0, len(comments)),
	}
	for _, comment := range comments {
		response.Comments = append(response.Comments, comments_dto.CommentResponseDTO{
			Comment:        *comment,
			AuthorUsername: usernames[comment.AuthorID],
			Mentions:       []mentions.MentionedUser{},
		})
	}

	return response, nil
}

// UpdateComment changes the body. Only usernames that were not mentioned in
// the previous body are notified.
func (s *CommentService) UpdateComment(
	ctx context.Context,
	commentID uuid.UUID,
	request *comments_dto.UpdateCommentRequestDTO,
	user *users_models.User,
) (*comments_dto.CommentResponseDTO, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireAccess(comment.ProjectID, user); err != nil {
		return nil, err
	}
	if !comment.IsAuthoredBy(user.ID) {
		return nil, ErrNotCommentAuthor
	}

	previousBody := comment.Body
	if err := s.commentStore.UpdateCommentBody(ctx, comment.ID, request.Body); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	updated, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	mentioned := s.notifyMentions(ctx, updated, mentions.GetNewMentions(updated.Body, previousBody))

	return &comments_dto.CommentResponseDTO{
		Comment:        *updated,
		AuthorUsername: user.Username,
		Mentions:       mentioned,
	}, nil
}

// ResolveComment is open to every member except viewers.
func (s *CommentService) ResolveComment(
	ctx context.Context,
	commentID uuid.UUID,
	resolved bool,
	user *users_models.User,
) (*comments_models.Comment, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	role, err := s.requireAccess(comment.ProjectID, user)
	if err != nil {
		return nil, err
	}
	if *role == users_enums.ProjectRoleViewer {
		return nil, ErrResolveDenied
	}

	if err := s.commentStore.SetResolved(ctx, comment.ID, resolved); err != nil {
		return nil, fmt.Errorf("failed to resolve comment: %w", err)
	}

	return s.getComment(ctx, commentID)
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID uuid.UUID, user *users_models.User) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}

	role, err := s.requireAccess(comment.ProjectID, user)
	if err != nil {
		return err
	}
	if !comment.IsAuthoredBy(user.ID) && *role != users_enums.ProjectRoleOwner {
		return ErrDeleteDenied
	}

	if err := s.commentStore.DeleteComment(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (s *CommentService) notifyMentions(
	ctx context.Context,
	comment *comments_models.Comment,
	candidates []string,
) []mentions.MentionedUser {
	if len(candidates) == 0 {
		return []mentions.MentionedUser{}
	}

	mentioned := s.mentionResolver.ValidateMentions(ctx, candidates, comment.ProjectID)

	userIDs := make([]uuid.UUID, 0, len(mentioned))
	notified := make([]mentions.MentionedUser, 0, len(mentioned))
	for _, user := range mentioned {
		if user.ID == comment.AuthorID {
			continue
		}

		userIDs = append(userIDs, user.ID)
		notified = append(notified, user)
	}

	if len(userIDs) > 0 {
		s.mentionNotifier.WriteMentionNotifications(ctx, &notifications_services.MentionEvent{
			CommentID:        comment.ID,
			ProjectID:        comment.ProjectID,
			AuthorID:         comment.AuthorID,
			MentionedUserIDs: userIDs,
			Body:             comment.Body,
			FileID:           comment.FileID,
			VersionID:        comment.VersionID,
			TimestampSeconds: comment.TimestampSeconds,
		})
	}

	return notified
}

func (s *CommentService) requireAccess(projectID uuid.UUID, user *users_models.User) (*users_enums.ProjectRole, error) {
	canAccess, role, err := s.projectAccess.CanUserAccessProject(projectID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to check project access: %w", err)
	}
	if !canAccess || role == nil {
		return nil, ErrCommentAccessDenied
	}

	return role, nil
}

func (s *CommentService) getComment(ctx context.Context, commentID uuid.UUID) (*comments_models.Comment, error) {
	comment, err := s.commentStore.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	return comment, nil
}

func (s *CommentService) authorUsernames(comments []*comments_models.Comment) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(comments))
	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		if _, ok := seen[comment.AuthorID]; ok {
			continue
		}

		seen[comment.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, comment.AuthorID)
	}

	usernames := make(map[uuid.UUID]string, len(authorIDs))
	if len(authorIDs) == 0 {
		return usernames, nil
	}

	authors, err := s.userDirectory.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	for _, author := range authors {
		usernames[author.ID] = author.Username
	}

	return usernames, nil
}
