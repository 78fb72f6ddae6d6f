package mentions

import (
	"context"
	"errors"
	"log/slog"

	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type UserLookup interface {
	GetUsersByUsernames(usernames []string) ([]*users_models.User, error)
}

type MemberFilter interface {
	FilterProjectMembers(projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error)
}

type MentionValidator struct {
	userLookup   UserLookup
	memberFilter MemberFilter
	// projectNotFound is the error memberFilter reports for a missing project
	projectNotFound error
	logger          *slog.Logger
}

func NewMentionValidator(
	userLookup UserLookup,
	memberFilter MemberFilter,
	projectNotFound error,
	logger *slog.Logger,
) *MentionValidator {
	return &MentionValidator{
		userLookup:      userLookup,
		memberFilter:    memberFilter,
		projectNotFound: projectNotFound,
		logger:          logger,
	}
}

// ValidateMentions keeps the candidates that name an existing user who owns or
// belongs to the project. It never fails: lookup errors yield an empty result.
func (v *MentionValidator) ValidateMentions(
	ctx context.Context,
	candidates []string,
	projectID uuid.UUID,
) []MentionedUser {
	if len(candidates) == 0 {
		return []MentionedUser{}
	}

	users, err := v.userLookup.GetUsersByUsernames(candidates)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to resolve mentioned usernames", "error", err, "projectId", projectID)
		return []MentionedUser{}
	}
	if len(users) == 0 {
		return []MentionedUser{}
	}

	userIDs := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	memberIDs, err := v.memberFilter.FilterProjectMembers(projectID, userIDs)
	if err != nil {
		if v.projectNotFound == nil || !errors.Is(err, v.projectNotFound) {
			v.logger.ErrorContext(ctx, "failed to filter mentioned members", "error", err, "projectId", projectID)
		}

		return []MentionedUser{}
	}

	isMember := make(map[uuid.UUID]struct{}, len(memberIDs))
	for _, memberID := range memberIDs {
		isMember[memberID] = struct{}{}
	}

	byUsername := make(map[string]*users_models.User, len(users))
	for _, user := range users {
		byUsername[normalizeUsername(user.Username)] = user
	}

	mentioned := make([]MentionedUser, 0, len(memberIDs))
	for _, candidate := range candidates {
		user, ok := byUsername[normalizeUsername(candidate)]
		if !ok {
			continue
		}

		if _, ok := isMember[user.ID]; !ok {
			continue
		}

		mentioned = append(mentioned, MentionedUser{ID: user.ID, Username: user.Username})
		delete(byUsername, normalizeUsername(candidate))
	}

	return mentioned
}
