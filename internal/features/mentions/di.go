package mentions

import (
	"sync"

	projects_services "untitledone/internal/features/projects/services"
	users_services "untitledone/internal/features/users/services"
	"untitledone/internal/util/logger"
)

var (
	mentionRepository = &MentionRepository{}

	mentionValidator     *MentionValidator
	mentionValidatorOnce sync.Once
)

func GetMentionRepository() *MentionRepository {
	return mentionRepository
}

func GetMentionValidator() *MentionValidator {
	mentionValidatorOnce.Do(func() {
		mentionValidator = NewMentionValidator(
			users_services.GetUserRepository(),
			projects_services.GetProjectService(),
			projects_services.ErrProjectNotFound,
			logger.GetLogger(),
		)
	})

	return mentionValidator
}
