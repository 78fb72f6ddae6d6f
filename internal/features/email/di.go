package email

import (
	"sync"

	"untitledone/internal/config"
	"untitledone/internal/util/logger"
)

var (
	emailService     *EmailService
	emailServiceOnce sync.Once
)

func GetEmailService() *EmailService {
	emailServiceOnce.Do(func() {
		env := config.GetEnv()

		emailService = NewEmailService(
			NewSmtpSender(SmtpConfig{
				Host:     env.SmtpHost,
				Port:     env.SmtpPort,
				Username: env.SmtpUsername,
				Password: env.SmtpPassword,
				From:     env.SmtpFrom,
			}),
			logger.GetLogger(),
		)
	})

	return emailService
}
