package notifications_enums

type NotificationType string

const (
	NotificationTypeMention    NotificationType = "mention"
	NotificationTypeComment    NotificationType = "comment"
	NotificationTypeInvitation NotificationType = "invitation"
)

type EmailFrequency string

const (
	EmailFrequencyInstant EmailFrequency = "instant"
	EmailFrequencyDaily   EmailFrequency = "daily"
)

func (f EmailFrequency) IsValid() bool {
	return f == EmailFrequencyInstant || f == EmailFrequencyDaily
}

type DeliveryDecision string

const (
	DeliveryNone    DeliveryDecision = "none"
	DeliveryInstant DeliveryDecision = "instant"
	DeliveryDigest  DeliveryDecision = "digest"
)

type NotificationFilter string

const (
	NotificationFilterAll    NotificationFilter = "all"
	NotificationFilterUnread NotificationFilter = "unread"
	NotificationFilterRead   NotificationFilter = "read"
)
