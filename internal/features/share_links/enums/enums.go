package share_links_enums

type ShareLinkStatus string

const (
	ShareLinkStatusActive  ShareLinkStatus = "active"
	ShareLinkStatusUsed    ShareLinkStatus = "used"
	ShareLinkStatusExpired ShareLinkStatus = "expired"
	ShareLinkStatusRevoked ShareLinkStatus = "revoked"
)

// RedemptionFailure is sent to the error page as the reason query parameter.
type RedemptionFailure string

const (
	RedemptionNotFound          RedemptionFailure = "not_found"
	RedemptionRevoked           RedemptionFailure = "revoked"
	RedemptionExpired           RedemptionFailure = "expired"
	RedemptionUsed              RedemptionFailure = "used"
	RedemptionProjectNotFound   RedemptionFailure = "project_not_found"
	RedemptionFailedToAddMember RedemptionFailure = "failed_to_add_member"
	RedemptionRateLimited       RedemptionFailure = "rate_limited"
	RedemptionInternalError     RedemptionFailure = "internal_error"
)
