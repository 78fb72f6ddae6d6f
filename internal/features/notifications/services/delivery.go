package notifications_services

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	excerptMaxLength = 160
	excerptEllipsis  = "..."
)

var (
	excerptPolicy = bluemonday.StrictPolicy()
	// a closing or self-closing tag marks a body as markup; a lone "a<b" or
	// "c>d" in plain text does not
	markupTagPattern = regexp.MustCompile(`</[A-Za-z][A-Za-z0-9]*\s*>|<[A-Za-z][A-Za-z0-9]*(?:\s[^<>]*)?/>`)
)

// DecideDelivery picks the email channel for a new mention from the recipient's preferences.
func DecideDelivery(preferences *notifications_models.NotificationPreferences) notifications_enums.DeliveryDecision {
	if preferences == nil || !preferences.EmailMentionsEnabled {
		return notifications_enums.DeliveryNone
	}

	if preferences.EmailFrequency == notifications_enums.EmailFrequencyInstant {
		return notifications_enums.DeliveryInstant
	}

	return notifications_enums.DeliveryDigest
}

// BuildExcerpt collapses whitespace in a comment body and truncates the result
// to 160 characters. Bodies that carry markup are stripped to their text first;
// plain text is kept as written, angle brackets included.
func BuildExcerpt(body string) string {
	text := body
	if markupTagPattern.MatchString(body) {
		text = html.UnescapeString(excerptPolicy.Sanitize(body))
	}
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= excerptMaxLength {
		return text
	}

	runes := []rune(text)
	return strings.TrimRight(string(runes[:excerptMaxLength-len(excerptEllipsis)]), " ") + excerptEllipsis
}

func BuildDeepLink(siteOrigin string, projectID uuid.UUID, commentID uuid.UUID) string {
	return fmt.Sprintf("%s/projects/%s?comment=%s", siteOrigin, projectID, commentID)
}

// BuildAnchorContext describes where in the project the comment was left, or
// returns "" for a project level comment.
func BuildAnchorContext(metadata notifications_models.NotificationMetadata) string {
	parts := make([]string, 0, 3)

	if metadata.TimestampSeconds != nil {
		parts = append(parts, "at "+formatTimestamp(*metadata.TimestampSeconds))
	}
	if metadata.VersionID != nil {
		parts = append(parts, "version "+shortID(*metadata.VersionID))
	}
	if metadata.FileID != nil {
		parts = append(parts, "file "+shortID(*metadata.FileID))
	}

	if len(parts) == 0 {
		return ""
	}

	return "Comment " + strings.Join(parts, ", ")
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}

	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
