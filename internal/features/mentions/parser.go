package mentions

import (
	"regexp"
	"strings"
)

// an @ opens a mention only at the start of text or after whitespace,
// including unicode spaces such as U+00A0 inserted by rich text editors
var mentionPattern = regexp.MustCompile(`(?:^|[\s\p{Z}])@([A-Za-z0-9_-]+)`)

// ParseMentions returns the lowercased usernames mentioned in text, in order of
// first appearance and without duplicates.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)

	usernames := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		username := normalizeUsername(match[1])
		if _, ok := seen[username]; ok {
			continue
		}

		seen[username] = struct{}{}
		usernames = append(usernames, username)
	}

	return usernames
}

// GetNewMentions returns usernames mentioned in current that previous did not mention.
func GetNewMentions(current string, previous string) []string {
	previousMentions := make(map[string]struct{})
	for _, username := range ParseMentions(previous) {
		previousMentions[username] = struct{}{}
	}

	newMentions := []string{}
	for _, username := range ParseMentions(current) {
		if _, ok := previousMentions[username]; !ok {
			newMentions = append(newMentions, username)
		}
	}

	return newMentions
}

func normalizeUsername(username string) string {
	return strings.ToLower(username)
}
