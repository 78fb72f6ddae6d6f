package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseMentions_WithVariousInputs_ReturnsExpectedUsernames(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "empty text", text: "", expected: []string{}},
		{name: "no mentions", text: "looks good to me", expected: []string{}},
		{name: "mention at start", text: "@john check this", expected: []string{"john"}},
		{name: "mention after whitespace", text: "hey\n@sarah_k and\t@mike-2", expected: []string{"sarah_k", "mike-2"}},
		{name: "trailing punctuation", text: "thanks @john, @sarah! and @mike.", expected: []string{"john", "sarah", "mike"}},
		{name: "email is not a mention", text: "mail me at john@example.com", expected: []string{}},
		{name: "mid word at sign", text: "foo@bar @@baz", expected: []string{}},
		{name: "repeated mention", text: "@john @john @john", expected: []string{"john"}},
		{name: "case variants collapse", text: "@Bob and @bob and @BOB", expected: []string{"bob"}},
		{name: "order of first appearance", text: "@zed @amy @zed @bob", expected: []string{"zed", "amy", "bob"}},
		{name: "bare at sign", text: "@ nobody", expected: []string{}},
		{name: "after no-break space", text: "hey\u00a0@alice", expected: []string{"alice"}},
		{name: "after em space", text: "hey\u2003@bob", expected: []string{"bob"}},
		{name: "after ideographic space", text: "ok\u3000@Kenji", expected: []string{"kenji"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseMentions(tc.text))
		})
	}
}

func Test_GetNewMentions_WhenEditorInsertsNoBreakSpace_ReturnsMention(t *testing.T) {
	assert.Equal(t, []string{"alice"}, GetNewMentions("thanks\u00a0@alice", "thanks"))
}

func Test_ParseMentions_WhenCalledTwice_ReturnsSameResult(t *testing.T) {
	text := "Hey @alice can you check this @bob? cc @alice"

	assert.Equal(t, ParseMentions(text), ParseMentions(text))
	assert.Equal(t, []string{"alice", "bob"}, ParseMentions(text))
}

func Test_GetNewMentions_WhenMentionAdded_ReturnsOnlyAddedUsername(t *testing.T) {
	assert.Equal(t, []string{"sarah"}, GetNewMentions("Hey @john and @sarah", "Hey @john"))
}

func Test_GetNewMentions_WhenMentionRemoved_ReturnsEmpty(t *testing.T) {
	assert.Empty(t, GetNewMentions("Hey @john", "Hey @john and @sarah"))
}

func Test_GetNewMentions_WhenOnlyCaseChanged_ReturnsEmpty(t *testing.T) {
	assert.Empty(t, GetNewMentions("Hey @John", "Hey @john"))
}

func Test_GetNewMentions_WithEmptyPrevious_ReturnsAllMentions(t *testing.T) {
	assert.Equal(t, []string{"john", "sarah"}, GetNewMentions("@john @sarah", ""))
}
