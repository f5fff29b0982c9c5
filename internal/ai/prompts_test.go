package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailedPostPrompt(t *testing.T) {
	t.Run("linkedin default", func(t *testing.T) {
		prompt := detailedPostPrompt("A: hi", "Planning", "linkedin", "")
		assert.Contains(t, prompt, "LinkedIn post (120-180 words)")
		assert.Contains(t, prompt, "experienced financial advisor")
		assert.Contains(t, prompt, "Meeting Title: Planning")
		assert.Contains(t, prompt, "Transcript: A: hi")
	})

	t.Run("facebook default", func(t *testing.T) {
		prompt := detailedPostPrompt("A: hi", "Planning", "facebook", "")
		assert.Contains(t, prompt, "Facebook post (100-150 words)")
		assert.Contains(t, prompt, "2-3 relevant hashtags")
	})

	t.Run("custom prompt replaces default instructions", func(t *testing.T) {
		prompt := detailedPostPrompt("A: hi", "Planning", "linkedin", "Write a haiku about this meeting.")
		assert.Contains(t, prompt, "Write a haiku about this meeting.")
		assert.NotContains(t, prompt, "financial advisor")
		assert.Contains(t, prompt, "Meeting Title: Planning")
	})

	t.Run("other platforms use structured format", func(t *testing.T) {
		prompt := detailedPostPrompt("A: hi", "Planning", "twitter", "")
		assert.Contains(t, prompt, "create a twitter post")
		assert.Contains(t, prompt, "POST: [the main post content]")
		assert.Contains(t, prompt, "HASHTAGS: [hashtags separated by spaces]")
	})
}

func TestParseSocialPostTrailingHashtags(t *testing.T) {
	content := "Great session with the team today.\nWe aligned on Q4 goals.\n#finance #planning\n#teamwork"

	post := parseSocialPost(content, "linkedin")
	assert.Equal(t, "Great session with the team today.\nWe aligned on Q4 goals.", post.Content)
	assert.Equal(t, "#finance #planning #teamwork", post.Hashtags)
	assert.Empty(t, post.Disclaimer)
	assert.Equal(t, "linkedin", post.Platform)
}

func TestParseSocialPostNoHashtags(t *testing.T) {
	post := parseSocialPost("Just the post body.", "facebook")
	assert.Equal(t, "Just the post body.", post.Content)
	assert.Empty(t, post.Hashtags)
}

func TestParseSocialPostStructuredFormat(t *testing.T) {
	content := "POST: Big updates from today's sync.\nHASHTAGS: #sync #updates\nDISCLAIMER: Opinions are my own."

	post := parseSocialPost(content, "twitter")
	assert.Equal(t, "Big updates from today's sync.", post.Content)
	assert.Equal(t, "#sync #updates", post.Hashtags)
	assert.Equal(t, "Opinions are my own.", post.Disclaimer)
}

func TestParseInsights(t *testing.T) {
	content := "Here are the takeaways:\n- Budget approved for Q4.\n\n• Hiring plan moves to next month.\nNot a bullet.\n- Follow-up scheduled."

	insights := parseInsights(content)
	require.Len(t, insights, 3)
	assert.Equal(t, "- Budget approved for Q4.", insights[0])
	assert.Equal(t, "• Hiring plan moves to next month.", insights[1])
	assert.Equal(t, "- Follow-up scheduled.", insights[2])
}

func TestFollowUpEmailPrompt(t *testing.T) {
	prompt := followUpEmailPrompt("A: hi", "Planning", []string{"a@example.com", "b@example.com"})
	assert.Contains(t, prompt, "Attendees: a@example.com, b@example.com")
	assert.Contains(t, prompt, "Meeting Title: Planning")

	prompt = followUpEmailPrompt("A: hi", "Planning", nil)
	assert.NotContains(t, prompt, "Attendees:")
}

func TestSocialPrompt(t *testing.T) {
	assert.Contains(t, socialPrompt("A: hi", "T", "linkedin"), "professional LinkedIn post")
	assert.Contains(t, socialPrompt("A: hi", "T", "mastodon"), "appropriate for mastodon")
}
