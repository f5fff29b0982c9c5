package ai

import (
	"fmt"
	"strings"
)

// System prompts per task family.
const (
	socialCreatorSystem    = "You are a professional social media content creator who specializes in creating engaging posts from meeting transcripts."
	meetingAssistantSystem = "You are a professional meeting assistant who creates clear, concise summaries."
	meetingAnalystSystem   = "You are a professional meeting analyst who extracts key insights."
	emailAssistantSystem   = "You are a professional assistant who creates clear, concise follow-up emails from meeting transcripts."
)

// socialPrompt builds the prompt for the single-string social content call.
func socialPrompt(transcript, title, platform string) string {
	if platform == "linkedin" {
		return fmt.Sprintf(`Based on the following meeting transcript, create a professional LinkedIn post that:
1. Highlights key insights or outcomes from the meeting
2. Is engaging and valuable to the professional network
3. Is between 100-300 characters
4. Uses appropriate hashtags
5. Maintains a professional tone

Meeting Title: %s
Transcript: %s

Generate a LinkedIn post:`, title, transcript)
	}
	return fmt.Sprintf(`Based on the following meeting transcript, create a social media post that:
1. Highlights key insights or outcomes
2. Is engaging and professional
3. Is appropriate for %[1]s
4. Uses relevant hashtags

Meeting Title: %[2]s
Transcript: %[3]s

Generate a %[1]s post:`, platform, title, transcript)
}

// detailedPostPrompt builds the prompt for the structured social post call. A
// non-empty customPrompt replaces the platform's default instructions for
// LinkedIn and Facebook.
func detailedPostPrompt(transcript, title, platform, customPrompt string) string {
	switch platform {
	case "linkedin":
		if customPrompt != "" {
			return customPostPrompt(customPrompt, title, transcript)
		}
		return fmt.Sprintf(`Based on the following meeting transcript, create a LinkedIn post that:
1. Draft a LinkedIn post (120-180 words) that summarizes the meeting value in first person.
2. Use a warm, conversational tone consistent with an experienced financial advisor.
3. End with up to three hashtags.
Return only the post text.

Meeting Title: %s
Transcript: %s`, title, transcript)
	case "facebook":
		if customPrompt != "" {
			return customPostPrompt(customPrompt, title, transcript)
		}
		return fmt.Sprintf(`Based on the following meeting transcript, create a Facebook post that:
1. Write a Facebook post (100-150 words) that summarizes the meeting value in first person.
2. Use a friendly, conversational tone that's engaging for Facebook.
3. Include 2-3 relevant hashtags at the end.
4. Make it shareable and engaging for Facebook audience.
Return only the post text.

Meeting Title: %s
Transcript: %s`, title, transcript)
	default:
		return fmt.Sprintf(`Based on the following meeting transcript, create a %[1]s post that:
1. Highlights key insights in a personal, engaging way
2. Is appropriate for %[1]s character limits
3. Includes relevant hashtags
4. Maintains an appropriate tone for %[1]s

Meeting Title: %[2]s
Transcript: %[3]s

Return the response in this exact format:
POST: [the main post content]
HASHTAGS: [hashtags separated by spaces]
DISCLAIMER: [if applicable]`, platform, title, transcript)
	}
}

func customPostPrompt(customPrompt, title, transcript string) string {
	return fmt.Sprintf("%s\n\nMeeting Title: %s\nTranscript: %s", customPrompt, title, transcript)
}

// summaryPrompt builds the prompt for the meeting summary call.
func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Please provide a concise summary of the following meeting transcript:

%s

The summary should:
1. Highlight the main topics discussed
2. Note any key decisions or action items
3. Be 2-3 paragraphs long
4. Be professional and clear`, transcript)
}

// insightsPrompt builds the prompt for the key-insight extraction call.
func insightsPrompt(transcript string) string {
	return fmt.Sprintf(`Extract 3-5 key insights or takeaways from this meeting transcript:

%s

Return them as a bulleted list, each insight being 1-2 sentences.`, transcript)
}

// followUpEmailPrompt builds the prompt for the follow-up email call.
func followUpEmailPrompt(transcript, title string, attendees []string) string {
	attendeesLine := ""
	if len(attendees) > 0 {
		attendeesLine = fmt.Sprintf("Attendees: %s\n", strings.Join(attendees, ", "))
	}
	return fmt.Sprintf(`Based on the following meeting transcript, create a professional follow-up email that:
1. Summarizes what was discussed in the meeting
2. Highlights key decisions and action items
3. Thanks participants for their time
4. Suggests next steps or follow-up actions
5. Is professional and concise (2-3 paragraphs)

Meeting Title: %s
%sTranscript: %s

Generate a follow-up email:`, title, attendeesLine, transcript)
}

// parseSocialPost turns a completion into a SocialPost. LinkedIn and
// Facebook responses carry hashtags as trailing # lines inside the post
// text; other platforms answer in the POST:/HASHTAGS:/DISCLAIMER: format.
func parseSocialPost(content, platform string) SocialPost {
	post := SocialPost{Platform: platform}
	lines := strings.Split(content, "\n")

	if platform == "linkedin" || platform == "facebook" {
		var body, hashtags strings.Builder
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				hashtags.WriteString(strings.TrimSpace(line))
				hashtags.WriteString(" ")
			} else {
				body.WriteString(line)
				body.WriteString("\n")
			}
		}
		post.Content = strings.TrimSpace(body.String())
		post.Hashtags = strings.TrimSpace(hashtags.String())
		return post
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "POST:"):
			post.Content = strings.TrimSpace(strings.TrimPrefix(line, "POST:"))
		case strings.HasPrefix(line, "HASHTAGS:"):
			post.Hashtags = strings.TrimSpace(strings.TrimPrefix(line, "HASHTAGS:"))
		case strings.HasPrefix(line, "DISCLAIMER:"):
			post.Disclaimer = strings.TrimSpace(strings.TrimPrefix(line, "DISCLAIMER:"))
		}
	}
	return post
}

// parseInsights keeps lines formatted as bullets.
func parseInsights(content string) []string {
	var insights []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") {
			insights = append(insights, trimmed)
		}
	}
	return insights
}
