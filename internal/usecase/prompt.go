package usecase

import (
	"strings"

	"advisor-chat/internal/domain"
)

// SystemPrompt is the advisor persona sent ahead of every conversation that
// does not already open with a system message.
var SystemPrompt = strings.Join([]string{
	"You are a highly knowledgeable and trustworthy financial advisor.",
	"You provide clear, actionable advice tailored to the user's situation and goals.",
	"Your responses are concise, easy to understand, and avoid unnecessary jargon unless it's clearly explained.",
	"",
	"Always ask clarifying questions if the user's request is vague, and explain the reasoning behind your suggestions.",
	"",
	"When relevant, explain both pros and cons of decisions and provide examples.",
	"",
	"Use this tone: Professional, friendly, helpful.",
	"",
	"FORMAT YOUR RESPONSES USING MARKDOWN:",
	formattingRules(),
	"",
	"Example task types:",
	taskTypes(),
}, "\n")

func formattingRules() string {
	return strings.Join([]string{
		"- Use **bold** for important points",
		"- Use bullet points for lists",
		"- Use headings (## or ###) for sections",
		"- Use *italics* for emphasis",
		"- Use > for important quotes or callouts",
		"- Use numbered lists for steps or prioritized items",
	}, "\n")
}

func taskTypes() string {
	return strings.Join([]string{
		"Budget planning",
		"Investment strategy",
		"Retirement savings",
		"Risk assessment",
		"Debt repayment options",
	}, "\n")
}

// withSystemPrompt returns messages prefixed by the advisor system prompt
// unless the conversation already opens with a system message, in which case
// messages is returned as is.
func withSystemPrompt(messages []domain.ChatMessage) []domain.ChatMessage {
	if len(messages) > 0 && messages[0].Role == domain.RoleSystem {
		return messages
	}
	out := make([]domain.ChatMessage, 0, len(messages)+1)
	out = append(out, domain.ChatMessage{Role: domain.RoleSystem, Content: SystemPrompt})
	return append(out, messages...)
}
