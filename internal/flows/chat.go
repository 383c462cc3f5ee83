package flows

import (
	"context"
	"strings"
)

const chatFallback = "Sorry, I couldn't come up with an answer just now. Could you rephrase your question?"

// Chat answers a free-form travel question about Nigeria.
func (s *Service) Chat(ctx context.Context, in ChatInput) (out *ChatOutput, err error) {
	var input ChatInput
	if err := validate(ChatInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowChat, input.Query)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowChat, input.Query); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var answer ChatOutput
	ok, err := s.structured(ctx, inv, chatPrompt(input), ChatOutputSchema, &answer)
	if err != nil {
		return &ChatOutput{Response: UnavailableMessage}, err
	}
	if !ok {
		return &ChatOutput{Response: chatFallback}, nil
	}
	return &answer, nil
}

func chatPrompt(in ChatInput) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful AI travel chatbot for TourNaija, a tourism website for Nigeria.\n\n")
	sb.WriteString("You answer questions about destinations, culture, food and travel in Nigeria.\n")
	if in.DestinationContext != "" {
		sb.WriteString("\nThe user is currently viewing this destination: " + in.DestinationContext + "\n")
		sb.WriteString("Use it to make your answer more relevant.\n")
	}
	sb.WriteString("\nConversation History:\n" + conversation(in.History).String() + "\n")
	sb.WriteString("\nUser Query: " + in.Query + "\n")
	sb.WriteString("\nRespond with a JSON object with a single \"response\" field.")
	return sb.String()
}
