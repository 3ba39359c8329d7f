package service

import (
	"context"
	"strings"

	"github.com/guttosm/mandipulse/internal/domain/dto"
	"github.com/guttosm/mandipulse/internal/groq"
)

const (
	systemPrompt = "You are Bharti Kisan AI, an agriculture assistant for Indian farmers. Give short, practical advice."

	defaultTextPrompt  = "Hello"
	defaultImagePrompt = "Analyze this crop image and help."
	fallbackResponse   = "Sorry, I could not generate a response."

	assistantTemperature = 0.4
	assistantConfidence  = 85
)

// AssistantService answers farmer questions through the chat model.
type AssistantService interface {
	Ask(ctx context.Context, in dto.AssistantRequest) (*dto.AssistantResponse, error)
}

type assistantService struct {
	completer   groq.Completer
	model       string
	visionModel string
}

// NewAssistantService builds the service. Blank model names fall back to the
// groq package defaults.
func NewAssistantService(c groq.Completer, model, visionModel string) AssistantService {
	if strings.TrimSpace(model) == "" {
		model = groq.DefaultModel
	}
	if strings.TrimSpace(visionModel) == "" {
		visionModel = groq.DefaultVisionModel
	}
	return &assistantService{completer: c, model: model, visionModel: visionModel}
}

func (s *assistantService) Ask(ctx context.Context, in dto.AssistantRequest) (*dto.AssistantResponse, error) {
	req := s.buildRequest(in)
	text, err := s.completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = fallbackResponse
	}
	return &dto.AssistantResponse{Response: text, Confidence: assistantConfidence}, nil
}

func (s *assistantService) buildRequest(in dto.AssistantRequest) groq.ChatRequest {
	isImage := in.Type == "image"
	model := s.model
	if isImage {
		model = s.visionModel
	}

	msgs := []groq.Message{groq.TextMessage("system", systemPrompt)}
	content := strings.TrimSpace(in.Content)
	imageURL := strings.TrimSpace(in.ImageURL)

	if isImage && imageURL != "" {
		if content == "" {
			content = defaultImagePrompt
		}
		msgs = append(msgs, groq.ImageMessage(content, imageURL))
	} else {
		if content == "" {
			content = defaultTextPrompt
		}
		msgs = append(msgs, groq.TextMessage("user", content))
	}

	return groq.ChatRequest{Model: model, Messages: msgs, Temperature: assistantTemperature}
}
