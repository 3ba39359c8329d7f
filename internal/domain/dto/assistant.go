package dto

// AssistantRequest is the body of POST /api/ai.
//
// Type is "text" (default) or "image"; image requests need ImageURL, which may
// be an https URL or a data: URI.
type AssistantRequest struct {
	Type     string `json:"type" example:"text"`
	Content  string `json:"content" example:"When should I sow wheat in Punjab?"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// AssistantResponse is the reply returned to the chat and image pages.
type AssistantResponse struct {
	Response   string `json:"response"`
	Confidence int    `json:"confidence" example:"85"`
}
