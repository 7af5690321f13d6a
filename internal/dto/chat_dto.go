package dto

type ChatRequest struct {
	Message     string `json:"message" validate:"required"`
	SessionID   string `json:"sessionId" validate:"omitempty,uuid4"`
	Language    string `json:"language" validate:"omitempty,oneof=en hi kn"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text voice"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
}
