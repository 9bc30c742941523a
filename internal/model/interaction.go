package model

// ButtonInteractionRequest is forwarded by the gateway process when a member
// presses a button of one of our messages.
type ButtonInteractionRequest struct {
	CustomID string `json:"custom_id"`
	UserID   int64  `json:"user_id,string"`
}

type ButtonInteractionResponse struct {
	Message string `json:"message"`
}
