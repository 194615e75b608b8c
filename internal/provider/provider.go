package provider

import "context"

// Messenger delivers a formatted text message to a chat.
// Send reports success as a boolean and never returns an error: callers
// only count outcomes, failures are logged where they happen.
type Messenger interface {
	Send(ctx context.Context, chatID, text string) bool
}

// sendMessageRequest is the JSON body of Telegram's sendMessage.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
	Result struct {
		Username string `json:"username"`
	} `json:"result"`
}
