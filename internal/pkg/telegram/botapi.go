// Package telegram is a thin client for the Telegram Bot API methods the
// daemon needs: forwarding a message and probing the bot identity. Every
// failure it returns carries a retry classification.
package telegram

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// BotAPI provides a direct Telegram Bot API client.
type BotAPI struct {
	client *resty.Client
}

// NewBotAPI creates a new direct Telegram Bot API client.
func NewBotAPI(token string) *BotAPI {
	return &BotAPI{
		client: resty.New().SetBaseURL("https://api.telegram.org/bot" + token),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *responseParams `json:"parameters"`
	Result      json.RawMessage `json:"result"`
}

type responseParams struct {
	RetryAfter int `json:"retry_after"`
}

// Call makes a raw API call and returns the result payload. Network
// failures come back as *TransportError, API-level failures as *APIError.
func (b *BotAPI) Call(method string, params map[string]interface{}) (json.RawMessage, error) {
	resp, err := b.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	var body apiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !body.OK {
		apiErr := &APIError{
			Method:      method,
			Code:        body.ErrorCode,
			Description: body.Description,
		}
		if body.Parameters != nil {
			apiErr.RetryAfterSecs = body.Parameters.RetryAfter
		}
		return nil, apiErr
	}
	return body.Result, nil
}

// ForwardMessage forwards a previously posted message, by reference, from
// the source chat to a destination chat.
func (b *BotAPI) ForwardMessage(chatID, fromChatID string, messageID int) error {
	_, err := b.Call("forwardMessage", map[string]interface{}{
		"chat_id":      chatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	})
	return err
}

// GetMe fetches the bot's own identity. Used as a liveness probe.
func (b *BotAPI) GetMe() (string, error) {
	result, err := b.Call("getMe", map[string]interface{}{})
	if err != nil {
		return "", err
	}
	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(result, &me); err != nil {
		return "", &TransportError{Method: "getMe", Err: fmt.Errorf("decode result: %w", err)}
	}
	return me.Username, nil
}
