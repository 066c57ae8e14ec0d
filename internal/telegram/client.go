// Package telegram is a minimal Bot API client covering the calls this
// service needs: sending and editing messages, answering callback queries and
// long-polling updates. Sends are rate limited to stay inside the Bot API's
// global limit.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.telegram.org"

// Options parameterise the client.
type Options struct {
	BotToken string
	BaseURL  string
	Timeout  time.Duration
	// SendRate caps outbound messages per second. Zero means the Bot API
	// default of 30.
	SendRate float64
}

// Client talks to the Telegram Bot API.
type Client struct {
	opts    Options
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New constructs a Bot API client.
func New(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sendRate := opts.SendRate
	if sendRate <= 0 {
		sendRate = 30
	}

	return &Client{
		opts:    opts,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(sendRate), 1),
		logger:  logger.With().Str("component", "telegram").Logger(),
	}
}

// Update is one long-polling update containing either a message or a
// callback query.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message"`
	Callback *CallbackQuery `json:"callback_query"`
}

// Message is an inbound or outbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is an inline keyboard button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboard is the reply markup for a message.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage sends Markdown-formatted text to a chat, optionally with an
// inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboard) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

// EditMessageText replaces the text and keyboard of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboard) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "editMessageText", payload)
	return err
}

// AnswerCallbackQuery acknowledges a button press with a short toast.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	})
	return err
}

// GetUpdates long-polls for updates after offset. The poll timeout rides on
// top of the HTTP client timeout, so a dedicated client with a longer
// deadline is used for this call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout time.Duration) ([]Update, error) {
	seconds := int(pollTimeout / time.Second)
	if seconds <= 0 {
		seconds = 30
	}

	body, err := json.Marshal(map[string]any{
		"offset":  offset,
		"timeout": seconds,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("getUpdates"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	poll := &http.Client{Timeout: pollTimeout + 10*time.Second}
	resp, err := poll.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	defer resp.Body.Close()

	parsed, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(parsed.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload any) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (*apiResponse, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram api status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode telegram response: %w", err)
	}
	if !parsed.OK {
		if parsed.Description != "" {
			return nil, fmt.Errorf("telegram api: %s", parsed.Description)
		}
		return nil, fmt.Errorf("telegram api returned ok=false")
	}
	return &parsed, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.opts.BotToken, method)
}
