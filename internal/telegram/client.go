// Package telegram is the chat transport adapter for the Telegram Bot API.
//
// This package handles:
//   - Long polling for inbound messages (getUpdates)
//   - Sending text replies threaded to a message (sendMessage)
//   - Sending pictures by URL or as an uploaded PNG (sendPhoto)
//   - Resolving group titles (getChat)
//
// Architecture:
//   - Client: bot token, shared HTTP client and an outbound rate limiter
//   - Poll: background loop converting updates into transport.Message
//   - The bot core only sees transport.Sender / transport.Directory
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"loadbot/internal/transport"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client represents a Telegram bot client.
//
// Thread-safety:
//   - http.Client and rate.Limiter are safe for concurrent use
//   - selfID is written once by Identify before polling starts
//
// Fields:
//   - BotToken: Telegram bot API token
//   - BaseURL: API root (overridable for tests)
//   - DebugMode: If true, sends are logged instead of performed
type Client struct {
	BotToken  string
	BaseURL   string
	DebugMode bool

	httpClient  *http.Client
	limiter     *rate.Limiter
	pollTimeout time.Duration
	selfID      int64
}

// Options tunes a Client.
type Options struct {
	RatePerSecond int           // outbound sends per second (<= 0 means 20)
	PollTimeout   time.Duration // long-poll wait (<= 0 means 30s)
	DebugMode     bool
}

// NewClient creates a Telegram client.
//
// Returns nil when token is empty; callers treat that as "transport not
// available".
func NewClient(token string, opts Options) *Client {
	if token == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set. Telegram transport disabled.")
		return nil
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 20
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.DebugMode {
		log.Println("🐛 DEBUG MODE ENABLED - Telegram sends will be simulated")
	}

	return &Client{
		BotToken:  token,
		BaseURL:   DefaultBaseURL,
		DebugMode: opts.DebugMode,
		// long polling needs the poll wait plus some overhead
		httpClient:  &http.Client{Timeout: opts.PollTimeout + 30*time.Second},
		limiter:     rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		pollTimeout: opts.PollTimeout,
	}
}

// apiResponse is the envelope of every Bot API answer.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// APIError is a Bot API call answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Telegram API error on %s (%d): %s", e.Method, e.Code, e.Description)
}

// doRequest posts a JSON payload to a Bot API method and returns its result.
func (c *Client) doRequest(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.post(ctx, method, "application/json", bytes.NewReader(jsonData))
}

func (c *Client) post(ctx context.Context, method, contentType string, body io.Reader) (json.RawMessage, error) {
	apiURL := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.BotToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.OK {
		return nil, &APIError{Method: method, Code: result.ErrorCode, Description: result.Description}
	}
	return result.Result, nil
}

// Identify asks the API who the bot is, so that its own messages can be
// recognised while polling.
func (c *Client) Identify(ctx context.Context) error {
	if c == nil {
		return nil
	}
	raw, err := c.doRequest(ctx, "getMe", struct{}{})
	if err != nil {
		return fmt.Errorf("getMe failed: %w", err)
	}
	var me User
	if err := json.Unmarshal(raw, &me); err != nil {
		return fmt.Errorf("failed to parse getMe result: %w", err)
	}
	c.selfID = me.ID
	log.Printf("✓ Telegram bot identified as @%s", me.Username)
	return nil
}

// sendMessageRequest is the sendMessage payload.
type sendMessageRequest struct {
	ChatID                   string `json:"chat_id"`
	Text                     string `json:"text"`
	ParseMode                string `json:"parse_mode,omitempty"`
	DisableWebPagePreview    bool   `json:"disable_web_page_preview"`
	ReplyToMessageID         int64  `json:"reply_to_message_id,omitempty"`
	AllowSendingWithoutReply bool   `json:"allow_sending_without_reply,omitempty"`
}

// sendPhotoRequest is the sendPhoto payload when the photo is a URL.
type sendPhotoRequest struct {
	ChatID                   string `json:"chat_id"`
	Photo                    string `json:"photo"`
	Caption                  string `json:"caption,omitempty"`
	ParseMode                string `json:"parse_mode,omitempty"`
	ReplyToMessageID         int64  `json:"reply_to_message_id,omitempty"`
	AllowSendingWithoutReply bool   `json:"allow_sending_without_reply,omitempty"`
}

// SendText sends a Markdown text message, threaded to quote when given.
//
// If Telegram rejects the Markdown, the text is resent without formatting.
func (c *Client) SendText(ctx context.Context, chatID, text string, quote *transport.MessageRef) error {
	if c == nil {
		return fmt.Errorf("telegram transport not configured")
	}
	if c.DebugMode {
		log.Printf("🐛 [DEBUG] sendMessage to %s: %s", chatID, text)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	if quote != nil && quote.MessageID != 0 {
		msg.ReplyToMessageID = quote.MessageID
		msg.AllowSendingWithoutReply = true
	}

	_, err := c.doRequest(ctx, "sendMessage", msg)
	if isEntityError(err) {
		msg.ParseMode = ""
		_, err = c.doRequest(ctx, "sendMessage", msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	return nil
}

// SendImage sends a picture by URL, or uploads img.Data as a PNG.
func (c *Client) SendImage(ctx context.Context, chatID string, img transport.Image, quote *transport.MessageRef) error {
	if c == nil {
		return fmt.Errorf("telegram transport not configured")
	}
	if img.URL == "" && len(img.Data) == 0 {
		return fmt.Errorf("image has neither URL nor data")
	}
	if c.DebugMode {
		log.Printf("🐛 [DEBUG] sendPhoto to %s (%d bytes, url=%q)", chatID, len(img.Data), img.URL)
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var replyTo int64
	if quote != nil {
		replyTo = quote.MessageID
	}

	var err error
	if img.URL != "" {
		_, err = c.doRequest(ctx, "sendPhoto", sendPhotoRequest{
			ChatID:                   chatID,
			Photo:                    img.URL,
			Caption:                  img.Caption,
			ReplyToMessageID:         replyTo,
			AllowSendingWithoutReply: replyTo != 0,
		})
	} else {
		err = c.uploadPhoto(ctx, chatID, img, replyTo)
	}
	if err != nil {
		return fmt.Errorf("failed to send Telegram photo: %w", err)
	}
	return nil
}

// uploadPhoto posts img.Data as multipart/form-data.
func (c *Client) uploadPhoto(ctx context.Context, chatID string, img transport.Image, replyTo int64) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{"chat_id": chatID}
	if img.Caption != "" {
		fields["caption"] = img.Caption
	}
	if replyTo != 0 {
		fields["reply_to_message_id"] = strconv.FormatInt(replyTo, 10)
		fields["allow_sending_without_reply"] = "true"
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile("photo", "receipt.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(img.Data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	_, err = c.post(ctx, "sendPhoto", w.FormDataContentType(), &buf)
	return err
}

// ChatTitle returns the title of a group chat ("" for private chats).
func (c *Client) ChatTitle(ctx context.Context, chatID string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("telegram transport not configured")
	}
	raw, err := c.doRequest(ctx, "getChat", map[string]string{"chat_id": chatID})
	if err != nil {
		return "", fmt.Errorf("getChat failed: %w", err)
	}
	var chat Chat
	if err := json.Unmarshal(raw, &chat); err != nil {
		return "", fmt.Errorf("failed to parse getChat result: %w", err)
	}
	return chat.Title, nil
}

func isEntityError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Description, "can't parse entities")
}
