package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiBase = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client over plain HTTP.
type Client struct {
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			// Long polling holds the connection open up to the poll timeout
			Timeout: 65 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API error on %s: %s", method, apiResp.Description)
	}
	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeout,
		"allowed_updates": []string{
			"message", "callback_query",
		},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	return c.call(ctx, "sendMessage", req, nil)
}

func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) error {
	return c.call(ctx, "sendPhoto", req, nil)
}

func (c *Client) SendDocument(ctx context.Context, req SendDocumentRequest) error {
	return c.call(ctx, "sendDocument", req, nil)
}

func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	return c.call(ctx, "editMessageText", req, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	return c.call(ctx, "answerCallbackQuery", req, nil)
}

// GetFile resolves a file_id to a downloadable file path.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := c.call(ctx, "getFile", map[string]string{"file_id": fileID}, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DownloadFile fetches the raw bytes for a file path returned by GetFile.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", apiBase, c.token, url.PathEscape(filePath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file API error: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
