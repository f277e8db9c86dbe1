package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client proxies a user's finance summary to the Generative Language API and
// returns narrative advice. It is an external collaborator of the rebalancing
// engine: failures never touch finance state, they only surface as a 502.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	httpClient *http.Client
}

func NewClient() *Client {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		apiKey:     os.Getenv("GEMINI_API_KEY"),
		model:      model,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		maxRetries: 3,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Summary is the finance snapshot sent to the model.
type Summary struct {
	TotalBalance   decimal.Decimal
	Kebutuhan      decimal.Decimal
	Tabungan       decimal.Decimal
	Darurat        decimal.Decimal
	DailyBudget    decimal.Decimal
	DailySaving    decimal.Decimal
	MonthlyExpense decimal.Decimal
	AccountCount   int
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for budgeting advice based on the summary. Transient
// failures (network errors, 429, 5xx) are retried with linear backoff up to
// maxRetries attempts.
func (c *Client) Generate(ctx context.Context, s Summary) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(s)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	requestID := uuid.NewString()
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		text, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		log.Printf("advice request %s attempt %d/%d failed: %v", requestID, attempt, c.maxRetries, err)
		if attempt < c.maxRetries {
			select {
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("advice request %s failed: %w", requestID, lastErr)
}

func (c *Client) doRequest(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", false, fmt.Errorf("parse response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("empty response from model")
	}
	return strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text), false, nil
}

func buildPrompt(s Summary) string {
	var b strings.Builder
	b.WriteString("You are a friendly Indonesian personal-finance coach. ")
	b.WriteString("Give short, practical budgeting advice (max 4 sentences) in English for this user:\n")
	fmt.Fprintf(&b, "- Bank accounts: %d\n", s.AccountCount)
	fmt.Fprintf(&b, "- Total balance: Rp%s\n", s.TotalBalance.StringFixed(0))
	fmt.Fprintf(&b, "- Kebutuhan (needs) bucket: Rp%s\n", s.Kebutuhan.StringFixed(0))
	fmt.Fprintf(&b, "- Tabungan (savings) bucket: Rp%s\n", s.Tabungan.StringFixed(0))
	fmt.Fprintf(&b, "- Darurat (emergency) bucket: Rp%s\n", s.Darurat.StringFixed(0))
	fmt.Fprintf(&b, "- Daily budget remaining today: Rp%s\n", s.DailyBudget.StringFixed(0))
	fmt.Fprintf(&b, "- Accumulated daily saving: Rp%s\n", s.DailySaving.StringFixed(0))
	fmt.Fprintf(&b, "- Fixed monthly obligations: Rp%s\n", s.MonthlyExpense.StringFixed(0))
	return b.String()
}
