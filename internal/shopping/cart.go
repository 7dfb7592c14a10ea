package shopping

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CartResult reports what the grocery service did with a submitted list.
type CartResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	TotalPrice    float64  `json:"total_price"`
	ItemsAdded    []string `json:"items_added"`
	ItemsNotFound []string `json:"items_not_found"`
	CartURL       string   `json:"cart_url"`
}

// CartClient submits a shopping list to an online grocery cart.
type CartClient interface {
	Submit(ctx context.Context, list *List) (*CartResult, error)
}

// httpCartClient talks to the grocery cart API using short-lived signed
// tokens. The API key is "id:secret" with a hex-encoded secret.
type httpCartClient struct {
	apiURL     string
	keyID      string
	secret     []byte
	userID     string
	httpClient *http.Client
}

// NewCartClient creates an authenticated cart API client.
func NewCartClient(apiURL, apiKey, userID string) (CartClient, error) {
	keyID, secretHex, ok := strings.Cut(apiKey, ":")
	if !ok {
		return nil, fmt.Errorf("invalid cart API key format (expected id:secret)")
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("invalid cart API key secret: %w", err)
	}
	return &httpCartClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		keyID:      keyID,
		secret:     secret,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// generateToken creates a short-lived JWT for API requests.
func (c *httpCartClient) generateToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/cart/",
		"sub": c.userID,
	})
	token.Header["kid"] = c.keyID

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign cart token: %w", err)
	}
	return signed, nil
}

// Submit sends the list to the cart API.
func (c *httpCartClient) Submit(ctx context.Context, list *List) (*CartResult, error) {
	token, err := c.generateToken()
	if err != nil {
		return nil, err
	}

	payload := struct {
		PlanID string `json:"plan_id"`
		Items  []Item `json:"items"`
	}{PlanID: list.PlanID, Items: list.Items}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/cart/items", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cart API status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result CartResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cart response: %w", err)
	}
	return &result, nil
}
