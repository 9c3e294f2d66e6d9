package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

var (
	ErrInsufficientCoins = errors.New("insufficient coin balance")
	ErrGiftRejected      = errors.New("gift rejected by payment service")
)

// Service debits the sender's coin balance for a gift and returns the
// confirmed transaction. The coin ledger lives in the platform's payment
// service; this engine never touches balances directly.
type Service interface {
	DebitGift(ctx context.Context, senderID string, gift *domain.Gift) (*domain.GiftEvent, error)
}

// HTTPClient wraps the payment service HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type debitRequest struct {
	SenderID string `json:"sender_id"`
	GiftID   string `json:"gift_id"`
	CoinCost int64  `json:"coin_cost"`
}

type debitResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		TransactionID string    `json:"transaction_id"`
		OccurredAt    time.Time `json:"occurred_at"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPClient creates a payment service client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// DebitGift charges the gift's coin cost to the sender. On success the
// returned event carries the payment service's transaction id, which keys
// point-award idempotency downstream.
func (c *HTTPClient) DebitGift(ctx context.Context, senderID string, gift *domain.Gift) (*domain.GiftEvent, error) {
	body, err := json.Marshal(debitRequest{
		SenderID: senderID,
		GiftID:   gift.ID,
		CoinCost: gift.CoinCost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal debit request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/wallets/%s/debits", c.baseURL, senderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusConflict {
		return nil, ErrInsufficientCoins
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment service returned status: %d", resp.StatusCode)
	}

	var debitResp debitResponse
	if err := json.NewDecoder(resp.Body).Decode(&debitResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !debitResp.Success || debitResp.Data == nil {
		if debitResp.Error != nil && debitResp.Error.Code == "INSUFFICIENT_COINS" {
			return nil, ErrInsufficientCoins
		}
		return nil, ErrGiftRejected
	}

	occurredAt := debitResp.Data.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &domain.GiftEvent{
		TransactionID: debitResp.Data.TransactionID,
		SenderID:      senderID,
		StreamerID:    gift.StreamerID,
		GiftID:        gift.ID,
		GiftName:      gift.Name,
		CoinCost:      gift.CoinCost,
		PointsAwarded: gift.PointsAwarded,
		OccurredAt:    occurredAt,
	}, nil
}
