package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"app/internal/payment"
)

// 外部決済サービスへのHTTPクライアント。
// 応答は成功なら {"transaction": {...}}、拒否なら {"success": false, "message": "..."}。
type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

type chargeRequest struct {
	CreditCard    chargeCard `json:"credit_card"`
	AmountCharged float64    `json:"amount_charged"`
}

type chargeCard struct {
	Name            string `json:"name"`
	Number          string `json:"number"`
	CVV             string `json:"cvv"`
	ExpirationYear  int64  `json:"expiration_year"`
	ExpirationMonth int64  `json:"expiration_month"`
}

type chargeResponse struct {
	Transaction *struct {
		ID            string  `json:"id"`
		Success       bool    `json:"success"`
		AmountCharged float64 `json:"amount_charged"`
	} `json:"transaction"`

	//拒否時
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (c *Client) Charge(ctx context.Context, card payment.CardDetails, amount float64) (payment.ChargeResult, error) {
	body, err := json.Marshal(chargeRequest{
		CreditCard: chargeCard{
			Name:            card.Name,
			Number:          card.Number,
			CVV:             card.CVV,
			ExpirationYear:  card.ExpirationYear,
			ExpirationMonth: card.ExpirationMonth,
		},
		AmountCharged: amount,
	})
	if err != nil {
		return payment.ChargeResult{}, fmt.Errorf("marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return payment.ChargeResult{}, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		//通信断・タイムアウトは拒否と区別する
		return payment.ChargeResult{}, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return payment.ChargeResult{}, fmt.Errorf("%w: status %d", payment.ErrGatewayUnavailable, resp.StatusCode)
	}

	var parsed chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return payment.ChargeResult{}, fmt.Errorf("%w: decode response: %v", payment.ErrGatewayUnavailable, err)
	}

	if parsed.Transaction != nil && parsed.Transaction.Success {
		return payment.ChargeResult{
			Success:       true,
			TransactionID: parsed.Transaction.ID,
			AmountCharged: parsed.Transaction.AmountCharged,
		}, nil
	}

	if parsed.Success != nil && !*parsed.Success {
		return payment.ChargeResult{
			Success:      false,
			ErrorCode:    "card-declined",
			ErrorMessage: parsed.Message,
		}, nil
	}

	//どちらの形でもない応答は障害扱い
	return payment.ChargeResult{}, fmt.Errorf("%w: unexpected response shape", payment.ErrGatewayUnavailable)
}
