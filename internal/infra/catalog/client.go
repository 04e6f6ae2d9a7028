package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
)

// 商品フィードのクライアント。initdbがカタログスナップショットを作るときに使う。
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

type feedResponse struct {
	Products []feedProduct `json:"products"`
}

type feedProduct struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Height      int64   `json:"height"`
	Weight      int64   `json:"weight"`
	Price       float64 `json:"price"`
	Rating      int64   `json:"rating"`
	InStock     bool    `json:"in_stock"`
}

func (c *Client) FetchProducts(ctx context.Context) ([]model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch product feed: status %d", resp.StatusCode)
	}

	var parsed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode product feed: %w", err)
	}

	products := make([]model.Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		products = append(products, model.Product{
			ID:          p.ID,
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Image:       p.Image,
			Height:      p.Height,
			Weight:      p.Weight,
			Price:       p.Price,
			Rating:      p.Rating,
			InStock:     p.InStock,
		})
	}
	return products, nil
}
