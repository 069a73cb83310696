package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
}

// ArkeselProvider reads account details from the Arkesel v2 API.
type ArkeselProvider struct {
	cfg    Config
	client *http.Client
}

func NewArkesel(cfg Config) *ArkeselProvider {
	return &ArkeselProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type balanceDetailsResponse struct {
	Status string `json:"status"`
	Data   struct {
		SMSBalance  string `json:"sms_balance"`
		MainBalance string `json:"main_balance"`
	} `json:"data"`
}

func (p *ArkeselProvider) Balance(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/clients/balance-details", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("api-key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch upstream balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("upstream balance request failed: status %d", resp.StatusCode)
	}

	var body balanceDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode upstream balance: %w", err)
	}
	if body.Status != "success" {
		return 0, fmt.Errorf("upstream balance request failed: status %q", body.Status)
	}

	balance, err := strconv.ParseFloat(body.Data.SMSBalance, 64)
	if err != nil {
		return 0, fmt.Errorf("parse upstream balance %q: %w", body.Data.SMSBalance, err)
	}
	return balance, nil
}
