// Package domain describes advisory pricing recommendations derived from
// recent usage. Recommendations are never applied automatically.
package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Recommendations(ctx context.Context) (*RecommendationsResponse, error)
}

const (
	RecommendationVolumeDiscount = "VOLUME_DISCOUNT"
	RecommendationCountryRule    = "COUNTRY_RULE"
)

type Recommendation struct {
	Type            string   `json:"type"`
	Message         string   `json:"message"`
	SuggestedMarkup *float64 `json:"suggested_markup,omitempty"`
	CountryHint     string   `json:"country_hint,omitempty"`
}

type CountryUsage struct {
	CountryHint string `json:"country_hint"`
	Count       int64  `json:"count"`
}

type UsageSummary struct {
	WindowDays   int            `json:"window_days"`
	Since        time.Time      `json:"since"`
	TotalVolume  int64          `json:"total_volume"`
	TotalCost    float64        `json:"total_cost"`
	TopCountries []CountryUsage `json:"top_countries"`
}

type RecommendationsResponse struct {
	Usage           UsageSummary     `json:"usage"`
	Recommendations []Recommendation `json:"recommendations"`
}

var ErrInvalidReseller = errors.New("invalid_reseller")
