package domain

import (
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
)

// CalculateRequest prices a prospective send of Volume messages.
type CalculateRequest struct {
	Volume      int64   `json:"volume"`
	CountryCode string  `json:"country_code"`
	SMSType     string  `json:"sms_type"`
	BaseCost    float64 `json:"base_cost"`
}

// Result is the computed price breakdown. Rule is nil when the reseller's
// default tier markup was used.
type Result struct {
	BaseCost    float64                        `json:"base_cost"`
	Markup      float64                        `json:"markup"`
	MarkupType  markupruledomain.MarkupType    `json:"markup_type"`
	ClientPrice float64                        `json:"client_price"`
	Profit      float64                        `json:"profit"`
	Rule        *markupruledomain.Response     `json:"rule,omitempty"`
}

// BulkRequest prices several volumes under the same scope in one call.
type BulkRequest struct {
	Volumes     []int64 `json:"volumes"`
	CountryCode string  `json:"country_code"`
	SMSType     string  `json:"sms_type"`
	BaseCost    float64 `json:"base_cost"`
}

type BulkResult struct {
	Results      []Result `json:"results"`
	TotalPrice   float64  `json:"total_price"`
	AveragePrice float64  `json:"average_price"`
}
