package valuation

import (
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
)

type getValuationRequest struct {
	ID string `json:"id"`
}

type listValuationsRequest struct {
	PageSize  int    `json:"page_size"`
	PageToken string `json:"page_token"`
	Filter    string `json:"filter"`
	OrderBy   string `json:"order_by"`
}

// RulesResponse is the DescribeRules payload.
type RulesResponse struct {
	RulesVersion  string `json:"rules_version"`
	UsingDefaults bool   `json:"using_defaults"`
	app.RulesInfo
}
