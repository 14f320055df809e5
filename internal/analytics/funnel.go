package analytics

import (
	"context"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// FunnelPoint is one stage of the conversion funnel
type FunnelPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ConversionFunnel counts funnel events by type across the whole range,
// in the fixed order Seeds, Callbacks, Leads, Sales. Missing categories
// report 0.
func (s *Service) ConversionFunnel(ctx context.Context, companyID string, start, end time.Time) ([]FunnelPoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := s.store.EventTypeTotals(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	return []FunnelPoint{
		{Name: "Seeds", Value: totals[types.EventSeed]},
		{Name: "Callbacks", Value: totals[types.EventCallback]},
		{Name: "Leads", Value: totals[types.EventLead]},
		{Name: "Sales", Value: totals[types.EventSale]},
	}, nil
}
