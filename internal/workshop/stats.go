package workshop

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// Statistics aggregates every record in the optional [from, to] date
// range: counts, revenue split by charge kind, liters consumed, and the
// average ticket. Money comes back rounded to 2 decimal places.
func (s *service) Statistics(ctx context.Context, from, to *time.Time) (*models.WorkshopStats, error) {
	filter := bson.M{}
	if from != nil || to != nil {
		dateFilter := bson.M{}
		if from != nil {
			dateFilter["$gte"] = *from
		}
		if to != nil {
			dateFilter["$lte"] = *to
		}
		filter["service_date"] = dateFilter
	}

	totals, err := s.records.AggregateStats(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &models.WorkshopStats{
		TotalRecords: totals.Count,
		TotalRevenue: totals.Revenue.Round(2),
		OilRevenue:   totals.OilCharges.Round(2),
		LaborRevenue: totals.LaborCharges.Round(2),
		LitersUsed:   totals.Liters,
	}
	// An empty range has no average, not a division by zero.
	if totals.Count > 0 {
		stats.AverageTicket = totals.Revenue.Div(decimal.NewFromInt(totals.Count)).Round(2)
	}
	return stats, nil
}
