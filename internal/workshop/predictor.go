package workshop

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// UpcomingMaintenance flags vehicles whose next service falls inside the
// given windows, judged from each vehicle's latest record. A vehicle is
// due when its next-due date is at most daysWindow away, or its odometer
// is within kmWindow of the next-due reading. Vehicles that were deleted,
// deactivated, or never got a next-due target are skipped.
func (s *service) UpcomingMaintenance(ctx context.Context, daysWindow int, kmWindow int64) ([]models.MaintenanceAlert, error) {
	latest, err := s.records.FindLatestPerVehicle(ctx)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.getClock().Now())
	alerts := []models.MaintenanceAlert{}
	for _, record := range latest {
		vehicle, err := s.vehicles.FindVehicleByID(ctx, record.VehicleID.Hex())
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !vehicle.Active {
			continue
		}

		alert := models.MaintenanceAlert{
			VehicleID:   vehicle.ID,
			Plate:       vehicle.Plate,
			Model:       vehicle.Make + " " + vehicle.Model,
			LastService: record.ServiceDate,
			NextDueKM:   record.NextDueKM,
			NextDueDate: record.NextDueDate,
			CurrentKM:   vehicle.CurrentKM,
		}

		customer, err := s.customers.FindCustomerByID(ctx, vehicle.CustomerID.Hex())
		switch {
		case err == nil:
			alert.CustomerName = customer.Name
		case !errors.Is(err, models.ErrNotFound):
			return nil, err
		}

		due := false
		if record.NextDueDate != nil {
			days := int(dateOnly(*record.NextDueDate).Sub(today).Hours() / 24)
			alert.DaysRemaining = &days
			if days <= daysWindow {
				due = true
			}
		}
		if record.NextDueKM != nil {
			km := *record.NextDueKM - vehicle.CurrentKM
			alert.KMRemaining = &km
			if km <= kmWindow {
				due = true
			}
		}
		if !due {
			continue
		}

		alert.Urgent = (alert.DaysRemaining != nil && *alert.DaysRemaining <= 0) ||
			(alert.KMRemaining != nil && *alert.KMRemaining <= 0)
		alerts = append(alerts, alert)
	}

	// Overdue vehicles first, then soonest by date; km-only alerts
	// carry no days and sort last within their band.
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Urgent != alerts[j].Urgent {
			return alerts[i].Urgent
		}
		return daysSortKey(alerts[i]) < daysSortKey(alerts[j])
	})

	return alerts, nil
}

func daysSortKey(alert models.MaintenanceAlert) int {
	if alert.DaysRemaining == nil {
		return math.MaxInt32
	}
	return *alert.DaysRemaining
}
