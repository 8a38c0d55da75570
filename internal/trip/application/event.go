package application

import (
	"strconv"
	"strings"

	"github.com/mateusmacedo/van-bff/internal/domain"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

// NewDailyTripsCreatedEvent anuncia as viagens inseridas para um dia.
func NewDailyTripsCreatedEvent(day string, created []domain.Trip) pkgDomain.Event[domain.Notification] {
	ids := make([]string, 0, len(created))
	directions := make([]string, 0, len(created))
	for _, trip := range created {
		ids = append(ids, strconv.FormatUint(uint64(trip.TripID), 10))
		directions = append(directions, trip.Direction)
	}

	return domain.NewNotificationEvent(domain.EventDailyTripsCreated, domain.Notification{
		Message: "Viagens do dia " + day + " criadas",
		Attributes: map[string]string{
			"date":       day,
			"trip_ids":   strings.Join(ids, ","),
			"directions": strings.Join(directions, ","),
		},
	})
}
