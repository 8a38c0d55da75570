package application

import (
	"strconv"
	"strings"

	"github.com/mateusmacedo/van-bff/internal/domain"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

const (
	BookingSingle    = "single"
	BookingRoundTrip = "round_trip"
)

// NewStopsBookedEvent anuncia as paradas gravadas em uma reserva.
func NewStopsBookedEvent(kind, day string, stops []domain.Stop) pkgDomain.Event[domain.Notification] {
	tripIDs := make([]string, 0, len(stops))
	var userID uint
	for _, stop := range stops {
		tripIDs = append(tripIDs, strconv.FormatUint(uint64(stop.TripID), 10))
		userID = stop.UserID
	}

	return domain.NewNotificationEvent(domain.EventStopsBooked, domain.Notification{
		UserID:  userID,
		Message: "Reserva confirmada para " + day,
		Attributes: map[string]string{
			"kind":     kind,
			"date":     day,
			"trip_ids": strings.Join(tripIDs, ","),
		},
	})
}
