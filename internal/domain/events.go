package domain

import (
	pkgApp "github.com/mateusmacedo/van-bff/pkg/application"
	pkgDomain "github.com/mateusmacedo/van-bff/pkg/domain"
)

const (
	EventUserRegistered         = "UserRegistered"
	EventUserDeleted            = "UserDeleted"
	EventPasswordResetRequested = "PasswordResetRequested"
	EventDailyTripsCreated      = "DailyTripsCreated"
	EventStopsBooked            = "StopsBooked"
)

// EventNames lista todos os tópicos publicados pelo serviço.
var EventNames = []string{
	EventUserRegistered,
	EventUserDeleted,
	EventPasswordResetRequested,
	EventDailyTripsCreated,
	EventStopsBooked,
}

// Notification é o payload comum dos eventos de domínio.
type Notification struct {
	UserID     uint              `json:"user_id,omitempty"`
	Email      string            `json:"email,omitempty"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type EventBus = pkgApp.EventBus[pkgDomain.Event[Notification], Notification]

type notificationEvent struct {
	name string
	data Notification
}

func (e notificationEvent) EventName() string {
	return e.name
}

func (e notificationEvent) Payload() Notification {
	return e.data
}

func NewNotificationEvent(name string, data Notification) pkgDomain.Event[Notification] {
	return notificationEvent{name: name, data: data}
}
