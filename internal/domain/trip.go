package domain

import "time"

const (
	DirectionIda   = "ida"
	DirectionVolta = "volta"

	// MaxStopsPerTrip é o teto de paradas de uma viagem.
	MaxStopsPerTrip = 25
)

// Directions lista os sentidos que compõem o par diário de viagens.
var Directions = []string{DirectionIda, DirectionVolta}

// Trip é um trecho (ida ou volta) de um dia. TripDate é o início do dia no fuso
// configurado, gravado em UTC. Não existe vínculo relacional entre a ida e a
// volta: o par é identificado apenas pela mesma data.
type Trip struct {
	TripID    uint      `json:"id" gorm:"column:trip_id;primaryKey;autoIncrement"`
	TripDate  time.Time `json:"trip_date" gorm:"not null;index"`
	Direction string    `json:"direction" gorm:"size:5;not null"`
	DriverID  *uint     `json:"driver_id,omitempty" gorm:"index"`
	Stops     []Stop    `json:"stops,omitempty" gorm:"foreignKey:TripID;references:TripID;constraint:OnDelete:RESTRICT"`
}

func (Trip) TableName() string {
	return "trip"
}

// TripSummary é a viagem com a contagem de paradas, usada nas listagens.
type TripSummary struct {
	Trip
	StopCount int64 `json:"stop_count"`
	Available int64 `json:"available_seats"`
}

func NewTripSummary(trip Trip, stopCount int64) TripSummary {
	available := int64(MaxStopsPerTrip) - stopCount
	if available < 0 {
		available = 0
	}
	return TripSummary{Trip: trip, StopCount: stopCount, Available: available}
}
