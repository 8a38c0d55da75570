package domain

import "time"

// Stop é a reserva de um usuário em uma viagem, embarcando/desembarcando em um
// dos seus endereços. Há no máximo uma parada por (usuário, viagem).
type Stop struct {
	StopID    uint      `json:"id" gorm:"column:stop_id;primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	AddressID uint      `json:"address_id" gorm:"not null;index"`
	TripID    uint      `json:"trip_id" gorm:"not null;index"`
	StopDate  time.Time `json:"stop_date" gorm:"not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	Address   *Address  `json:"address,omitempty" gorm:"foreignKey:AddressID;references:AddressID;constraint:OnDelete:CASCADE"`
}

func (Stop) TableName() string {
	return "stop"
}
