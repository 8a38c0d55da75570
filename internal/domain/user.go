package domain

import "time"

const (
	UserTypePassenger = "passenger"
	UserTypeDriver    = "driver"
	UserTypeAdmin     = "admin"
)

// User é o passageiro, motorista ou administrador. Password guarda o hash bcrypt.
type User struct {
	UserID        uint       `json:"id" gorm:"column:user_id;primaryKey;autoIncrement"`
	Name          string     `json:"name" gorm:"size:120;not null"`
	Email         string     `json:"email" gorm:"size:160;uniqueIndex;not null"`
	Password      string     `json:"-" gorm:"not null"`
	CPF           string     `json:"cpf,omitempty" gorm:"column:cpf;size:14"`
	Birthdate     *time.Time `json:"birthdate,omitempty" gorm:"type:date"`
	Phone         string     `json:"phone,omitempty" gorm:"size:20"`
	UserType      string     `json:"user_type" gorm:"size:20;not null"`
	ResetPassword bool       `json:"reset_password" gorm:"not null"`
	Addresses     []Address  `json:"addresses,omitempty" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
