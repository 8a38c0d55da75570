package domain

// Address é um endereço tipado ("casa", "trabalho", "faculdade"...) de um único usuário.
type Address struct {
	AddressID    uint   `json:"id" gorm:"column:address_id;primaryKey;autoIncrement"`
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	Type         string `json:"type" gorm:"size:30;not null"`
	Street       string `json:"street" gorm:"size:160;not null"`
	Number       string `json:"number" gorm:"size:20"`
	Complement   string `json:"complement,omitempty" gorm:"size:80"`
	Neighborhood string `json:"neighborhood" gorm:"size:80"`
	City         string `json:"city" gorm:"size:80;not null"`
	State        string `json:"state" gorm:"size:2"`
	ZipCode      string `json:"zip_code" gorm:"size:9"`
}

func (Address) TableName() string {
	return "address"
}
