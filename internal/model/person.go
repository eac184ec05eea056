package model

type PersonType string

const (
	PersonStudent PersonType = "student"
	PersonStaff   PersonType = "staff"
	PersonOther   PersonType = "other"
)

// Person is a customer or staff account that sales can be attributed to.
// Balance is a prepaid tab; balance-paid sales may overdraw it into negative.
type Person struct {
	BaseModel
	Name    string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email   string     `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Type    PersonType `gorm:"type:varchar(10);not null;default:'other'" json:"type" validate:"required,oneof=student staff other"`
	Balance float64    `gorm:"not null;default:0" json:"balance"`
}
