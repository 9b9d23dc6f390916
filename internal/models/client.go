package models

import "time"

// Client is the patient profile. UserID is set when the client has portal access.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint `gorm:"uniqueIndex" json:"user_id"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	LastName    string     `gorm:"size:100;not null" json:"last_name"`
	Email       string     `gorm:"size:100;index" json:"email"`
	Phone       string     `gorm:"size:20" json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Notes       string     `gorm:"type:text" json:"notes"`

	LocationID *uint `json:"location_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
