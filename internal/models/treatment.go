package models

import "time"

// Treatment is the clinical record of a session, including its SOAP note.
type Treatment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	AppointmentID *uint `json:"appointment_id"`
	StaffID       uint  `json:"staff_id"`
	ServiceID     *uint `json:"service_id"`

	TreatmentDate time.Time `json:"treatment_date"`
	ProductsUsed  string    `gorm:"type:text" json:"products_used"`

	Subjective string `gorm:"type:text" json:"subjective"`
	Objective  string `gorm:"type:text" json:"objective"`
	Assessment string `gorm:"type:text" json:"assessment"`
	Plan       string `gorm:"type:text" json:"plan"`
	Notes      string `gorm:"type:text" json:"notes"`

	Photos []TreatmentPhoto `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photos,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TreatmentPhoto struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TreatmentID uint   `gorm:"index;not null" json:"treatment_id"`
	Kind        string `gorm:"size:10;not null;default:'other'" json:"kind"`
	FileKey     string `gorm:"size:255;not null" json:"-"`
	ContentType string `gorm:"size:100" json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`

	CreatedAt time.Time `json:"created_at"`
}
