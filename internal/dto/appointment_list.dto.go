package dto

import (
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	ClientID    uint      `json:"client_id"`
	ClientName  string    `json:"client_name"`
	StaffID     uint      `json:"staff_id"`
	StaffName   string    `json:"staff_name"`
	ServiceName string    `json:"service_name"`
	LocationID  *uint     `json:"location_id"`
}

func NewAppointmentListDTO(ap models.Appointment) AppointmentListDTO {
	return AppointmentListDTO{
		ID:          ap.ID,
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime,
		Status:      ap.Status,
		ClientID:    ap.ClientID,
		ClientName:  ap.Client.FullName(),
		StaffID:     ap.StaffID,
		StaffName:   ap.Staff.Name,
		ServiceName: ap.Service.Name,
		LocationID:  ap.LocationID,
	}
}
