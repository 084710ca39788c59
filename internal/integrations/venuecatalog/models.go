package venuecatalog

import (
	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// Venue модель площадки из каталога
type Venue struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Capacity   int              `json:"capacity"`
	OpenTime   types.TimeString `json:"open_time"`  // Начало времени бронирования, HH:MM
	CloseTime  types.TimeString `json:"close_time"` // Конец времени бронирования, HH:MM
	IsActive   bool             `json:"is_active"`
	ManagerIDs []int64          `json:"manager_ids"`
}

// HasValidHours проверяет, что часы работы заданы и open < close
// Площадка с некорректными часами считается закрытой для бронирования
func (v *Venue) HasValidHours() bool {
	if v.OpenTime.Validate() != nil || v.CloseTime.Validate() != nil {
		return false
	}
	return v.OpenTime.IsBefore(v.CloseTime)
}

// IsManager проверяет, является ли пользователь менеджером площадки
func (v *Venue) IsManager(userID int64) bool {
	for _, id := range v.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от каталога площадок
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
