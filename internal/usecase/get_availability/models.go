package get_availability

import (
	"time"

	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// Options ограничения запроса
type Options struct {
	MaxQueryDays int // Максимальное количество дат в одном запросе
}

// Request модель запроса занятости площадки
type Request struct {
	UserID  int64     // ID пользователя (для логирования, не влияет на результат)
	VenueID int64     // ID площадки
	From    time.Time // Первая дата периода (включительно)
	To      time.Time // Последняя дата периода (включительно)
}

// Response занятость площадки по датам
type Response struct {
	VenueID int64     `json:"venueId"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Days    []Day     `json:"days"` // Каждая дата периода по порядку, включая свободные
}

// Day одобренные окна на дату, отсортированные по времени начала
type Day struct {
	Date    time.Time `json:"date"`
	Windows []Window  `json:"windows"`
}

// Window занятое окно
type Window struct {
	ReservationID int64            `json:"reservationId"`
	StartTime     types.TimeString `json:"startTime"`
	EndTime       types.TimeString `json:"endTime"`
}
