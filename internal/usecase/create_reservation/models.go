package create_reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
	"github.com/m04kA/SMC-VenueBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	RequesterID int64             // ID автора заявки
	VenueID     int64             // ID площадки
	Date        time.Time         // Дата первого вхождения (без времени)
	StartTime   types.TimeString  // Время начала, HH:MM
	EndTime     types.TimeString  // Время окончания, HH:MM
	Purpose     string            // Цель бронирования
	Recurrence  domain.Recurrence // Однократно или еженедельно N раз
}

// Options параметры бронирования из конфигурации
type Options struct {
	AdvanceBookingDays   int            // 0 = без ограничений
	PendingBlocksPending bool           // Заявки pending блокируют друг друга при фиксации
	Location             *time.Location // Часовой пояс для определения "сегодня"
}

// Response модель ответа с созданными бронированиями
type Response struct {
	SeriesID     *uuid.UUID     // ID серии для еженедельной заявки
	Reservations []*Reservation // В порядке вхождений
}

// Reservation созданное бронирование
type Reservation struct {
	ID          int64
	VenueID     int64
	RequesterID int64
	Date        time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Purpose     string
	Status      string
	CreatedAt   time.Time
}

func toResponse(seriesID *uuid.UUID, created []*domain.Reservation) *Response {
	resp := &Response{
		SeriesID:     seriesID,
		Reservations: make([]*Reservation, 0, len(created)),
	}
	for _, r := range created {
		resp.Reservations = append(resp.Reservations, &Reservation{
			ID:          r.ID,
			VenueID:     r.VenueID,
			RequesterID: r.RequesterID,
			Date:        r.Date,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Purpose:     r.Purpose,
			Status:      string(r.Status),
			CreatedAt:   r.CreatedAt,
		})
	}
	return resp
}
