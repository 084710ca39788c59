package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_reservation: invalid input data: %w", domain.ErrValidation)

	// ErrVenueNotFound возвращается, когда площадка не найдена в каталоге
	ErrVenueNotFound = fmt.Errorf("create_reservation: venue not found: %w", domain.ErrNotFound)

	// ErrVenueInactive возвращается, когда площадка закрыта для бронирования
	ErrVenueInactive = fmt.Errorf("create_reservation: venue is not active: %w", domain.ErrValidation)

	// ErrOutsideOperatingHours возвращается, когда окно выходит за часы работы площадки
	ErrOutsideOperatingHours = fmt.Errorf("create_reservation: window is outside operating hours: %w", domain.ErrValidation)

	// ErrPastDate возвращается, когда дата бронирования раньше сегодняшнего дня
	ErrPastDate = fmt.Errorf("create_reservation: date is in the past: %w", domain.ErrValidation)

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_booking_days
	ErrDateTooFarInFuture = fmt.Errorf("create_reservation: date is too far in the future: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("create_reservation: internal error: %w", domain.ErrStorage)
)
