package reservations

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("reservation not found: %w", domain.ErrNotFound)

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = fmt.Errorf("venue not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("invalid input data: %w", domain.ErrValidation)

	// ErrInvalidTransition возвращается, когда переход статуса запрещён
	ErrInvalidTransition = fmt.Errorf("reservation status cannot be changed: %w", domain.ErrInvalidTransition)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("service: internal error: %w", domain.ErrStorage)
)
