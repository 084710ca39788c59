package get_availability

import (
	"fmt"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("invalid input data: %w", domain.ErrValidation)

	// ErrInvalidRange возвращается, когда конец периода раньше начала
	ErrInvalidRange = fmt.Errorf("date range end is before its start: %w", domain.ErrValidation)

	// ErrRangeTooLong возвращается, когда период длиннее max_query_days
	ErrRangeTooLong = fmt.Errorf("date range is too long: %w", domain.ErrValidation)

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = fmt.Errorf("venue not found: %w", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("usecase: internal error: %w", domain.ErrStorage)
)
