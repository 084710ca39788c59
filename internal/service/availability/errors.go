package availability

import (
	"fmt"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrNoCandidates возвращается, когда не передано ни одного окна для проверки
	ErrNoCandidates = fmt.Errorf("availability.service: no candidate windows: %w", domain.ErrValidation)

	// ErrRepositoryError возвращается при ошибках чтения бронирований
	ErrRepositoryError = fmt.Errorf("availability.service: repository error: %w", domain.ErrStorage)
)
