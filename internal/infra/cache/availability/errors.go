package availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

var (
	// ErrCache ошибка обращения к Redis
	ErrCache = fmt.Errorf("availability cache: %w", domain.ErrStorage)

	// ErrEncode ошибка сериализации значения
	ErrEncode = errors.New("availability cache: encode error")
)
