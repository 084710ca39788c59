package availability

import "github.com/m04kA/SMC-VenueBooking/internal/domain"

// Result результат проверки одного окна-кандидата
type Result struct {
	Window      domain.TimeWindow
	Available   bool
	BlockingIDs []int64 // Бронирования, которые занимают слот, по возрастанию времени начала
}
