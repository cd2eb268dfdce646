package cancel_booking

import "time"

// Request модель запроса на отмену бронирования клиентом
type Request struct {
	BookingID int64
	UserID    int64 // клиент — владелец бронирования
	Reason    *string
}

// Response модель ответа с результатом отмены
type Response struct {
	ID                     int64
	Status                 string
	CancellationFeePercent float64
	CancellationFeeAmount  float64
	CancelledAt            time.Time
}
