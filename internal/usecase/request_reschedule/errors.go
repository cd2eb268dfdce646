package request_reschedule

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("request_reschedule: booking not found")

	// ErrAccessDenied возвращается, когда запрашивает не владелец бронирования
	ErrAccessDenied = errors.New("request_reschedule: access denied")

	// ErrInvalidTransition возвращается при запросе из недопустимого статуса
	ErrInvalidTransition = errors.New("request_reschedule: booking status does not allow a reschedule")

	// ErrLimitReached возвращается, когда лимит переносов клиента исчерпан
	ErrLimitReached = errors.New("request_reschedule: reschedule limit reached")

	// ErrServiceNotFound возвращается, когда услуга бронирования не найдена в каталоге
	ErrServiceNotFound = errors.New("request_reschedule: service not found")

	// ErrSlotNotAvailable возвращается, когда в этот день нет подходящего слота
	ErrSlotNotAvailable = errors.New("request_reschedule: no slot available on this day")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_reschedule: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_reschedule: internal error")
)
