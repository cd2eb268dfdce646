package respond_reschedule

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("respond_reschedule: booking not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет провайдером
	ErrAccessDenied = errors.New("respond_reschedule: access denied")

	// ErrNoRequest возвращается, когда открытого запроса клиента нет
	ErrNoRequest = errors.New("respond_reschedule: no open customer reschedule request")

	// ErrInvalidTransition возвращается при ответе из недопустимого статуса
	ErrInvalidTransition = errors.New("respond_reschedule: booking status does not allow a response")

	// ErrServiceNotFound возвращается, когда услуга бронирования не найдена в каталоге
	ErrServiceNotFound = errors.New("respond_reschedule: service not found")

	// ErrSlotNotAvailable возвращается, когда запрошенное окно уже занято
	ErrSlotNotAvailable = errors.New("respond_reschedule: requested slot is no longer available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("respond_reschedule: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("respond_reschedule: internal error")
)
