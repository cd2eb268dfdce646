package propose_time

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("propose_time: booking not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет провайдером
	ErrAccessDenied = errors.New("propose_time: access denied")

	// ErrInvalidTransition возвращается при предложении из недопустимого статуса
	ErrInvalidTransition = errors.New("propose_time: booking status does not allow a proposal")

	// ErrServiceNotFound возвращается, когда услуга бронирования не найдена в каталоге
	ErrServiceNotFound = errors.New("propose_time: service not found")

	// ErrProviderClosed возвращается, когда провайдер закрыт в предложенный день
	ErrProviderClosed = errors.New("propose_time: provider is closed on this day")

	// ErrSlotNotAvailable возвращается, когда предложенное время недоступно
	ErrSlotNotAvailable = errors.New("propose_time: proposed slot is not available")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("propose_time: date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("propose_time: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("propose_time: internal error")
)
