package respond_proposal

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("respond_proposal: booking not found")

	// ErrAccessDenied возвращается, когда отвечает не владелец бронирования
	ErrAccessDenied = errors.New("respond_proposal: access denied")

	// ErrNoProposal возвращается, когда открытого предложения провайдера нет
	ErrNoProposal = errors.New("respond_proposal: no open provider proposal")

	// ErrInvalidTransition возвращается при ответе из недопустимого статуса
	ErrInvalidTransition = errors.New("respond_proposal: booking status does not allow a response")

	// ErrServiceNotFound возвращается, когда услуга бронирования не найдена в каталоге
	ErrServiceNotFound = errors.New("respond_proposal: service not found")

	// ErrSlotNotAvailable возвращается, когда предложенное окно уже занято
	ErrSlotNotAvailable = errors.New("respond_proposal: proposed slot is no longer available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("respond_proposal: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("respond_proposal: internal error")
)
