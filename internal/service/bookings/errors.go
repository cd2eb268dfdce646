package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidStatus возвращается при недопустимом переходе статуса
	ErrInvalidStatus = errors.New("invalid booking status transition")

	// ErrNotSettled возвращается для действий провайдера, требующих оплаты
	ErrNotSettled = errors.New("booking payment is not settled")

	// ErrCodeMismatch возвращается при несовпадении кода чек-ина
	ErrCodeMismatch = errors.New("check-in code does not match")

	// ErrCodeExpired возвращается, когда срок кода чек-ина истёк
	ErrCodeExpired = errors.New("check-in code expired")

	// ErrNoCode возвращается, когда код чек-ина не был выпущен
	ErrNoCode = errors.New("check-in code was not issued")

	// ErrTooEarlyNoShow возвращается до истечения льготного периода неявки
	ErrTooEarlyNoShow = errors.New("no-show grace period has not elapsed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
