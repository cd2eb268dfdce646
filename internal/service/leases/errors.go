package leases

import "errors"

var (
	// ErrNoSeatAvailable возвращается, когда ни одно место не свободно
	// на всё запрошенное окно — слот больше недоступен
	ErrNoSeatAvailable = errors.New("leases: no seat available for the requested window")

	// ErrEmptyWindow возвращается для окна нулевой длины
	ErrEmptyWindow = errors.New("leases: window covers no time buckets")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("leases: internal error")
)
