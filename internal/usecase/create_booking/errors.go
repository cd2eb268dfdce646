package create_booking

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("create_booking: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден у провайдера
	ErrStaffNotFound = errors.New("create_booking: staff member not found")

	// ErrBookingDisabled возвращается, когда онлайн-запись у провайдера выключена
	ErrBookingDisabled = errors.New("create_booking: online booking is disabled")

	// ErrProviderClosed возвращается, когда провайдер закрыт в указанную дату
	ErrProviderClosed = errors.New("create_booking: provider is closed on this date")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrTooLateToBook возвращается при нарушении минимального упреждения
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда запрошенный слот не предлагается
	// (вне сетки, перекрыт блокировкой или без свободных мест)
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrSeatExhausted возвращается, когда все места окна перехвачены конкурентно
	ErrSeatExhausted = errors.New("create_booking: all seats were taken concurrently")

	// ErrSameDayDuplicate возвращается при повторной записи клиента на тот же
	// день без флага подтверждения
	ErrSameDayDuplicate = errors.New("create_booking: customer already has a booking on this date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
