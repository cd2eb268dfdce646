package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

const (
	// batchLimit ограничивает размер пачки за один проход диспетчера
	batchLimit = 200

	columnRemind24h = "remind_24h_sent"
	columnRemind2h  = "remind_2h_sent"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetDueReminders(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
	MarkReminderSent(ctx context.Context, id int64, column string) error
}

// NotifyServiceClient интерфейс клиента уведомлений
type NotifyServiceClient interface {
	SendEvent(ctx context.Context, event notifyservice.Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Dispatcher фоновый диспетчер напоминаний. Раз в минуту выбирает
// бронирования с наступившими и неотправленными напоминаниями, шлёт
// событие и отмечает напоминание отправленным. Ошибки отправки только
// логируются: напоминание останется неотправленным и будет повторено
// на следующем проходе.
type Dispatcher struct {
	bookingRepo  BookingRepository
	notifyClient NotifyServiceClient
	logger       Logger
	cron         *cron.Cron
}

// NewDispatcher создает новый диспетчер напоминаний
func NewDispatcher(bookingRepo BookingRepository, notifyClient NotifyServiceClient, logger Logger) *Dispatcher {
	return &Dispatcher{
		bookingRepo:  bookingRepo,
		notifyClient: notifyClient,
		logger:       logger,
		cron:         cron.New(),
	}
}

// Start запускает периодический проход диспетчера по cron-выражению
func (d *Dispatcher) Start(spec string) error {
	_, err := d.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		d.RunOnce(ctx, time.Now())
	})
	if err != nil {
		return err
	}

	d.cron.Start()
	d.logger.Info("Reminder dispatcher started (spec=%q, batch=%d)", spec, batchLimit)
	return nil
}

// Stop останавливает диспетчер и дожидается завершения текущего прохода
func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
	d.logger.Info("Reminder dispatcher stopped")
}

// RunOnce выполняет один проход: выборка, отправка, отметка
func (d *Dispatcher) RunOnce(ctx context.Context, now time.Time) {
	due, err := d.bookingRepo.GetDueReminders(ctx, now, batchLimit)
	if err != nil {
		d.logger.Error("Reminder: failed to fetch due reminders: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	sent := 0
	for _, booking := range due {
		if booking.RemindAt24h != nil && !booking.Remind24hSent && !booking.RemindAt24h.After(now) {
			if d.send(ctx, booking, columnRemind24h, "24h") {
				sent++
			}
		}
		if booking.RemindAt2h != nil && !booking.Remind2hSent && !booking.RemindAt2h.After(now) {
			if d.send(ctx, booking, columnRemind2h, "2h") {
				sent++
			}
		}
	}

	d.logger.Info("Reminder: pass finished, %d reminders sent of %d due bookings", sent, len(due))
}

// send отправляет одно напоминание; отметка ставится только после
// успешной отправки
func (d *Dispatcher) send(ctx context.Context, booking *domain.Booking, column, kind string) bool {
	err := d.notifyClient.SendEvent(ctx, notifyservice.Event{
		Type:       notifyservice.EventReminderUpcoming,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		Payload: map[string]interface{}{
			"kind":     kind,
			"start_at": booking.StartAt,
		},
	})
	if err != nil {
		d.logger.Warn("Reminder: failed to send %s reminder for booking=%d: %v", kind, booking.ID, err)
		return false
	}

	if err := d.bookingRepo.MarkReminderSent(ctx, booking.ID, column); err != nil {
		// Событие ушло, отметка не встала: на следующем проходе будет дубль,
		// получатель дедуплицирует по booking_id + kind
		d.logger.Error("Reminder: failed to mark %s reminder sent for booking=%d: %v", kind, booking.ID, err)
		return false
	}

	return true
}
