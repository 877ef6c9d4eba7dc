// Package rental реализует машину состояний аренды и координатор
// транзакций: каждый переход жизненного цикла выполняется в одной
// атомарной единице работы поверх инвентарной книги и тарифного движка.
package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/lib/metrics"
	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
	"github.com/askchiwa/chajipoa-core/internal/pricing"
	"github.com/askchiwa/chajipoa-core/internal/storage"
)

const activeRentalCacheTTL = 30 * time.Second

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Notifier публикует события жизненного цикла после успешного коммита.
// Ошибки публикации логируются и никогда не откатывают переход.
type Notifier interface {
	Publish(ctx context.Context, event models.RentalEvent) error
}

// QRSessions потребляет одноразовые QR-сессии старта/возврата.
type QRSessions interface {
	Consume(ctx context.Context, sessionID string, observedDeviceID, observedStationID int64) (*models.QRSession, error)
}

// Service машина состояний аренды и координатор транзакций.
type Service struct {
	store    storage.Store
	cache    Cache
	sessions QRSessions
	notifier Notifier
	tariff   pricing.Tariff
	log      *slog.Logger

	now func() time.Time
}

// New создает новый Service.
func New(store storage.Store, cache Cache, sessions QRSessions, notifier Notifier, tariff pricing.Tariff, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		sessions: sessions,
		notifier: notifier,
		tariff:   tariff,
		log:      log,
		now:      time.Now,
	}
}

// ActiveRentalView активная аренда с проекцией статуса и текущим
// накопленным счётом на момент чтения.
type ActiveRentalView struct {
	Rental           *models.Rental
	EffectiveStatus  models.RentalStatus
	AccruedCharge    pricing.Charge
	ProjectedLateFee decimal.Decimal
}

// Start начинает аренду: пользователь активен и без незавершённой
// аренды, устройство доступно на станции. Депозит берётся на баланс,
// окно по умолчанию из тарифа.
func (s *Service) Start(ctx context.Context, userUID string, req models.StartRentalRequest) (*models.Rental, error) {
	const op = "rental.Start"

	session, err := s.consumeSession(ctx, req.QRSessionID, userUID, models.QRPurposeStart, 0, req.StationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	var rental *models.Rental
	var device *models.Device
	var user *models.User

	err = s.store.WithTx(ctx, func(tx storage.TxRepository) error {
		user, err = tx.GetUserByUIDForUpdate(ctx, userUID)
		if err != nil {
			return err
		}
		if !user.CanRent() {
			return fmt.Errorf("account is %s: %w", user.AccountStatus, apperrors.ErrConflict)
		}
		if _, err := tx.GetActiveRentalForUpdate(ctx, user.ID); err == nil {
			return fmt.Errorf("user already has an active rental: %w", apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		device, err = tx.AcquireDevice(ctx, req.DeviceCode, req.StationID)
		if err != nil {
			return err
		}
		if session != nil && session.DeviceID != device.ID {
			return fmt.Errorf("qr session device mismatch: %w", apperrors.ErrConflict)
		}

		rental = &models.Rental{
			RentalCode:          newRentalCode(),
			UserID:              user.ID,
			DeviceID:            device.ID,
			StationFromID:       req.StationID,
			Status:              models.RentalStatusActive,
			StartTime:           now,
			ExpectedEndTime:     now.Add(s.tariff.DefaultWindow),
			BaseAmount:          decimal.Zero,
			TaxAmount:           decimal.Zero,
			LateFee:             decimal.Zero,
			TotalAmount:         decimal.Zero,
			DepositAmount:       s.tariff.DepositAmount,
			DepositReturnAmount: decimal.Zero,
		}
		id, err := tx.CreateRental(ctx, rental)
		if err != nil {
			return err
		}
		rental.ID = id

		return tx.CreditUserOnStart(ctx, user.ID, s.tariff.DepositAmount)
	})
	if err != nil {
		s.countConflict(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RentalsStarted.Inc()
	s.dropActiveCache(ctx, userUID)
	s.publish(ctx, models.RentalEvent{
		Type:            models.EventRentalStarted,
		RentalCode:      rental.RentalCode,
		Username:        user.Username,
		PhoneNumber:     user.PhoneNumber,
		DeviceCode:      device.Code,
		ExpectedEndTime: rental.ExpectedEndTime,
		OccurredAt:      now,
	}, userUID)

	s.log.Info("rental started",
		slog.String("rental_code", rental.RentalCode),
		slog.String("device_code", device.Code))
	return rental, nil
}

// Extend продлевает активную аренду на extraHours. Тарифицируется
// только добавленное окно; уже оплаченные часы не пересчитываются.
func (s *Service) Extend(ctx context.Context, userUID, rentalCode string, extraHours int) (*models.Rental, error) {
	const op = "rental.Extend"

	if extraHours < 1 || extraHours > 24 {
		return nil, fmt.Errorf("%s: extra hours must be within [1, 24]: %w", op, apperrors.ErrValidation)
	}

	now := s.now().UTC()
	var rental *models.Rental
	var user *models.User

	err := s.store.WithTx(ctx, func(tx storage.TxRepository) error {
		var err error
		user, err = tx.GetUserByUIDForUpdate(ctx, userUID)
		if err != nil {
			return err
		}
		rental, err = s.lockOwnRental(ctx, tx, user.ID, rentalCode)
		if err != nil {
			return err
		}
		if rental.EffectiveStatus(now) == models.RentalStatusOverdue {
			return fmt.Errorf("rental %s is overdue and cannot be extended: %w", rentalCode, apperrors.ErrConflict)
		}

		inc := s.tariff.IncrementWithinCap(rental.BaseAmount, s.tariff.ExtensionQuote(extraHours).Base)
		rental.BaseAmount = rental.BaseAmount.Add(inc.Base)
		rental.TaxAmount = rental.TaxAmount.Add(inc.Tax)
		rental.TotalAmount = rental.TotalAmount.Add(inc.Total)
		rental.ExtendedHours += extraHours
		rental.ExpectedEndTime = rental.ExpectedEndTime.Add(time.Duration(extraHours) * time.Hour)

		return tx.UpdateRentalOnExtend(ctx, rental)
	})
	if err != nil {
		s.countConflict(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RentalsExtended.Inc()
	s.dropActiveCache(ctx, userUID)
	s.publish(ctx, models.RentalEvent{
		Type:            models.EventRentalExtended,
		RentalCode:      rental.RentalCode,
		Username:        user.Username,
		PhoneNumber:     user.PhoneNumber,
		TotalAmount:     rental.TotalAmount.StringFixed(2),
		ExpectedEndTime: rental.ExpectedEndTime,
		OccurredAt:      now,
	}, userUID)

	s.log.Info("rental extended",
		slog.String("rental_code", rental.RentalCode),
		slog.Int("extra_hours", extraHours))
	return rental, nil
}

// End завершает аренду: устройство возвращается на станцию (любую),
// считается финальный счёт за фактическое время, штраф за просрочку
// и возврат депозита.
func (s *Service) End(ctx context.Context, userUID, rentalCode string, req models.EndRentalRequest) (*models.Rental, error) {
	const op = "rental.End"

	session, err := s.consumeSession(ctx, req.QRSessionID, userUID, models.QRPurposeReturn, 0, req.StationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	var rental *models.Rental
	var device *models.Device
	var user *models.User

	err = s.store.WithTx(ctx, func(tx storage.TxRepository) error {
		user, err = tx.GetUserByUIDForUpdate(ctx, userUID)
		if err != nil {
			return err
		}
		rental, err = s.lockOwnRental(ctx, tx, user.ID, rentalCode)
		if err != nil {
			return err
		}
		if session != nil && session.DeviceID != rental.DeviceID {
			return fmt.Errorf("qr session device mismatch: %w", apperrors.ErrConflict)
		}

		// Часы, оплаченные продлениями, из финального окна исключаются.
		billable := now.Sub(rental.StartTime) - time.Duration(rental.ExtendedHours)*time.Hour
		if billable < 0 {
			billable = 0
		}
		inc := s.tariff.IncrementWithinCap(rental.BaseAmount, s.tariff.Quote(billable).Base)
		rental.BaseAmount = rental.BaseAmount.Add(inc.Base)
		rental.TaxAmount = rental.TaxAmount.Add(inc.Tax)
		rental.TotalAmount = rental.TotalAmount.Add(inc.Total)

		rental.LateFee = s.tariff.LateFee(now.Sub(rental.ExpectedEndTime))
		rental.DepositReturnAmount = pricing.DepositReturn(rental.DepositAmount, rental.TotalAmount, rental.LateFee)
		rental.DepositReturned = true
		rental.Status = models.RentalStatusCompleted
		rental.EndTime = &now
		rental.StationToID = &req.StationID

		device, err = tx.ReleaseDevice(ctx, rental.DeviceID, req.StationID, rental.TotalAmount)
		if err != nil {
			return err
		}
		if err := tx.CompleteRental(ctx, rental); err != nil {
			return err
		}
		spent := rental.TotalAmount.Add(rental.LateFee)
		return tx.SettleUserOnEnd(ctx, user.ID, rental.DepositAmount, rental.DepositReturnAmount, spent)
	})
	if err != nil {
		s.countConflict(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RentalsCompleted.Inc()
	s.dropActiveCache(ctx, userUID)
	s.publish(ctx, models.RentalEvent{
		Type:          models.EventRentalCompleted,
		RentalCode:    rental.RentalCode,
		Username:      user.Username,
		PhoneNumber:   user.PhoneNumber,
		DeviceCode:    device.Code,
		TotalAmount:   rental.TotalAmount.StringFixed(2),
		LateFee:       rental.LateFee.StringFixed(2),
		DepositReturn: rental.DepositReturnAmount.StringFixed(2),
		OccurredAt:    now,
	}, userUID)

	s.log.Info("rental completed",
		slog.String("rental_code", rental.RentalCode),
		slog.String("total", rental.TotalAmount.StringFixed(2)),
		slog.String("late_fee", rental.LateFee.StringFixed(2)))
	return rental, nil
}

// ReportLost отмечает устройство утерянным: аренда закрывается как
// lost, депозит не возвращается, устройство навсегда покидает оборот.
func (s *Service) ReportLost(ctx context.Context, userUID, rentalCode, notes string) (*models.Rental, error) {
	const op = "rental.ReportLost"

	now := s.now().UTC()
	var rental *models.Rental
	var device *models.Device
	var user *models.User

	err := s.store.WithTx(ctx, func(tx storage.TxRepository) error {
		var err error
		user, err = tx.GetUserByUIDForUpdate(ctx, userUID)
		if err != nil {
			return err
		}
		rental, err = s.lockOwnRental(ctx, tx, user.ID, rentalCode)
		if err != nil {
			return err
		}

		device, err = tx.MarkDeviceLost(ctx, rental.DeviceID)
		if err != nil {
			return err
		}

		rental.Status = models.RentalStatusLost
		rental.EndTime = &now
		rental.Notes = notes
		rental.DepositReturned = true
		rental.DepositReturnAmount = decimal.Zero
		if err := tx.MarkRentalLost(ctx, rental); err != nil {
			return err
		}
		// Депозит удерживается целиком.
		return tx.SettleUserOnEnd(ctx, user.ID, rental.DepositAmount, decimal.Zero, rental.DepositAmount)
	})
	if err != nil {
		s.countConflict(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RentalsLost.Inc()
	s.dropActiveCache(ctx, userUID)
	s.publish(ctx, models.RentalEvent{
		Type:        models.EventRentalLost,
		RentalCode:  rental.RentalCode,
		Username:    user.Username,
		PhoneNumber: user.PhoneNumber,
		DeviceCode:  device.Code,
		OccurredAt:  now,
	}, userUID)

	s.log.Info("rental closed as lost", slog.String("rental_code", rental.RentalCode))
	return rental, nil
}

// Active возвращает незавершённую аренду пользователя с проекцией
// просрочки и накопленным счётом. Ничего не мутирует.
func (s *Service) Active(ctx context.Context, userUID string) (*ActiveRentalView, error) {
	const op = "rental.Active"

	cacheKey := "rental:active:" + userUID
	var rental *models.Rental
	found, err := s.cache.Get(ctx, cacheKey, &rental)
	if err != nil {
		s.log.Warn("failed to read active rental from cache", slog.String("key", cacheKey), sl.Err(err))
		found = false
	}
	if !found {
		rental, err = s.store.GetActiveRentalByUserUID(ctx, userUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.cache.Set(ctx, cacheKey, rental, activeRentalCacheTTL); err != nil {
			s.log.Warn("failed to cache active rental", slog.String("key", cacheKey), sl.Err(err))
		}
	}

	now := s.now().UTC()
	billable := now.Sub(rental.StartTime) - time.Duration(rental.ExtendedHours)*time.Hour
	if billable < 0 {
		billable = 0
	}
	accrued := s.tariff.IncrementWithinCap(rental.BaseAmount, s.tariff.Quote(billable).Base)
	accrued.Base = accrued.Base.Add(rental.BaseAmount)
	accrued.Tax = accrued.Tax.Add(rental.TaxAmount)
	accrued.Total = accrued.Total.Add(rental.TotalAmount)

	return &ActiveRentalView{
		Rental:           rental,
		EffectiveStatus:  rental.EffectiveStatus(now),
		AccruedCharge:    accrued,
		ProjectedLateFee: s.tariff.LateFee(now.Sub(rental.ExpectedEndTime)),
	}, nil
}

// QuotePrice считает стоимость окна использования без какого-либо состояния.
func (s *Service) QuotePrice(elapsed time.Duration) pricing.Charge {
	return s.tariff.Quote(elapsed)
}

func (s *Service) lockOwnRental(ctx context.Context, tx storage.TxRepository, userID int64, rentalCode string) (*models.Rental, error) {
	rental, err := tx.GetActiveRentalForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rental.RentalCode != rentalCode {
		return nil, fmt.Errorf("rental %s: %w", rentalCode, apperrors.ErrNotFound)
	}
	return rental, nil
}

func (s *Service) consumeSession(ctx context.Context, sessionID, userUID string, purpose models.QRPurpose, deviceID, stationID int64) (*models.QRSession, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessions.Consume(ctx, sessionID, deviceID, stationID)
	if err != nil {
		return nil, err
	}
	if session.Purpose != purpose {
		return nil, fmt.Errorf("qr session purpose %s: %w", session.Purpose, apperrors.ErrConflict)
	}
	if session.UserUID != "" && session.UserUID != userUID {
		return nil, fmt.Errorf("qr session belongs to another user: %w", apperrors.ErrConflict)
	}
	return session, nil
}

func (s *Service) publish(ctx context.Context, event models.RentalEvent, userUID string) {
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish rental event",
			slog.String("type", event.Type),
			slog.String("user_uid", userUID),
			sl.Err(err))
	}
}

func (s *Service) dropActiveCache(ctx context.Context, userUID string) {
	key := "rental:active:" + userUID
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) countConflict(err error) {
	if errors.Is(err, apperrors.ErrConflict) {
		metrics.Conflicts.Inc()
	}
}

func newRentalCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CHJ-" + strings.ToUpper(raw[:8])
}
