package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/pkg/domain"
)

// SQLSTATE raised by the no_overlapping_accepted_stays exclusion constraint.
const pgExclusionViolation = "23P01"

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PropertyID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	GuestID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	CheckInDate  time.Time       `gorm:"type:date;not null;index"`
	CheckOutDate time.Time       `gorm:"type:date;not null"`
	Guests       int             `gorm:"not null;default:1"`
	Status       string          `gorm:"not null;size:20;index"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DecidedAt    *time.Time      `gorm:""`
	CanceledAt   *time.Time      `gorm:""`
	CanceledBy   *uuid.UUID      `gorm:"type:uuid"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindAcceptedByPropertyID returns the property's accepted bookings ordered by check-in.
func (r *GormBookingRepository) FindAcceptedByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusAccepted)).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find accepted bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindByPropertyID returns every booking on the property.
func (r *GormBookingRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find property bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindPendingOverlapping returns pending bookings on the property that share a night with stay.
func (r *GormBookingRepository) FindPendingOverlapping(ctx context.Context, propertyID uuid.UUID, stay bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusPending)).
		Where("check_in_date < ? AND check_out_date > ?", stay.CheckOut.String(), stay.CheckIn.String()).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping requests: %w", err)
	}
	return toDomainBookings(models), nil
}

// FindUnavailablePropertyIDs returns properties holding an accepted booking that overlaps stay.
func (r *GormBookingRepository) FindUnavailablePropertyIDs(ctx context.Context, stay bookingDomain.DateRange) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Distinct("property_id").
		Where("status = ?", string(bookingDomain.StatusAccepted)).
		Where("check_in_date < ? AND check_out_date > ?", stay.CheckOut.String(), stay.CheckIn.String()).
		Pluck("property_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to find unavailable properties: %w", err)
	}
	return ids, nil
}

// FindByGuestID retrieves bookings for a specific guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, page, limit, func(db *gorm.DB) *gorm.DB {
		return db.Where("guest_id = ?", guestID)
	})
}

// FindByPropertyIDs retrieves bookings on any of the given properties with pagination.
func (r *GormBookingRepository) FindByPropertyIDs(ctx context.Context, propertyIDs []uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	if len(propertyIDs) == 0 {
		return []*bookingDomain.Booking{}, 0, nil
	}
	return r.paginate(ctx, page, limit, func(db *gorm.DB) *gorm.DB {
		return db.Where("property_id IN ?", propertyIDs)
	})
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, page, limit, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *GormBookingRepository) paginate(
	ctx context.Context,
	page, limit int,
	scope func(*gorm.DB) *gorm.DB,
) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Offset(domain.Offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateWriteError(err, "failed to save booking")
	}
	return nil
}

// UpdateStatus persists a status change with optimistic locking.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before the write, so the stored row still holds version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"decided_at":  model.DecidedAt,
			"canceled_at": model.CanceledAt,
			"canceled_by": model.CanceledBy,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return translateWriteError(result.Error, "failed to update booking")
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// WithPropertyLock runs fn in a transaction holding a row lock on the property, so availability
// checks and the writes that depend on them are serialized per property.
func (r *GormBookingRepository) WithPropertyLock(
	ctx context.Context,
	propertyID uuid.UUID,
	fn func(ctx context.Context, repo bookingDomain.BookingRepository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked PropertyModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", propertyID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Property", propertyID.String())
			}
			return fmt.Errorf("failed to lock property: %w", err)
		}
		return fn(ctx, &GormBookingRepository{db: tx})
	})
}

// translateWriteError turns an exclusion-constraint violation into a DATES_UNAVAILABLE conflict.
func translateWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return domain.NewUnavailableError("another stay was already accepted for these dates")
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// --- Conversion Helpers ---

func dateColumn(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:           bk.ID(),
		PropertyID:   bk.PropertyID(),
		GuestID:      bk.GuestID(),
		CheckInDate:  dateColumn(bk.Stay().CheckIn),
		CheckOutDate: dateColumn(bk.Stay().CheckOut),
		Guests:       bk.GuestCount(),
		Status:       string(bk.Status()),
		TotalPrice:   bk.TotalPrice(),
		DecidedAt:    bk.DecidedAt(),
		CanceledAt:   bk.CanceledAt(),
		CanceledBy:   bk.CanceledBy(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.PropertyID,
		m.GuestID,
		bookingDomain.DateRange{
			CheckIn:  civil.DateOf(m.CheckInDate),
			CheckOut: civil.DateOf(m.CheckOutDate),
		},
		m.Guests,
		bookingDomain.BookingStatus(m.Status),
		m.TotalPrice,
		m.DecidedAt,
		m.CanceledAt,
		m.CanceledBy,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
