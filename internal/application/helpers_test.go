package application

import (
	"context"
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]civil.Date
	generations map[uuid.UUID]int64
	gets, hits  int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{
		entries:     make(map[uuid.UUID][]civil.Date),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *countingCache) Get(_ context.Context, id uuid.UUID) ([]civil.Date, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *countingCache) Generation(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id], nil
}

func (c *countingCache) Set(_ context.Context, id uuid.UUID, generation int64, dates []civil.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] == generation {
		c.entries[id] = dates
	}
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.generations[id]++
	c.invalidated++
	return nil
}

type fixture struct {
	store        *repository.MemoryStore
	cache        *countingCache
	publisher    *recordingPublisher
	availability *AvailabilityService
	bookings     *BookingService
	properties   *PropertyService
	favorites    *FavoriteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureReadingThrough(t, nil)
}

// newFixtureReadingThrough builds a fixture whose availability service reads bookings through
// wrap(store) instead of the store itself.
func newFixtureReadingThrough(
	t *testing.T,
	wrap func(bookingDomain.BookingRepository) bookingDomain.BookingRepository,
) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	blocked := newCountingCache()
	pub := &recordingPublisher{}
	validator := NewRequestValidator()

	var reads bookingDomain.BookingRepository = store.Bookings()
	if wrap != nil {
		reads = wrap(reads)
	}
	availability := NewAvailabilityService(reads, blocked, logger)
	return &fixture{
		store:        store,
		cache:        blocked,
		publisher:    pub,
		availability: availability,
		bookings: NewBookingService(
			store.Bookings(), store.Properties(), availability,
			bookingDomain.NewNightlyPricingStrategy(), validator, pub, logger,
		),
		properties: NewPropertyService(store.Properties(), store.Bookings(), validator, logger),
		favorites:  NewFavoriteService(store.Favorites(), store.Properties(), logger),
	}
}

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func propertyRequest(city string, price string, maxGuests int) PropertyRequest {
	return PropertyRequest{
		Name:          "Cottage in " + city,
		Description:   "A quiet cottage near the centre",
		Street:        "12 Main St",
		City:          city,
		State:         "CA",
		ZipCode:       "94000",
		PricePerNight: decimal.RequireFromString(price),
		MaxGuests:     maxGuests,
		NumBedrooms:   1,
		Images:        []string{"https://img.example.com/a.jpg"},
	}
}

func (f *fixture) createProperty(t *testing.T, hostID uuid.UUID, city, price string) *PropertyDTO {
	t.Helper()
	p, err := f.properties.CreateProperty(context.Background(), hostID, propertyRequest(city, price, 4))
	require.NoError(t, err)
	return p
}

func (f *fixture) request(t *testing.T, propertyID, guestID uuid.UUID, in, out string) *BookingDTO {
	t.Helper()
	bk, err := f.bookings.CreateBooking(context.Background(), guestID, CreateBookingRequest{
		PropertyID:   propertyID,
		GuestID:      guestID,
		CheckInDate:  date(t, in),
		CheckOutDate: date(t, out),
	})
	require.NoError(t, err)
	return bk
}

func (f *fixture) status(t *testing.T, bookingID uuid.UUID) bookingDomain.BookingStatus {
	t.Helper()
	bk, err := f.store.Bookings().FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	return bk.Status()
}

// bookingCount returns how many bookings the store holds across all properties.
func (f *fixture) bookingCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.store.Bookings().ListAll(context.Background(), 1, 1)
	require.NoError(t, err)
	return total
}
