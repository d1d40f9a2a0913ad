package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	favoriteDomain "github.com/staynest/service-booking/internal/domain/favorite"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/domain"
)

// MemoryStore keeps properties, bookings and favorites in process memory. It backs local runs
// with STORE_DRIVER=memory and the unit tests. Aggregates are stored as copies so callers
// cannot mutate stored state without going through the repository.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[uuid.UUID]propertyDomain.Property
	bookings   map[uuid.UUID]bookingDomain.Booking
	favorites  map[favoriteKey]favoriteDomain.Favorite

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

var (
	_ bookingDomain.BookingRepository   = (*MemoryBookingRepository)(nil)
	_ propertyDomain.PropertyRepository = (*MemoryPropertyRepository)(nil)
	_ favoriteDomain.FavoriteRepository = (*MemoryFavoriteRepository)(nil)
	_ bookingDomain.BookingRepository   = (*GormBookingRepository)(nil)
	_ propertyDomain.PropertyRepository = (*GormPropertyRepository)(nil)
	_ favoriteDomain.FavoriteRepository = (*GormFavoriteRepository)(nil)
)

type favoriteKey struct {
	userID     uuid.UUID
	propertyID uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[uuid.UUID]propertyDomain.Property),
		bookings:   make(map[uuid.UUID]bookingDomain.Booking),
		favorites:  make(map[favoriteKey]favoriteDomain.Favorite),
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// Bookings returns the store's BookingRepository.
func (s *MemoryStore) Bookings() *MemoryBookingRepository { return &MemoryBookingRepository{s: s} }

// Properties returns the store's PropertyRepository.
func (s *MemoryStore) Properties() *MemoryPropertyRepository { return &MemoryPropertyRepository{s: s} }

// Favorites returns the store's FavoriteRepository.
func (s *MemoryStore) Favorites() *MemoryFavoriteRepository { return &MemoryFavoriteRepository{s: s} }

func (s *MemoryStore) propertyLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	offset := domain.Offset(page, limit)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// --- Bookings ---

// MemoryBookingRepository implements BookingRepository over a MemoryStore.
type MemoryBookingRepository struct {
	s *MemoryStore
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	bk, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return &bk, nil
}

func (r *MemoryBookingRepository) filter(keep func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*bookingDomain.Booking, 0)
	for _, bk := range r.s.bookings {
		bk := bk
		if keep(&bk) {
			out = append(out, &bk)
		}
	}
	return out
}

func sortByCheckIn(list []*bookingDomain.Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Stay().CheckIn.Before(list[j].Stay().CheckIn)
	})
}

func sortNewestFirst(list []*bookingDomain.Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt().After(list[j].CreatedAt())
	})
}

func (r *MemoryBookingRepository) FindAcceptedByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	out := r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.PropertyID() == propertyID && bk.Status() == bookingDomain.StatusAccepted
	})
	sortByCheckIn(out)
	return out, nil
}

func (r *MemoryBookingRepository) FindByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	out := r.filter(func(bk *bookingDomain.Booking) bool { return bk.PropertyID() == propertyID })
	sortByCheckIn(out)
	return out, nil
}

func (r *MemoryBookingRepository) FindPendingOverlapping(_ context.Context, propertyID uuid.UUID, stay bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	out := r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.PropertyID() == propertyID &&
			bk.Status() == bookingDomain.StatusPending &&
			bk.Stay().Overlaps(stay)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *MemoryBookingRepository) FindUnavailablePropertyIDs(_ context.Context, stay bookingDomain.DateRange) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, bk := range r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.Status() == bookingDomain.StatusAccepted && bk.Stay().Overlaps(stay)
	}) {
		seen[bk.PropertyID()] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *MemoryBookingRepository) FindByGuestID(_ context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	out := r.filter(func(bk *bookingDomain.Booking) bool { return bk.GuestID() == guestID })
	sortNewestFirst(out)
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *MemoryBookingRepository) FindByPropertyIDs(_ context.Context, propertyIDs []uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	wanted := make(map[uuid.UUID]struct{}, len(propertyIDs))
	for _, id := range propertyIDs {
		wanted[id] = struct{}{}
	}
	out := r.filter(func(bk *bookingDomain.Booking) bool {
		_, ok := wanted[bk.PropertyID()]
		return ok
	})
	sortNewestFirst(out)
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *MemoryBookingRepository) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	out := r.filter(func(*bookingDomain.Booking) bool { return true })
	sortNewestFirst(out)
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *MemoryBookingRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, bk := range r.s.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *MemoryBookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bookings[bk.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.s.bookings[bk.ID()] = *bk
	return nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.s.bookings[bk.ID()] = *bk
	return nil
}

// WithPropertyLock serializes fn with every other locked section on the same property.
func (r *MemoryBookingRepository) WithPropertyLock(
	ctx context.Context,
	propertyID uuid.UUID,
	fn func(ctx context.Context, repo bookingDomain.BookingRepository) error,
) error {
	r.s.mu.RLock()
	_, exists := r.s.properties[propertyID]
	r.s.mu.RUnlock()
	if !exists {
		return domain.NewNotFoundError("Property", propertyID.String())
	}

	l := r.s.propertyLock(propertyID)
	l.Lock()
	defer l.Unlock()
	return fn(ctx, r)
}

// --- Properties ---

// MemoryPropertyRepository implements PropertyRepository over a MemoryStore.
type MemoryPropertyRepository struct {
	s *MemoryStore
}

func (r *MemoryPropertyRepository) FindByID(_ context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.properties[id]
	if !ok {
		return nil, domain.NewNotFoundError("Property", id.String())
	}
	return &p, nil
}

func (r *MemoryPropertyRepository) FindByHostID(_ context.Context, hostID uuid.UUID) ([]*propertyDomain.Property, error) {
	return r.collect(func(p *propertyDomain.Property) bool { return p.HostID() == hostID }), nil
}

func (r *MemoryPropertyRepository) collect(keep func(*propertyDomain.Property) bool) []*propertyDomain.Property {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*propertyDomain.Property, 0)
	for _, p := range r.s.properties {
		p := p
		if keep(&p) {
			out = append(out, &p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}

func (r *MemoryPropertyRepository) Search(
	_ context.Context,
	criteria propertyDomain.SearchCriteria,
	page, limit int,
) ([]*propertyDomain.Property, int64, error) {
	excluded := make(map[uuid.UUID]struct{}, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		excluded[id] = struct{}{}
	}
	loc := strings.ToLower(strings.TrimSpace(criteria.Location))

	out := r.collect(func(p *propertyDomain.Property) bool {
		if !p.IsActive() {
			return false
		}
		if _, skip := excluded[p.ID()]; skip {
			return false
		}
		if loc != "" &&
			!strings.Contains(strings.ToLower(p.Address().City), loc) &&
			!strings.Contains(strings.ToLower(p.Address().State), loc) {
			return false
		}
		if criteria.MinPrice != nil && p.PricePerNight().LessThan(*criteria.MinPrice) {
			return false
		}
		if criteria.MaxPrice != nil && p.PricePerNight().GreaterThan(*criteria.MaxPrice) {
			return false
		}
		return criteria.MinGuests <= 0 || p.MaxGuests() >= criteria.MinGuests
	})
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *MemoryPropertyRepository) Save(_ context.Context, p *propertyDomain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.properties[p.ID()]; exists {
		return domain.NewConflictError("property already exists")
	}
	r.s.properties[p.ID()] = *p
	return nil
}

func (r *MemoryPropertyRepository) Update(_ context.Context, p *propertyDomain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.properties[p.ID()]
	if !ok {
		return domain.NewNotFoundError("Property", p.ID().String())
	}
	if stored.Version() != p.Version()-1 {
		return domain.NewConflictError("property was modified by another transaction")
	}
	r.s.properties[p.ID()] = *p
	return nil
}

// --- Favorites ---

// MemoryFavoriteRepository implements FavoriteRepository over a MemoryStore.
type MemoryFavoriteRepository struct {
	s *MemoryStore
}

func (r *MemoryFavoriteRepository) Exists(_ context.Context, userID, propertyID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.favorites[favoriteKey{userID, propertyID}]
	return ok, nil
}

func (r *MemoryFavoriteRepository) Save(_ context.Context, f *favoriteDomain.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := favoriteKey{f.UserID(), f.PropertyID()}
	if _, ok := r.s.favorites[k]; !ok {
		r.s.favorites[k] = *f
	}
	return nil
}

func (r *MemoryFavoriteRepository) Delete(_ context.Context, userID, propertyID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favorites, favoriteKey{userID, propertyID})
	return nil
}

func (r *MemoryFavoriteRepository) FindByUserID(_ context.Context, userID uuid.UUID) ([]*favoriteDomain.Favorite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*favoriteDomain.Favorite, 0)
	for k, f := range r.s.favorites {
		f := f
		if k.userID == userID {
			out = append(out, &f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *MemoryFavoriteRepository) CountByPropertyID(_ context.Context, propertyID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for k := range r.s.favorites {
		if k.propertyID == propertyID {
			n++
		}
	}
	return n, nil
}
