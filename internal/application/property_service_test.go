package application

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/pkg/domain"
)

func TestCreateProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostID := uuid.New()

	prop, err := f.properties.CreateProperty(ctx, hostID, propertyRequest("Sonoma", "120.00", 4))
	require.NoError(t, err)
	assert.Equal(t, hostID, prop.HostID)
	assert.Equal(t, "USA", prop.Address.Country)
	assert.Equal(t, "active", prop.Status)

	t.Run("for someone else", func(t *testing.T) {
		req := propertyRequest("Sonoma", "120.00", 4)
		req.HostID = uuid.New()
		_, err := f.properties.CreateProperty(ctx, hostID, req)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("price with three decimals", func(t *testing.T) {
		_, err := f.properties.CreateProperty(ctx, hostID, propertyRequest("Sonoma", "120.001", 4))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("zero price", func(t *testing.T) {
		_, err := f.properties.CreateProperty(ctx, hostID, propertyRequest("Sonoma", "0", 4))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("no images", func(t *testing.T) {
		req := propertyRequest("Sonoma", "120", 4)
		req.Images = nil
		_, err := f.properties.CreateProperty(ctx, hostID, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("bad image url", func(t *testing.T) {
		req := propertyRequest("Sonoma", "120", 4)
		req.Images = []string{"not a url"}
		_, err := f.properties.CreateProperty(ctx, hostID, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestUpdateAndDeactivateProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostID := uuid.New()
	prop := f.createProperty(t, hostID, "Sonoma", "100")

	req := propertyRequest("Napa", "150", 6)
	updated, err := f.properties.UpdateProperty(ctx, hostID, prop.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Napa", updated.Address.City)
	assert.Equal(t, 6, updated.MaxGuests)

	_, err = f.properties.UpdateProperty(ctx, uuid.New(), prop.ID, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, f.properties.DeactivateProperty(ctx, uuid.New(), prop.ID), domain.ErrForbidden)
	require.NoError(t, f.properties.DeactivateProperty(ctx, hostID, prop.ID))

	got, err := f.properties.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	listed, err := f.properties.ListHostProperties(ctx, hostID)
	require.NoError(t, err)
	assert.Len(t, listed, 1, "hosts still see inactive listings")

	page, err := f.properties.SearchProperties(ctx, SearchPropertiesRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "inactive listings are hidden from search")
}

func TestSearchProperties_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostID := uuid.New()

	cheap := f.createProperty(t, hostID, "San Jose", "80")
	f.createProperty(t, hostID, "San Diego", "300")
	f.createProperty(t, hostID, "Fresno", "120")

	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	page, err := f.properties.SearchProperties(ctx, SearchPropertiesRequest{City: "san"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{City: "CA"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total, "city filter also matches the state")

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{MinPrice: price("100"), MaxPrice: price("200")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{MaxPrice: price("80")})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, cheap.ID, page.Items[0].ID)

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{Guests: 5})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{MinPrice: price("300"), MaxPrice: price("100")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 1)

	page, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchPageSize, page.Limit)
}

func TestSearchProperties_ExcludesAcceptedOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostID := uuid.New()
	booked := f.createProperty(t, hostID, "Sonoma", "100")
	requested := f.createProperty(t, hostID, "Sonoma", "100")

	bk := f.request(t, booked.ID, uuid.New(), "2025-03-10", "2025-03-13")
	_, err := f.bookings.AcceptBooking(ctx, hostID, bk.ID)
	require.NoError(t, err)
	f.request(t, requested.ID, uuid.New(), "2025-03-10", "2025-03-13")

	search := func(in, out string) []uuid.UUID {
		ci, co := date(t, in), date(t, out)
		page, err := f.properties.SearchProperties(ctx, SearchPropertiesRequest{CheckIn: &ci, CheckOut: &co})
		require.NoError(t, err)
		ids := make([]uuid.UUID, len(page.Items))
		for i, p := range page.Items {
			ids[i] = p.ID
		}
		return ids
	}

	assert.ElementsMatch(t, []uuid.UUID{requested.ID}, search("2025-03-12", "2025-03-15"))
	assert.ElementsMatch(t, []uuid.UUID{booked.ID, requested.ID}, search("2025-03-13", "2025-03-15"))

	onlyIn := civil.Date{Year: 2025, Month: 3, Day: 11}
	page, err := f.properties.SearchProperties(ctx, SearchPropertiesRequest{CheckIn: &onlyIn})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total, "a single date does not filter")

	_, err = f.properties.SearchProperties(ctx, SearchPropertiesRequest{CheckIn: &onlyIn, CheckOut: &onlyIn})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
