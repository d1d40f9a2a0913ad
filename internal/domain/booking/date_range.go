package booking

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/staynest/service-booking/pkg/domain"
)

// DateLayout is the wire and storage format of every calendar date in this service.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, domain.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// RangesOverlap reports whether the half-open stays [candidateStart, candidateEnd) and
// [existingStart, existingEnd) share at least one night. A stay that starts on another's checkout
// day does not overlap it, nor does one that ends on another's check-in day.
//
// Both ranges must satisfy start < end; the result is undefined otherwise.
func RangesOverlap(candidateStart, candidateEnd, existingStart, existingEnd civil.Date) bool {
	return candidateStart.Before(existingEnd) && candidateEnd.After(existingStart)
}

// DateRange is a stay from CheckIn (inclusive) to CheckOut (exclusive).
type DateRange struct {
	CheckIn  civil.Date `json:"check_in_date"`
	CheckOut civil.Date `json:"check_out_date"`
}

// NewDateRange validates both dates and requires CheckOut to be strictly after CheckIn.
func NewDateRange(checkIn, checkOut civil.Date) (DateRange, error) {
	if !checkIn.IsValid() {
		return DateRange{}, domain.NewValidationError("check-in date is required")
	}
	if !checkOut.IsValid() {
		return DateRange{}, domain.NewValidationError("check-out date is required")
	}
	if !checkOut.After(checkIn) {
		return DateRange{}, domain.NewValidationError("check-out date must be after check-in date")
	}
	return DateRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a validated DateRange.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(in, out)
}

// Nights returns the number of nights in the stay.
func (r DateRange) Nights() int {
	return r.CheckOut.DaysSince(r.CheckIn)
}

// Overlaps reports whether r and other share a night.
func (r DateRange) Overlaps(other DateRange) bool {
	return RangesOverlap(r.CheckIn, r.CheckOut, other.CheckIn, other.CheckOut)
}

// Contains reports whether d is one of the stay's nights.
func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Days lists every night of the stay: CheckIn through the day before CheckOut.
func (r DateRange) Days() []civil.Date {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	days := make([]civil.Date, 0, n)
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return r.CheckIn.String() + "/" + r.CheckOut.String()
}

// BlockedDates returns the union of nights across bookings, sorted ascending. Checkout days are
// never blocked so a new guest can arrive the day another leaves. Callers pass accepted bookings;
// the status is not checked here.
func BlockedDates(bookings []*Booking) []civil.Date {
	seen := make(map[civil.Date]struct{})
	for _, b := range bookings {
		for _, d := range b.Stay().Days() {
			seen[d] = struct{}{}
		}
	}

	dates := make([]civil.Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
