package model

// Kind identifies an entity collection persisted by the store. The string
// value doubles as the storage-key segment and the event-name prefix.
type Kind string

const (
	KindActivities Kind = "activities"
	KindBookings   Kind = "bookings"
	KindVouchers   Kind = "vouchers"
	KindGiftCards  Kind = "giftcards"
	KindPromoCodes Kind = "promocodes"
)

// EventName is the sole vocabulary bus consumers subscribe to,
// e.g. "activities-updated".
func (k Kind) EventName() string {
	return string(k) + "-updated"
}

func (k Kind) Valid() bool {
	switch k {
	case KindActivities, KindBookings, KindVouchers, KindGiftCards, KindPromoCodes:
		return true
	}
	return false
}
