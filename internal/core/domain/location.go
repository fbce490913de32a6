package domain

import "github.com/shopspring/decimal"

// MinLocationID is the smallest identifier the store ever assigns.
const MinLocationID int64 = 1

// Location is a named physical place on campus.
type Location struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	Longitude decimal.Decimal `json:"longitude"`
	Latitude  decimal.Decimal `json:"latitude"`
}

// GetID returns the store-assigned identifier.
func (l *Location) GetID() int64 { return l.ID }

// SetID records the identifier assigned by the store on creation.
func (l *Location) SetID(id int64) { l.ID = id }

// ValidID reports whether id can refer to a stored location.
func ValidID(id int64) bool { return id >= MinLocationID }
