package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is a read-only assessor record that stars point at.
type Property struct {
	ID        uuid.UUID       `json:"propertyId"`
	Address   string          `json:"propertyAddress"`
	City      string          `json:"propertyCity"`
	Zip       string          `json:"propertyZip"`
	Latitude  decimal.Decimal `json:"propertyLat"`
	Longitude decimal.Decimal `json:"propertyLong"`
	Value     decimal.Decimal `json:"propertyValue"`
}
