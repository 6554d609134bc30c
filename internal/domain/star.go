package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Star records that a user starred a property. The (PropertyID, UserID) pair
// is the primary key; uniqueness is left to storage.
type Star struct {
	propertyID uuid.UUID
	userID     uuid.UUID
	date       time.Time
}

// NewStar validates both identifiers. A nil date means now.
func NewStar(propertyID, userID any, date any) (*Star, error) {
	pid, err := identifierField("starPropertyId", propertyID)
	if err != nil {
		return nil, err
	}
	uid, err := identifierField("starUserId", userID)
	if err != nil {
		return nil, err
	}

	s := &Star{propertyID: pid, userID: uid}
	if err := s.setDate(date); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Star) PropertyID() uuid.UUID { return s.propertyID }
func (s *Star) UserID() uuid.UUID     { return s.userID }
func (s *Star) Date() time.Time       { return s.date }

func (s *Star) setDate(v any) error {
	if v == nil {
		s.date = time.Now()
		return nil
	}
	if p, ok := v.(*time.Time); ok && p == nil {
		s.date = time.Now()
		return nil
	}
	t, err := ParseDateTime(v)
	if err != nil {
		return invalidField("starDate", "is not a valid date", err)
	}
	s.date = t
	return nil
}

func (s *Star) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StarPropertyID string    `json:"starPropertyId"`
		StarUserID     string    `json:"starUserId"`
		StarDate       time.Time `json:"starDate"`
	}{
		StarPropertyID: s.propertyID.String(),
		StarUserID:     s.userID.String(),
		StarDate:       s.date,
	})
}
