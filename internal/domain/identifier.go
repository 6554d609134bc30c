package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// textLen is the length of the canonical hyphenated form. Braced, urn:uuid:
// and bare hex spellings are rejected.
const textLen = 36

// ParseIdentifier normalizes a UUID given as a uuid.UUID, a string, or a byte
// slice. A 16 byte slice is read as the raw binary form; any other slice must
// hold the canonical text form.
func ParseIdentifier(v any) (uuid.UUID, error) {
	var (
		id  uuid.UUID
		err error
	)

	switch x := v.(type) {
	case uuid.UUID:
		id = x
	case *uuid.UUID:
		if x == nil {
			return uuid.Nil, fmt.Errorf("ParseIdentifier: nil pointer: %w", ErrInvalidIdentifier)
		}
		id = *x
	case string:
		if x == "" {
			return uuid.Nil, fmt.Errorf("ParseIdentifier: empty: %w", ErrInvalidIdentifier)
		}
		if len(x) != textLen {
			return uuid.Nil, fmt.Errorf("ParseIdentifier: length %d: %w", len(x), ErrInvalidIdentifier)
		}
		id, err = uuid.Parse(x)
	case []byte:
		switch len(x) {
		case 0:
			return uuid.Nil, fmt.Errorf("ParseIdentifier: empty: %w", ErrInvalidIdentifier)
		case 16:
			id, err = uuid.FromBytes(x)
		case textLen:
			id, err = uuid.ParseBytes(x)
		default:
			return uuid.Nil, fmt.Errorf("ParseIdentifier: length %d: %w", len(x), ErrInvalidIdentifier)
		}
	default:
		return uuid.Nil, fmt.Errorf("ParseIdentifier: %T: %w", v, ErrMalformedType)
	}

	if err != nil {
		return uuid.Nil, fmt.Errorf("ParseIdentifier: %v: %w", err, ErrInvalidIdentifier)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("ParseIdentifier: nil uuid: %w", ErrInvalidIdentifier)
	}
	return id, nil
}

func identifierField(field string, v any) (uuid.UUID, error) {
	id, err := ParseIdentifier(v)
	if err != nil {
		return uuid.Nil, invalidField(field, "is not a valid identifier", err)
	}
	return id, nil
}
