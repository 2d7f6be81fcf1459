package models

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// GlobalID is the school register's globally unique identifier.
// Source datasets carry it either as text or as a BSON UUID; it is always
// written back as binary subtype 4 and rendered as canonical text in JSON.
type GlobalID uuid.UUID

// ParseGlobalID accepts the textual forms understood by uuid.Parse,
// including the braced form used by the city's GIS exports.
func ParseGlobalID(s string) (GlobalID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GlobalID{}, fmt.Errorf("parse GlobalID %q: %w", s, err)
	}
	return GlobalID(u), nil
}

func (g GlobalID) String() string { return uuid.UUID(g).String() }

func (g GlobalID) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GlobalID) UnmarshalText(data []byte) error {
	parsed, err := ParseGlobalID(string(data))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g GlobalID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bsontype.Binary, bsoncore.AppendBinary(nil, bsontype.BinaryUUID, g[:]), nil
}

func (g *GlobalID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("GlobalID: malformed string value")
		}
		return g.UnmarshalText([]byte(s))
	case bsontype.Binary:
		subtype, bin, _, ok := bsoncore.ReadBinary(data)
		if !ok {
			return fmt.Errorf("GlobalID: malformed binary value")
		}
		if subtype != bsontype.BinaryUUID && subtype != bsontype.BinaryUUIDOld {
			return fmt.Errorf("GlobalID: unexpected binary subtype %#x", subtype)
		}
		u, err := uuid.FromBytes(bin)
		if err != nil {
			return fmt.Errorf("GlobalID: %w", err)
		}
		*g = GlobalID(u)
		return nil
	case bsontype.Null, bsontype.Undefined:
		*g = GlobalID{}
		return nil
	default:
		return fmt.Errorf("GlobalID: cannot decode BSON %s", t)
	}
}
