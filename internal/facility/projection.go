package facility

import (
	"errors"
	"fmt"

	"chemnitz-facilities-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrUnrecognizedFacilityType = errors.New("unrecognized facility type")

// kindRules is evaluated in order; the first rule with any of its fields
// present decides the kind, whatever later rules would say.
var kindRules = []struct {
	kind   models.FacilityKind
	fields []string
}{
	{models.KindKindergarten, []string{"KITA", "HORT"}},
	{models.KindSchool, []string{"TYP", "ART"}},
	{models.KindSocialProject, []string{"LEISTUNGEN"}},
}

// Classify decides which typed record doc projects to, based only on which
// fields are present. A present field with a null value still counts.
func Classify(doc bson.M) (models.FacilityKind, error) {
	for _, rule := range kindRules {
		for _, field := range rule.fields {
			if _, ok := doc[field]; ok {
				return rule.kind, nil
			}
		}
	}
	return "", ErrUnrecognizedFacilityType
}

// Project converts a raw stored document into its typed facility record.
func Project(doc bson.M) (models.Facility, error) {
	kind, err := Classify(doc)
	if err != nil {
		return nil, err
	}
	return decodeAs(kind, doc)
}

// DecodeSnapshot decodes a facility snapshot embedded in a user document.
// Snapshots carry their facility_type; older untagged ones are classified.
func DecodeSnapshot(doc bson.M) (models.Facility, error) {
	if tag, ok := doc["facility_type"].(string); ok && tag != "" {
		return decodeAs(models.FacilityKind(tag), doc)
	}
	return Project(doc)
}

func newRecord(kind models.FacilityKind) (models.Facility, error) {
	switch kind {
	case models.KindKindergarten:
		return &models.KindergartenFacility{}, nil
	case models.KindSchool:
		return &models.SchoolFacility{}, nil
	case models.KindSocialProject:
		return &models.SocialProjectFacility{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedFacilityType, kind)
	}
}

func decodeAs(kind models.FacilityKind, doc bson.M) (models.Facility, error) {
	record, err := newRecord(kind)
	if err != nil {
		return nil, err
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", kind, err)
	}
	if err := bson.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", kind, err)
	}
	record.Base().Type = kind
	return record, nil
}
