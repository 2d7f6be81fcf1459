// internal/models/facility.go
package models

// FacilityKind identifies which typed record a stored document projects to.
type FacilityKind string

const (
	KindKindergarten  FacilityKind = "kindergarten"
	KindSchool        FacilityKind = "school"
	KindSocialProject FacilityKind = "social_project"
)

// Category is the collection a facility lives in.
type Category string

const (
	CategoryKindergarten         Category = "kindergarten"
	CategorySchool               Category = "school"
	CategorySocialChildProject   Category = "social_child_project"
	CategorySocialTeenageProject Category = "social_teenage_project"
)

// Categories lists every facility collection in resolution order.
var Categories = []Category{
	CategoryKindergarten,
	CategorySchool,
	CategorySocialChildProject,
	CategorySocialTeenageProject,
}

// Collection returns the name of the backing collection.
func (c Category) Collection() string { return string(c) }

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Facility is implemented by the three typed facility records.
type Facility interface {
	Base() *FacilityBase
}

// FacilityBase holds the fields every facility document shares.
type FacilityBase struct {
	ID       string       `bson:"_id,omitempty" json:"id"`
	Type     FacilityKind `bson:"facility_type,omitempty" json:"facility_type"`
	Category Category     `bson:"category,omitempty" json:"category,omitempty"`
	X        float64      `bson:"X" json:"X"`
	Y        float64      `bson:"Y" json:"Y"`
	ObjectID int          `bson:"OBJECTID" json:"OBJECTID"`
	RecordID int          `bson:"ID" json:"ID"`
}

func (b *FacilityBase) Base() *FacilityBase { return b }

type KindergartenFacility struct {
	FacilityBase    `bson:",inline"`
	Traeger         string `bson:"TRAEGER" json:"TRAEGER"`
	Bezeichnung     string `bson:"BEZEICHNUNG" json:"BEZEICHNUNG"`
	Kurzbezeichnung string `bson:"KURZBEZEICHNUNG" json:"KURZBEZEICHNUNG"`
	Strasse         string `bson:"STRASSE" json:"STRASSE"`
	Strschl         *int   `bson:"STRSCHL" json:"STRSCHL"`
	Hausbez         *int   `bson:"HAUSBEZ" json:"HAUSBEZ"`
	PLZ             int    `bson:"PLZ" json:"PLZ"`
	Ort             string `bson:"ORT" json:"ORT"`
	Hort            *int   `bson:"HORT" json:"HORT"`
	Kita            *int   `bson:"KITA" json:"KITA"`
	Telefon         string `bson:"TELEFON" json:"TELEFON"`
	Email           string `bson:"EMAIL" json:"EMAIL"`
	Barrierefrei    *int   `bson:"BARRIEREFREI" json:"BARRIEREFREI"`
	Integrativ      *int   `bson:"INTEGRATIV" json:"INTEGRATIV"`
}

type SchoolFacility struct {
	FacilityBase     `bson:",inline"`
	Typ              int       `bson:"TYP" json:"TYP"`
	Art              string    `bson:"ART" json:"ART"`
	Standorttyp      *int      `bson:"STANDORTTYP" json:"STANDORTTYP"`
	Bezeichnung      string    `bson:"BEZEICHNUNG" json:"BEZEICHNUNG"`
	Kurzbezeichnung  string    `bson:"KURZBEZEICHNUNG" json:"KURZBEZEICHNUNG"`
	Strasse          string    `bson:"STRASSE" json:"STRASSE"`
	PLZ              int       `bson:"PLZ" json:"PLZ"`
	Ort              string    `bson:"ORT" json:"ORT"`
	Telefon          string    `bson:"TELEFON" json:"TELEFON"`
	Fax              string    `bson:"FAX" json:"FAX"`
	Email            string    `bson:"EMAIL" json:"EMAIL"`
	Profile          string    `bson:"PROFILE" json:"PROFILE"`
	WWW              string    `bson:"WWW" json:"WWW"`
	Traeger          string    `bson:"TRAEGER" json:"TRAEGER"`
	Traegertyp       *int      `bson:"TRAEGERTYP" json:"TRAEGERTYP"`
	Bezugnr          *int      `bson:"BEZUGNR" json:"BEZUGNR"`
	Gebietsartnummer *int      `bson:"GEBIETSARTNUMMER" json:"GEBIETSARTNUMMER"`
	SNummer          *int      `bson:"SNUMMER" json:"SNUMMER"`
	Nummer           *int      `bson:"NUMMER" json:"NUMMER"`
	GlobalID         *GlobalID `bson:"GlobalID" json:"GlobalID"`
}

// SocialProjectFacility backs both the child and the teenage project collections.
type SocialProjectFacility struct {
	FacilityBase `bson:",inline"`
	Traeger      string `bson:"TRAEGER" json:"TRAEGER"`
	Leistungen   string `bson:"LEISTUNGEN" json:"LEISTUNGEN"`
	Strasse      string `bson:"STRASSE" json:"STRASSE"`
	PLZ          int    `bson:"PLZ" json:"PLZ"`
	Ort          string `bson:"ORT" json:"ORT"`
	Telefon      string `bson:"TELEFON" json:"TELEFON"`
	Fax          string `bson:"FAX" json:"FAX"`
}
