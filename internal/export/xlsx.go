package export

import (
	"fmt"
	"io"

	"chemnitz-facilities-api/internal/models"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	kindergartenHeader = []interface{}{
		"id", "OBJECTID", "ID", "X", "Y", "BEZEICHNUNG", "KURZBEZEICHNUNG", "TRAEGER",
		"STRASSE", "HAUSBEZ", "PLZ", "ORT", "KITA", "HORT", "TELEFON", "EMAIL", "BARRIEREFREI", "INTEGRATIV",
	}
	schoolHeader = []interface{}{
		"id", "OBJECTID", "ID", "X", "Y", "TYP", "ART", "BEZEICHNUNG", "KURZBEZEICHNUNG",
		"STRASSE", "PLZ", "ORT", "TELEFON", "FAX", "EMAIL", "WWW", "PROFILE", "TRAEGER", "TRAEGERTYP", "GlobalID",
	}
	socialProjectHeader = []interface{}{
		"id", "OBJECTID", "ID", "X", "Y", "TRAEGER", "LEISTUNGEN", "STRASSE", "PLZ", "ORT", "TELEFON", "FAX",
	}
)

// WriteWorkbook writes one sheet per category, in models.Categories order.
func WriteWorkbook(w io.Writer, byCategory map[models.Category][]models.Facility) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, category := range models.Categories {
		sheet := string(category)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		if err := writeHeader(f, sheet, category); err != nil {
			return err
		}
		for r, facility := range byCategory[category] {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := Row(facility)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
			}
		}
	}

	f.SetActiveSheet(0)
	_, err := f.WriteTo(w)
	return err
}

func writeHeader(f *excelize.File, sheet string, category models.Category) error {
	var header []interface{}
	switch category {
	case models.CategoryKindergarten:
		header = kindergartenHeader
	case models.CategorySchool:
		header = schoolHeader
	default:
		header = socialProjectHeader
	}
	return f.SetSheetRow(sheet, "A1", &header)
}

// Row flattens a facility into the column order of its sheet header.
func Row(facility models.Facility) []interface{} {
	switch v := facility.(type) {
	case *models.KindergartenFacility:
		return []interface{}{
			v.ID, v.ObjectID, v.RecordID, v.X, v.Y, v.Bezeichnung, v.Kurzbezeichnung, v.Traeger,
			v.Strasse, intCell(v.Hausbez), v.PLZ, v.Ort, intCell(v.Kita), intCell(v.Hort), v.Telefon, v.Email,
			intCell(v.Barrierefrei), intCell(v.Integrativ),
		}
	case *models.SchoolFacility:
		globalID := ""
		if v.GlobalID != nil {
			globalID = v.GlobalID.String()
		}
		return []interface{}{
			v.ID, v.ObjectID, v.RecordID, v.X, v.Y, v.Typ, v.Art, v.Bezeichnung, v.Kurzbezeichnung,
			v.Strasse, v.PLZ, v.Ort, v.Telefon, v.Fax, v.Email, v.WWW, v.Profile, v.Traeger,
			intCell(v.Traegertyp), globalID,
		}
	case *models.SocialProjectFacility:
		return []interface{}{
			v.ID, v.ObjectID, v.RecordID, v.X, v.Y, v.Traeger, v.Leistungen, v.Strasse, v.PLZ, v.Ort,
			v.Telefon, v.Fax,
		}
	default:
		return nil
	}
}

func intCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
