package export

import (
	"bytes"
	"testing"

	"chemnitz-facilities-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func intPtr(v int) *int { return &v }

func TestWriteWorkbook(t *testing.T) {
	kita := &models.KindergartenFacility{Bezeichnung: "Kita Sonnenschein", Kita: intPtr(1)}
	kita.ID = "K1"
	school := &models.SchoolFacility{Typ: 1, Art: "Grundschule", PLZ: 9112}
	school.ID = "S1"
	project := &models.SocialProjectFacility{Leistungen: "Streetwork"}
	project.ID = "T1"

	var buf bytes.Buffer
	err := WriteWorkbook(&buf, map[models.Category][]models.Facility{
		models.CategoryKindergarten:         {kita},
		models.CategorySchool:               {school},
		models.CategorySocialTeenageProject: {project},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"kindergarten", "school", "social_child_project", "social_teenage_project"}, f.GetSheetList())

	rows, err := f.GetRows("school")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "ART", rows[0][6])
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "Grundschule", rows[1][6])

	rows, err = f.GetRows("kindergarten")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kita Sonnenschein", rows[1][5])
	assert.Equal(t, "1", rows[1][12])

	rows, err = f.GetRows("social_child_project")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "empty categories still get a header")
}

func TestRow_MatchesHeaderWidth(t *testing.T) {
	assert.Len(t, Row(&models.KindergartenFacility{}), len(kindergartenHeader))
	assert.Len(t, Row(&models.SchoolFacility{}), len(schoolHeader))
	assert.Len(t, Row(&models.SocialProjectFacility{}), len(socialProjectHeader))
}
