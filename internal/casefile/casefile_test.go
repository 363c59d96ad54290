package casefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/types"
)

func TestLoadValidRecord(t *testing.T) {
	rec, err := Load(filepath.Join("testdata", "okafor_v_meridian.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Okafor v. Meridian Logistics Ltd.", rec.Title)
	assert.Equal(t, "Ms. Bello", rec.Petitioner.Counsel)
	assert.Equal(t, 100000.0, rec.Compensation)
	assert.Len(t, rec.Witnesses, 2)
	assert.Len(t, rec.Evidence, 3)
	assert.Equal(t, "pragmatist", rec.JudgeProfile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no_such_case.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func validRecord() *Record {
	return &Record{
		Title:      "A v. B",
		Petitioner: Party{Name: "A"},
		Respondent: Party{Name: "B"},
		Issues:     []string{"liability"},
		Witnesses: []WitnessProfile{
			{ID: "w-1", Name: "W", Side: types.SidePetitioner, Template: TemplateEyewitness},
		},
		Evidence: []EvidenceMeta{
			{ID: "ev-1", Side: types.SidePetitioner, Category: "document", Title: "Exhibit"},
		},
	}
}

func TestValidateAcceptsMinimalRecord(t *testing.T) {
	require.NoError(t, validRecord().Validate())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	rec := validRecord()
	rec.Title = " "
	rec.Issues = nil
	rec.Witnesses = append(rec.Witnesses, WitnessProfile{ID: "w-1", Name: "Dup", Side: "jury"})
	rec.Evidence = append(rec.Evidence, EvidenceMeta{ID: "ev-1", Side: "gallery"})

	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "at least one issue is required")
	assert.Contains(t, err.Error(), `duplicate witness id "w-1"`)
	assert.Contains(t, err.Error(), `invalid side "jury"`)
	assert.Contains(t, err.Error(), `duplicate evidence id "ev-1"`)
}

func TestValidateRequiresWitnesses(t *testing.T) {
	rec := validRecord()
	rec.Witnesses = nil
	err := rec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one witness")
}

func TestWitnessLookups(t *testing.T) {
	rec, err := Load(filepath.Join("testdata", "okafor_v_meridian.yaml"))
	require.NoError(t, err)

	pet := rec.WitnessesFor(types.SidePetitioner)
	require.Len(t, pet, 1)
	assert.Equal(t, "w-foreman", pet[0].ID)

	w, ok := rec.Witness("w-manager")
	require.True(t, ok)
	assert.Equal(t, "Petra Szabo", w.Name)
	assert.Equal(t, TemplateHostileParty, w.Template)

	_, ok = rec.Witness("w-ghost")
	assert.False(t, ok)
}
