package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot/backend/internal/models"
)

const validIntel = `{
	"role_name": "Backend Engineer",
	"job_description_summary": "Build APIs.",
	"required_experience": "3+ years of Go",
	"desirable_experience": null,
	"hard_skills": ["Go", "PostgreSQL"],
	"soft_skills": ["Ownership"],
	"cultural_values": ["Candor"],
	"mission_critical": "Keep the payments API fast."
}`

func TestValidate_JobIntelligence(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{name: "valid", payload: validIntel},
		{
			name:    "missing required list",
			payload: `{"role_name":"x","job_description_summary":"x","required_experience":"x","soft_skills":[],"cultural_values":[],"mission_critical":"x"}`,
			wantErr: "hard_skills",
		},
		{
			name:    "wrong type",
			payload: `{"role_name":"x","job_description_summary":"x","required_experience":"x","hard_skills":"Go","soft_skills":[],"cultural_values":[],"mission_critical":"x"}`,
			wantErr: "hard_skills",
		},
		{
			name:    "not json",
			payload: `role_name: x`,
			wantErr: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(JobIntelligence, []byte(tt.payload))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, JobIntelligence, ve.Schema)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_TailoringStrategyScoreBounds(t *testing.T) {
	build := func(score string) []byte {
		return []byte(`{
			"match_score": ` + score + `,
			"gap_analysis": {"missing_skills": [], "matching_skills": ["Go"]},
			"tailoring_instructions": ["Lead with Go"],
			"suggested_summary": "Go engineer. Ships things."
		}`)
	}

	for _, score := range []string{"0", "55", "100"} {
		assert.NoError(t, Validate(TailoringStrategy, build(score)), score)
	}
	for _, score := range []string{"-1", "101", "150", "72.5", `"80"`} {
		err := Validate(TailoringStrategy, build(score))
		require.Error(t, err, score)
		assert.Contains(t, err.Error(), "match_score")
	}
}

func TestValidate_TailoringStrategyGapKeys(t *testing.T) {
	payload := []byte(`{
		"match_score": 40,
		"gap_analysis": {"missing": ["Kafka"], "matching": []},
		"tailoring_instructions": [],
		"suggested_summary": "x"
	}`)

	err := Validate(TailoringStrategy, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_skills")
	assert.Contains(t, err.Error(), "matching_skills")
}

func TestDecode_MasterResume(t *testing.T) {
	payload := []byte(`{
		"full_name": "Ada Lovelace",
		"summary": "Engineer",
		"links": [{"label": "GitHub", "url": "https://github.com/ada"}],
		"skills": ["Go"],
		"experience": [{"company": "Acme", "role": "SWE", "duration": "2020-2024", "description": ["Built it"]}],
		"education": [{"institution": "MIT", "degree": "BS", "major": "CS", "graduation_year": "Expected 2025"}],
		"projects": [{"name": "pilot", "link": null, "description": ["CLI"]}]
	}`)

	var resume models.MasterResume
	require.NoError(t, Decode(MasterResume, payload, &resume))
	assert.Equal(t, "Ada Lovelace", resume.FullName)
	assert.Equal(t, "Expected 2025", resume.Education[0].GraduationYear)
	assert.Nil(t, resume.Projects[0].Link)

	err := Decode(MasterResume, []byte(`{"summary": "no name"}`), &resume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full_name")
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate(Name("cover_letter"), []byte(`{}`))
	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}
