package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"whisprdraw-backend/internal/models"
)

const projectRow = `{"id":"6f1c2b9e-8d7a-4a3b-9c1d-2e3f4a5b6c7d","user_id":"u1","name":"Flow","description":null,` +
	`"snapshot":{"shapes":[1,2]},"icon_url":null,"created_at":"2025-01-02T10:00:00.123456+00:00",` +
	`"updated_at":"2025-01-03T10:00:00+00:00"}`

func TestDecodeProjects(t *testing.T) {
	projects, err := models.DecodeProjects([]byte("[" + projectRow + "]"))
	require.NoError(t, err)
	require.Len(t, projects, 1)

	p := projects[0]
	assert.Equal(t, "u1", p.UserID)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Flow", *p.Name)
	assert.Nil(t, p.Description)
	assert.False(t, p.HasIcon())
	assert.JSONEq(t, `{"shapes":[1,2]}`, string(p.Snapshot))
}

func TestDecodeProjects_RejectsUnknownColumn(t *testing.T) {
	row := `[{"id":"p1","user_id":"u1","created_at":"2025-01-02T10:00:00Z","updated_at":"2025-01-02T10:00:00Z","extra":1}]`
	_, err := models.DecodeProjects([]byte(row))
	assert.Error(t, err)
}

func TestDecodeProjects_RejectsMissingRequired(t *testing.T) {
	row := `[{"id":"p1","created_at":"2025-01-02T10:00:00Z","updated_at":"2025-01-02T10:00:00Z"}]`
	_, err := models.DecodeProjects([]byte(row))
	assert.ErrorContains(t, err, "missing user_id")
}

func TestDecodeImagePairs(t *testing.T) {
	row := `[{"id":"i1","project_id":"p1","input_url":"https://x/in.png","input_mime_type":"image/png",` +
		`"input_width":10,"input_height":20,"output_url":null,"output_mime_type":null,"output_width":null,` +
		`"output_height":null,"prompt_text":"a cat","metadata":{"description":"cats"},` +
		`"created_at":"2025-01-02T10:00:00Z","updated_at":"2025-01-02T10:00:00Z"}]`

	pairs, err := models.DecodeImagePairs([]byte(row))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 10, *pairs[0].InputWidth)
	assert.Nil(t, pairs[0].OutputURL)
	assert.Equal(t, "cats", pairs[0].Description())

	_, err = models.DecodeImagePairs([]byte(`[{"id":"i1","project_id":"p1"}]`))
	assert.ErrorContains(t, err, "missing input_url")
}

func TestUpdateProjectRequest_Fields(t *testing.T) {
	var empty models.UpdateProjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty.Fields())

	var nullSnapshot models.UpdateProjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"snapshot":null}`), &nullSnapshot))
	assert.Empty(t, nullSnapshot.Fields())

	var partial models.UpdateProjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"New","icon_url":"https://x/icon.png"}`), &partial))
	fields := partial.Fields()
	assert.Equal(t, "New", fields["name"])
	assert.Equal(t, "https://x/icon.png", fields["icon_url"])
	assert.NotContains(t, fields, "description")
}
