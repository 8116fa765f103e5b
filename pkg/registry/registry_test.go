package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/pkg/activitykind"
)

type stubKind struct {
	activitykind.Base
	valid bool
}

func (s *stubKind) Schema() map[string]any { return stubSchema }

func (s *stubKind) ValidateConfig(config map[string]any) bool { return s.valid }

func (s *stubKind) ProcessResponse(participantID string, payload map[string]any) (map[string]any, error) {
	return map[string]any{"participant_id": participantID}, nil
}

var stubSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
	},
	"required":             []any{"title"},
	"additionalProperties": false,
}

func stubConstructor(valid bool) activitykind.Constructor {
	return func(activityID string, config map[string]any) activitykind.ActivityKind {
		return &stubKind{
			Base:  activitykind.Base{ActivityID: activityID, Config: config},
			valid: valid,
		}
	}
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("stub", stubConstructor(true), stubSchema, "Stub", "A stub kind", "2.1.0"))

	assert.True(t, reg.IsRegistered("stub"))
	assert.False(t, reg.IsRegistered("other"))

	metadata, err := reg.Metadata("stub")
	require.NoError(t, err)
	assert.Equal(t, "Stub", metadata.Name)
	assert.Equal(t, "2.1.0", metadata.Version)

	schema, err := reg.Schema("stub")
	require.NoError(t, err)
	assert.Equal(t, stubSchema, schema)

	instance, err := reg.Create("stub", "activity-1", map[string]any{"title": "hello"})
	require.NoError(t, err)
	doc, err := instance.ProcessResponse("participant-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "participant-1", doc["participant_id"])
}

func TestRegisterDuplicate(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("stub", stubConstructor(true), stubSchema, "", "", ""))

	err := reg.Register("stub", stubConstructor(true), stubSchema, "", "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateKind))
}

func TestRegisterInvalidKind(t *testing.T) {
	reg := New()

	err := reg.Register("stub", nil, stubSchema, "", "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidKind))

	nilConstructor := func(activityID string, config map[string]any) activitykind.ActivityKind {
		return nil
	}
	err = reg.Register("stub", nilConstructor, stubSchema, "", "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidKind))

	badSchema := map[string]any{"type": 42}
	err = reg.Register("stub", stubConstructor(true), badSchema, "", "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidKind))
}

func TestRegisterDefaultsMetadata(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("stub", stubConstructor(true), stubSchema, "", "", ""))

	metadata, err := reg.Metadata("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", metadata.Name)
	assert.Equal(t, "1.0.0", metadata.Version)
	assert.NotEmpty(t, metadata.Description)
}

func TestUnknownKindLookups(t *testing.T) {
	reg := New()

	_, err := reg.Schema("missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownKind))

	_, err = reg.Metadata("missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownKind))

	_, err = reg.Create("missing", "activity-1", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownKind))

	_, err = reg.ValidateConfig("missing", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownKind))
}

func TestListSortedByID(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("zeta", stubConstructor(true), stubSchema, "", "", ""))
	require.NoError(t, reg.Register("alpha", stubConstructor(true), stubSchema, "", "", ""))

	listed := reg.List()
	require.Len(t, listed, 2)
	assert.Equal(t, "alpha", listed[0].ID)
	assert.Equal(t, "zeta", listed[1].ID)
}

func TestValidateConfig(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("stub", stubConstructor(true), stubSchema, "", "", ""))

	result, err := reg.ValidateConfig("stub", map[string]any{"title": "ok"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// Schema violation reported without invoking the kind.
	result, err = reg.ValidateConfig("stub", map[string]any{"unexpected": true})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateConfigKindVeto(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("picky", stubConstructor(false), stubSchema, "", "", ""))

	result, err := reg.ValidateConfig("picky", map[string]any{"title": "ok"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "kind-specific")
}
