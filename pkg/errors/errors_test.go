package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSMILES, "bad smiles")
	assert.Equal(t, ErrCodeInvalidSMILES, err.Code)
	assert.Equal(t, "[CHEM_001] bad smiles", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWithDetail(t *testing.T) {
	base := New(ErrCodeDatasetRowInvalid, "malformed row")
	detailed := base.WithDetail("row=7")

	assert.Equal(t, "[DS_002] malformed row: row=7", detailed.Error())
	// The original must not be mutated.
	assert.Empty(t, base.Detail)

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("read: unexpected EOF")
	err := Wrap(cause, ErrCodeDatasetReadFailed, "failed to read dataset")

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatasetReadFailed, err.Code)
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrap_NilErr(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeCutoffInvalid, "cutoff out of range")
	outer := Wrap(inner, CodeUnknown, "clustering failed")
	assert.Equal(t, ErrCodeCutoffInvalid, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeFingerprintFailed, "hash failure")
	outer := Wrap(inner, ErrCodeClusteringFailed, "pipeline failed")

	assert.True(t, IsCode(outer, ErrCodeClusteringFailed))
	assert.True(t, IsCode(outer, ErrCodeFingerprintFailed))
	assert.False(t, IsCode(outer, ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.True(t, IsNotFound(New(ErrCodeMoleculeNotFound, "no molecule")))
	assert.True(t, IsNotFound(Wrap(NotFound("missing"), ErrCodeInternal, "lookup failed")))
	assert.False(t, IsNotFound(New(ErrCodeInternal, "boom")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeValidation, GetCode(New(ErrCodeValidation, "bad")))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ErrCodeInvalidSMILES.HTTPStatus())
	assert.Equal(t, 404, ErrCodeMoleculeNotFound.HTTPStatus())
	assert.Equal(t, 500, ErrorCode("nope").HTTPStatus())
}
