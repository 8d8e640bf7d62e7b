package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CapturesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeNoteNotFound, "note n-0042 not found")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeNoteNotFound, err.Code)
	assert.Equal(t, "[NOTE_001] note n-0042 not found", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWithDetail_AppendsDetailSegment(t *testing.T) {
	err := New(ErrCodeManifestReadFailed, "failed to read run manifest").
		WithDetail("path=fixtures/runs_LOCAL.json")
	assert.Equal(t, "[MAN_001] failed to read run manifest: path=fixtures/runs_LOCAL.json", err.Error())
}

func TestWithDetail_NilReceiver(t *testing.T) {
	var err *AppError
	assert.Nil(t, err.WithDetail("anything"))
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should vanish"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeGoldMissing, "gold file absent")
	wrapped := Wrap(inner, CodeUnknown, "evaluation aborted")
	assert.Equal(t, ErrCodeGoldMissing, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))

	var ae *AppError
	require.True(t, stderrors.As(wrapped, &ae))
}

func TestWrap_UnwrapChain(t *testing.T) {
	root := fmt.Errorf("disk on fire")
	wrapped := Wrap(root, ErrCodeManifestWriteFailed, "atomic replace failed")
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestIsCode_WalksChain(t *testing.T) {
	inner := New(ErrCodeInvalidSpan, "begin >= end")
	outer := Wrap(inner, ErrCodeInternal, "assembler failed")
	assert.True(t, IsCode(outer, ErrCodeInvalidSpan))
	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.False(t, IsCode(outer, ErrCodeGoldMissing))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeNoteNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeGoldMissing, "x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(New(ErrCodeInternal, "x")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeInvalidProfile, GetCode(New(ErrCodeInvalidProfile, "bad profile")))
}
