package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapIO(t *testing.T) {
	err := WrapIO(fs.ErrPermission, "failed to create R.java")

	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.True(t, Is(err, fs.ErrPermission), "cause must stay reachable")
	assert.Contains(t, err.Error(), "failed to create R.java")
	assert.False(t, IsAttrLookupError(err))
}

func TestWrapIOf(t *testing.T) {
	err := WrapIOf(fs.ErrExist, "rename %s", "R.class")

	assert.True(t, IsIOError(err))
	assert.Contains(t, err.Error(), "rename R.class")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, WrapIO(nil, "context"))
	assert.Nil(t, WrapIOf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsIOError(nil))
	assert.False(t, IsConflictError(nil))
	assert.False(t, IsAttrLookupError(nil))
	assert.False(t, IsInvalidDeclarationError(nil))
}

func TestNewAttrLookupError(t *testing.T) {
	err := NewAttrLookupError("MyView", "customFlag")

	assert.True(t, IsAttrLookupError(err))
	assert.Contains(t, err.Error(), "customFlag")
	assert.Contains(t, err.Error(), "MyView")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "customFlag")
}

func TestWrapAttrLookup(t *testing.T) {
	cause := New("android.jar: unexpected EOF")
	err := WrapAttrLookup(cause, "MyView", "textColor")

	assert.True(t, IsAttrLookupError(err))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "textColor")
}

func TestMarkedKindsSurviveFurtherWrapping(t *testing.T) {
	err := Mark(New("foo pinned twice"), ErrConflictingDeclaration)
	err = Wrap(err, "build failed")
	err = WrapIO(err, "flush")

	assert.True(t, IsConflictError(err))
	assert.True(t, IsIOError(err))
	assert.False(t, IsInvalidDeclarationError(err))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func ExampleWrapIO() {
	err := WrapIO(New("disk full"), "failed to write R.class")
	fmt.Println(err, IsIOError(err))
	// Output: failed to write R.class: disk full true
}
