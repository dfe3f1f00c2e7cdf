package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilderDefaults(t *testing.T) {
	t.Parallel()

	ee := Newf("something failed").Build()

	assert.Equal(t, "something failed", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestErrorBuilderContext(t *testing.T) {
	t.Parallel()

	ee := Newf("read failed").
		Component("datastore").
		Category(CategoryFileIO).
		FileContext("/tmp/batch.json").
		Context("attempt", 2).
		Build()

	assert.Equal(t, "datastore", ee.Component)
	assert.Equal(t, CategoryFileIO, ee.Category)

	ctx := ee.GetContext()
	assert.Equal(t, "/tmp/batch.json", ctx["file"])
	assert.Equal(t, 2, ctx["attempt"])

	// The copy must not alias the error's own map.
	ctx["file"] = "mutated"
	assert.Equal(t, "/tmp/batch.json", ee.GetContext()["file"])
}

func TestWrapPreservesChain(t *testing.T) {
	t.Parallel()

	base := NewStd("disk full")
	wrapped := Wrap(fmt.Errorf("writing export: %w", base)).
		Category(CategoryExport).
		Build()

	assert.True(t, Is(wrapped, base))

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryExport, ee.Category)
}

func TestCategoryPredicates(t *testing.T) {
	t.Parallel()

	verr := ValidationError("species name must not be empty")
	assert.True(t, IsValidation(verr))
	assert.False(t, IsTimeout(verr))

	terr := Newf("deadline exceeded").Category(CategoryTimeout).Build()
	assert.True(t, IsTimeout(terr))
	assert.True(t, IsCategory(terr, CategoryTimeout))
	assert.False(t, IsCategory(terr, CategoryValidation))

	assert.False(t, IsValidation(NewStd("plain")))
	assert.False(t, IsValidation(nil))
}

func TestValidationErrorFormats(t *testing.T) {
	t.Parallel()

	err := ValidationError("count %q is not a positive integer", "abc")
	assert.Equal(t, `count "abc" is not a positive integer`, err.Error())
	assert.Equal(t, CategoryValidation, err.Category)
}
