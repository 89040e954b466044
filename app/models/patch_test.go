package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchOnlyTouchesPresentFields(t *testing.T) {
	desc := "red"
	p := Product{ID: 4, Name: "Widget", Amount: 3, Price: 1.5, Description: &desc, Favorite: true}

	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price": 2.25}`), &patch))
	assert.Empty(t, patch.Validate())
	patch.Apply(&p)

	assert.Equal(t, Product{ID: 4, Name: "Widget", Amount: 3, Price: 2.25, Description: &desc, Favorite: true}, p)
}

func TestPatchNullDescriptionClears(t *testing.T) {
	desc := "red"
	p := Product{Name: "Widget", Description: &desc}

	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "amount": 0}`), &patch))
	assert.True(t, patch.Description.Null)
	assert.Empty(t, patch.Validate())

	patch.Apply(&p)
	assert.Nil(t, p.Description)
	assert.Zero(t, p.Amount)
	assert.Equal(t, "Widget", p.Name)
}

func TestPatchValidate(t *testing.T) {
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "", "price": null, "favorite": null}`), &patch))

	errs := patch.Validate()
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The price field may not be null.", errs["price"])
	assert.Equal(t, "The favorite field may not be null.", errs["favorite"])
	assert.NotContains(t, errs, "amount")
}

func TestPatchAcceptsLongName(t *testing.T) {
	long := strings.Repeat("n", 1000)
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "`+long+`"}`), &patch))
	assert.Empty(t, patch.Validate())
}

func TestPatchIsEmpty(t *testing.T) {
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"unknown": 1}`), &patch))
	assert.True(t, patch.IsEmpty())

	patch.Favorite = Some(true)
	assert.False(t, patch.IsEmpty())
}

func TestProductInputToProduct(t *testing.T) {
	amount, price := -2, 0.0
	p := ProductInput{Name: "Gizmo", Amount: &amount, Price: &price}.ToProduct()

	assert.Equal(t, Product{Name: "Gizmo", Amount: -2}, p)
	assert.False(t, p.Favorite)
}
