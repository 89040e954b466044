package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional tracks whether a JSON field was present and whether it was an
// explicit null, which a plain pointer cannot tell apart.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// ProductPatch is a partial update. Only fields present in the request
// body are applied; description may be cleared with null.
type ProductPatch struct {
	Name        Optional[string]  `json:"name"`
	Amount      Optional[int]     `json:"amount"`
	Price       Optional[float64] `json:"price"`
	Description Optional[string]  `json:"description"`
	Favorite    Optional[bool]    `json:"favorite"`
}

// Validate reports field errors keyed by JSON name.
func (p ProductPatch) Validate() map[string]string {
	errs := map[string]string{}
	nullable := func(field string, set, null bool) {
		if set && null {
			errs[field] = fmt.Sprintf("The %s field may not be null.", field)
		}
	}
	nullable("name", p.Name.Set, p.Name.Null)
	nullable("amount", p.Amount.Set, p.Amount.Null)
	nullable("price", p.Price.Set, p.Price.Null)
	nullable("favorite", p.Favorite.Set, p.Favorite.Null)

	if p.Name.Set && !p.Name.Null {
		if p.Name.Value == "" {
			errs["name"] = "The name field is required."
		}
	}
	return errs
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Amount.Set && !p.Price.Set && !p.Description.Set && !p.Favorite.Set
}

// Apply copies every present field onto dst.
func (p ProductPatch) Apply(dst *Product) {
	if p.Name.Set {
		dst.Name = p.Name.Value
	}
	if p.Amount.Set {
		dst.Amount = p.Amount.Value
	}
	if p.Price.Set {
		dst.Price = p.Price.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			dst.Description = nil
		} else {
			d := p.Description.Value
			dst.Description = &d
		}
	}
	if p.Favorite.Set {
		dst.Favorite = p.Favorite.Value
	}
}
