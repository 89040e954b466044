package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapFilter(t *testing.T) {
	in := []int{1, 2, 3, 4}
	assert.Equal(t, []int{2, 4, 6, 8}, Map(in, func(v int) int { return v * 2 }))

	even := func(v int) bool { return v%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter(in, even))
	assert.Nil(t, Filter(in, func(int) bool { return false }))
}

func TestFirstKeepsOrder(t *testing.T) {
	v, ok := First([]string{"widget pro", "widget"}, func(s string) bool { return len(s) > 3 })
	assert.True(t, ok)
	assert.Equal(t, "widget pro", v)

	_, ok = First([]string{}, func(string) bool { return true })
	assert.False(t, ok)
}
