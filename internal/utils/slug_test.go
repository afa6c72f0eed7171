package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "shirt-oxford-classic", Slugify("Shirt", "Oxford Classic"))
	assert.Equal(t, "t-shirt-crew-neck", Slugify("T-Shirt", "Crew Neck"))
	assert.Equal(t, "pant-chino-2024", Slugify("Pant", "Chino 2024"))
	assert.Equal(t, "shirt-weird-spacing", Slugify("Shirt", "  Weird   Spacing "))
}

func TestSlugifyDeterministic(t *testing.T) {
	a := Slugify("Shirt", "Oxford Classic")
	b := Slugify("Shirt", "Oxford Classic")
	assert.Equal(t, a, b)
}
