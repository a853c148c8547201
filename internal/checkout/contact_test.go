package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactInfo_Validate(t *testing.T) {
	valid := ContactInfo{FirstName: "Jo", LastName: "Masvidal", PhoneNumber: "+359 (88) 813-0130", Address: "Test Address"}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(c *ContactInfo){
		"ShortFirstName": func(c *ContactInfo) { c.FirstName = "J" },
		"LongLastName":   func(c *ContactInfo) { c.LastName = strings.Repeat("x", 31) },
		"ShortPhone":     func(c *ContactInfo) { c.PhoneNumber = "12345" },
		"LetterPhone":    func(c *ContactInfo) { c.PhoneNumber = "Test Phone" },
		"ShortAddress":   func(c *ContactInfo) { c.Address = "Home" },
		"LongAddress":    func(c *ContactInfo) { c.Address = strings.Repeat("a", 71) },
		"BlankFirstName": func(c *ContactInfo) { c.FirstName = "   " },
		"PaddedTooLong":  func(c *ContactInfo) { c.FirstName = strings.Repeat(" ", 10) + strings.Repeat("a", 30) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidContact)
		})
	}
}

func TestContactInfo_Normalize(t *testing.T) {
	padded := ContactInfo{
		FirstName:   strings.Repeat(" ", 10) + strings.Repeat("a", 30),
		LastName:    "  Masvidal\t",
		PhoneNumber: " 0888123456 ",
		Address:     "\n12 Analytical Row  ",
	}

	n := padded.Normalize()

	assert.Equal(t, strings.Repeat("a", 30), n.FirstName)
	assert.Equal(t, "Masvidal", n.LastName)
	assert.Equal(t, "0888123456", n.PhoneNumber)
	assert.Equal(t, "12 Analytical Row", n.Address)
	assert.NoError(t, n.Validate())
	assert.ErrorIs(t, padded.Validate(), ErrInvalidContact)
}

func TestContactInfo_NormalizedFitsColumns(t *testing.T) {
	c := ContactInfo{
		FirstName:   " " + strings.Repeat("b", 31),
		LastName:    "Masvidal",
		PhoneNumber: "0888123456",
		Address:     "Test Address",
	}.Normalize()

	assert.ErrorIs(t, c.Validate(), ErrInvalidContact)
}
