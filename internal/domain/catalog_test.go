package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, DefaultModel, c.DefaultModel())
	assert.Equal(t, DefaultTargetLanguage, c.DefaultLanguage())
	assert.Equal(t, "Russian", c.Languages()[0])
	assert.Len(t, c.Languages(), len(c.MainLanguages())+len(c.AdditionalLanguages()))
	assert.True(t, c.HasLanguage("Vietnamese"))
	assert.False(t, c.HasLanguage("Klingon"))
}

func TestNewCatalog_DefaultsFallBackToFirst(t *testing.T) {
	c := NewCatalog([]string{"m1", "m2"}, []string{"German"}, nil, "", "")
	assert.Equal(t, "m1", c.DefaultModel())
	assert.Equal(t, "German", c.DefaultLanguage())
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	c := NewCatalog([]string{"m1", "m2"}, []string{"German"}, []string{"French"}, "m1", "German")
	models := c.Models()
	models[0] = "changed"
	langs := c.Languages()
	langs[0] = "changed"

	assert.Equal(t, []string{"m1", "m2"}, c.Models())
	assert.Equal(t, []string{"German", "French"}, c.Languages())
}

func TestCatalog_Next(t *testing.T) {
	c := NewCatalog([]string{"m1", "m2"}, []string{"German"}, []string{"French"}, "", "")
	assert.Equal(t, "m2", c.NextModel("m1"))
	assert.Equal(t, "m1", c.NextModel("m2"))
	assert.Equal(t, "m1", c.NextModel("unknown"))
	assert.Equal(t, "French", c.NextLanguage("German"))
	assert.Equal(t, "German", c.NextLanguage("French"))

	empty := NewCatalog(nil, nil, nil, "", "")
	assert.Equal(t, "x", empty.NextModel("x"))
}
