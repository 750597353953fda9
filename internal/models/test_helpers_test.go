package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixturePathFindsModuleTestdata(t *testing.T) {
	path := FixturePath(t, "stations.json")

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "testdata", filepath.Base(filepath.Dir(path)))
	assert.FileExists(t, filepath.Join(filepath.Dir(filepath.Dir(path)), "go.mod"))
}
