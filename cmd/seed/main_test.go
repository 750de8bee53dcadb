package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInventory = `
streetlights:
  - id: sl-1
    poleID: P1
    latitude: 39.7
    longitude: -104.9
    fiberWifiEnabled: true
    poleOwner: City
    wattage: 100
    lightbulbType: LED
    attachedTech:
      camera: ptz
  - id: sl-2
    poleID: P2
    latitude: 39.8
    longitude: -104.8
    poleOwner: Xcel
    wattage: 150
  - id: sl-1
    poleID: P1-dup
    latitude: 39.7
    longitude: -104.9
  - id: bad
    poleID: P3
    latitude: 123
    longitude: 0
`

func TestReadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streetlights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleInventory), 0o600))

	lights, skipped, err := readInventory(path)
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, lights, 2)
	assert.Equal(t, "P1", lights[0].PoleID)
	assert.True(t, lights[0].FiberWifiEnabled)
	assert.Equal(t, map[string]any{"camera": "ptz"}, lights[0].AttachedTech)
	assert.Equal(t, 150.0, lights[1].Wattage)
}

func TestReadInventory_Errors(t *testing.T) {
	_, _, err := readInventory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("streetlights: [\n"), 0o600))
	_, _, err = readInventory(path)
	assert.Error(t, err)
}
