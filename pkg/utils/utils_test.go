package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("HOTELBOT_TEST_FROM_FILE=file\nHOTELBOT_TEST_PRESET=file\n"), 0644))

	t.Setenv("HOTELBOT_TEST_PRESET", "env")
	t.Cleanup(func() { _ = os.Unsetenv("HOTELBOT_TEST_FROM_FILE") })

	LoadConfig(dir)

	assert.Equal(t, "file", os.Getenv("HOTELBOT_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("HOTELBOT_TEST_PRESET"))
	assert.Equal(t, "file", viper.GetString("hotelbot_test_from_file"))
}

func TestLoadConfig_MissingFileIsFine(t *testing.T) {
	assert.NotPanics(t, func() { LoadConfig(t.TempDir()) })
}

func TestGetPersistentServerID(t *testing.T) {
	assert.Equal(t, "fixed", GetPersistentServerID("fixed", t.TempDir()))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".server_id"), []byte(" saved-id \n"), 0644))
	assert.Equal(t, "saved-id", GetPersistentServerID("", dir))

	id := GetPersistentServerID("", t.TempDir())
	assert.Contains(t, id, "hotelbot-")
}

func TestCreateFolder(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a", "b")
	c := filepath.Join(base, "c")

	require.NoError(t, CreateFolder(a, c))
	assert.DirExists(t, a)
	assert.DirExists(t, c)
}
