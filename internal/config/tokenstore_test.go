// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laiosys/risu/internal/config"
	"github.com/laiosys/risu/models"
)

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	dir := t.TempDir()
	return config.Paths{
		Dir:             dir,
		ConfigFile:      filepath.Join(dir, "config.toml"),
		TokenFile:       filepath.Join(dir, "token.json"),
		LegacyTokenFile: filepath.Join(dir, "token"),
		PassphraseFile:  filepath.Join(dir, "passphrase"),
		DatabaseFile:    filepath.Join(dir, "local.db"),
		LogFile:         filepath.Join(dir, "logs", "risu.log"),
	}
}

func TestLoadTokenData_NoneWhenAbsent(t *testing.T) {
	paths := testPaths(t)

	data, source, err := config.LoadTokenData(paths)
	require.NoError(t, err)
	assert.Equal(t, models.SourceNone, source)
	assert.True(t, data.Empty())
}

func TestSaveAndLoadTokenData(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDir())

	require.NoError(t, config.SaveTokenData(paths, "id-token", "refresh-token"))

	data, source, err := config.LoadTokenData(paths)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFile, source)
	assert.Equal(t, "id-token", data.IDToken)
	assert.Equal(t, "refresh-token", data.RefreshToken)

	info, err := os.Stat(paths.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadTokenData_LegacyRawString(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDir())
	require.NoError(t, os.WriteFile(paths.LegacyTokenFile, []byte("  raw-id-token  \n"), 0o600))

	data, source, err := config.LoadTokenData(paths)
	require.NoError(t, err)
	assert.Equal(t, models.SourceLegacyFile, source)
	assert.Equal(t, "raw-id-token", data.IDToken)
	assert.Empty(t, data.RefreshToken)
}

func TestLoadTokenData_LegacyJSON(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDir())
	require.NoError(t, os.WriteFile(paths.LegacyTokenFile, []byte(`{"id_token":"a","refresh_token":"b"}`), 0o600))

	data, source, err := config.LoadTokenData(paths)
	require.NoError(t, err)
	assert.Equal(t, models.SourceLegacyFile, source)
	assert.Equal(t, "a", data.IDToken)
	assert.Equal(t, "b", data.RefreshToken)
}

func TestLoadTokenData_FilePreferredOverLegacy(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDir())
	require.NoError(t, config.SaveTokenData(paths, "canonical", "refresh"))
	require.NoError(t, os.WriteFile(paths.LegacyTokenFile, []byte("legacy-id"), 0o600))

	data, source, err := config.LoadTokenData(paths)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFile, source)
	assert.Equal(t, "canonical", data.IDToken)
}

func TestDeleteTokenData(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDir())
	require.NoError(t, config.SaveTokenData(paths, "id", "refresh"))
	require.NoError(t, os.WriteFile(paths.LegacyTokenFile, []byte("legacy"), 0o600))

	require.NoError(t, config.DeleteTokenData(paths))

	_, err := os.Stat(paths.TokenFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.LegacyTokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestPassphraseRoundTrip(t *testing.T) {
	paths := testPaths(t)

	_, err := config.LoadPassphrase(paths)
	assert.ErrorIs(t, err, config.ErrNoPassphrase)

	require.NoError(t, config.SavePassphrase(paths, "  correct horse  \n"))
	got, err := config.LoadPassphrase(paths)
	require.NoError(t, err)
	assert.Equal(t, "correct horse", got)

	require.NoError(t, config.DeletePassphrase(paths))
	_, err = config.LoadPassphrase(paths)
	assert.ErrorIs(t, err, config.ErrNoPassphrase)
}
