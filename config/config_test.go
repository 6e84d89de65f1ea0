/*
 * config_test.go, part of qcio.
 *
 * Copyright 2024 The qcio authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcgo/qcio"
)

func writeConfig(Te *testing.T, text string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "qcio.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(Te *testing.T) {
	Te.Setenv("QCIO_INDENT", "2")
	path := writeConfig(Te, "log_level: warn\npersistence:\n  exclude_unset: false\n  indent: ${QCIO_INDENT}\n  xyz_precision: 8\n")
	cfg := NewDefaultConfig()
	require.NoError(Te, Load(path, cfg))
	assert.Equal(Te, slog.LevelWarn, cfg.LogLevel)

	opts := cfg.Persistence.SaveOptions()
	assert.Equal(Te, qcio.SaveOptions{ExcludeNone: true, ExcludeUnset: false, Indent: 2, XYZPrecision: 8}, opts)
}

func TestLoadValidates(Te *testing.T) {
	path := writeConfig(Te, "persistence:\n  indent: -1\n")
	err := Load(path, NewDefaultConfig())
	require.Error(Te, err)
	assert.Contains(Te, strings.ToLower(err.Error()), "indent")

	path = writeConfig(Te, "persistence: [1, 2]\n")
	assert.Error(Te, Load(path, NewDefaultConfig()))
}

func TestLoadWithDefaults(Te *testing.T) {
	def := writeConfig(Te, "log_level: debug\n")
	cfg := NewDefaultConfig()
	require.NoError(Te, LoadWithDefaults(filepath.Join(Te.TempDir(), "missing.yaml"), def, cfg))
	assert.Equal(Te, slog.LevelDebug, cfg.LogLevel)
	assert.Error(Te, LoadWithDefaults(filepath.Join(Te.TempDir(), "missing.yaml"), "", cfg))
}

func TestDefaultPersistence(Te *testing.T) {
	assert.Equal(Te, qcio.DefaultSaveOptions, Persistence{}.SaveOptions())
}

func TestConfigStore(Te *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.LogLevel = slog.LevelError
	st := cfg.Store(nil, &buf)
	assert.Equal(Te, qcio.DefaultSaveOptions, st.Options)

	dir := Te.TempDir()
	path := filepath.Join(dir, "old.json")
	require.NoError(Te, os.WriteFile(path, []byte(`{"symbols":["He"],"geometry":[0,0,0],"ids":{"name":"helium"}}`), 0o644))
	S, err := st.OpenStructure(path)
	require.NoError(Te, err)
	assert.Equal(Te, "helium", S.Identifiers.Name)
	assert.Empty(Te, buf.String(), "warnings are below the configured level")

	cfg.LogLevel = slog.LevelWarn
	_, err = cfg.Store(nil, &buf).OpenStructure(path)
	require.NoError(Te, err)
	assert.Contains(Te, buf.String(), "field=ids")
}
