package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestStage verifies that staging copies the module tree while skipping
// build output, the isolated environment and VCS directories.
func TestStage(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "go.mod"), []byte("module example.com/app\n"))
	writeFile(t, filepath.Join(src, "cmd", "app", "main.go"), []byte("package main\n"))
	writeFile(t, filepath.Join(src, "assets", "icon.png"), []byte("png"))
	writeFile(t, filepath.Join(src, "internal", "build", "keep.go"), []byte("package build\n"))
	writeFile(t, filepath.Join(src, "build", "stale.txt"), []byte("stale"))
	writeFile(t, filepath.Join(src, "dist", "stale.exe"), []byte("stale"))
	writeFile(t, filepath.Join(src, EnvDirName, "modcache", "x"), []byte("cache"))
	writeFile(t, filepath.Join(src, ".git", "config"), []byte("[core]"))

	// An executable file, to check permission preservation.
	scriptPath := filepath.Join(src, "hack", "gen.sh")
	writeFile(t, scriptPath, []byte("#!/bin/sh\n"))
	require.NoError(t, os.Chmod(scriptPath, 0o755))

	dst := filepath.Join(t.TempDir(), "src")
	require.NoError(t, Stage(src, dst))

	assert.FileExists(t, filepath.Join(dst, "go.mod"))
	assert.FileExists(t, filepath.Join(dst, "cmd", "app", "main.go"))
	assert.FileExists(t, filepath.Join(dst, "assets", "icon.png"))

	// Root-level skip dirs are gone, but a nested directory that merely
	// shares the name "build" is copied.
	assert.NoDirExists(t, filepath.Join(dst, "build"))
	assert.NoDirExists(t, filepath.Join(dst, "dist"))
	assert.NoDirExists(t, filepath.Join(dst, EnvDirName))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))
	assert.FileExists(t, filepath.Join(dst, "internal", "build", "keep.go"))

	info, err := os.Stat(filepath.Join(dst, "hack", "gen.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

// TestWriteHiddenImportsFile verifies the generated underscore-imports
// source file.
func TestWriteHiddenImportsFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteHiddenImportsFile(dir, []string{
		"github.com/joho/godotenv",
		"github.com/cespare/xxhash/v2",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, HiddenImportsFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "// Code generated by progriv-dist; DO NOT EDIT.")
	assert.Contains(t, content, "package main")
	assert.Contains(t, content, "\t_ \"github.com/joho/godotenv\"\n")
	assert.Contains(t, content, "\t_ \"github.com/cespare/xxhash/v2\"\n")
}

// TestWriteHiddenImportsFile_Empty verifies that no file is generated
// when the descriptor declares no hidden imports.
func TestWriteHiddenImportsFile_Empty(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteHiddenImportsFile(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoFileExists(t, filepath.Join(dir, HiddenImportsFileName))
}

// TestDigestFile verifies that file and in-memory digests agree and use
// fixed-width hex.
func TestDigestFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("theme colors payload")
	path := filepath.Join(dir, "colors.json")
	writeFile(t, path, content)

	fromFile, err := DigestFile(path, "assets/theme/colors.json")
	require.NoError(t, err)
	fromBytes := DigestBytes(content, "assets/theme/colors.json")

	assert.Equal(t, fromBytes, fromFile)
	assert.Equal(t, "assets/theme/colors.json", fromFile.Path)
	assert.Equal(t, int64(len(content)), fromFile.Size)
	assert.Len(t, fromFile.XXH64, 16)
}

// TestWriteStagingManifest verifies the YAML output: generated header,
// sorted file entries, and a clean round-trip.
func TestWriteStagingManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StagingManifestFileName)

	m := &StagingManifest{
		Name:    "Progriv",
		Target:  "windows/amd64",
		BuiltAt: time.Date(2026, 8, 24, 15, 4, 5, 0, time.UTC),
		Files: []ManifestFile{
			{Path: "b.txt", Size: 2, XXH64: "00000000000000b0"},
			{Path: "a.txt", Size: 1, XXH64: "00000000000000a0"},
		},
	}
	require.NoError(t, WriteStagingManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Contains(t, string(data), "# Staging manifest written by progriv-dist.")

	var read StagingManifest
	require.NoError(t, yaml.Unmarshal(data, &read))
	assert.Equal(t, "Progriv", read.Name)
	assert.Equal(t, "windows/amd64", read.Target)
	require.Len(t, read.Files, 2)
	assert.Equal(t, "a.txt", read.Files[0].Path, "entries are sorted by path")
	assert.Equal(t, "b.txt", read.Files[1].Path)
}
