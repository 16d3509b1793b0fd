package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeDirForFile_HappyPath(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "testDir", "testFile.test")
	err := MakeDirForFile(filePath, "test")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(filePath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestMakeDirForFile_Negative(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "testFile.test")
	require.NoError(t, os.WriteFile(file, []byte{1, 2, 3}, os.ModePerm))

	filePath := filepath.Join(file, "error")
	err := MakeDirForFile(filePath, "test")
	require.Error(t, err)
}
