package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

func TestSimilarCmd_Use(t *testing.T) {
	assert.Equal(t, "similar [document-id]", similarCmd.Use)
}

func TestSimilarCmd_ExecutesWithID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"similar", "2019Da54321"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Acme v. Baker")
}

func TestSimilarCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	similarService = &mockSimilarService{err: domain.ErrNotFound}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"similar", "no-such-case"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not indexed")
}

func TestSimilarCmd_ServiceNotConfigured(t *testing.T) {
	oldService := similarService
	similarService = nil
	defer func() {
		similarService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"similar", "case-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "similar service not configured")
}
