package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDocs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.md")
	require.NoError(t, runGenerateDocs(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	markdown := string(data)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "### scheduler_book_meeting (write)")
	assert.Contains(t, markdown, "### scheduler_list_meetings")
	assert.Contains(t, markdown, "### scheduler_cancel_meeting (write)")
	assert.Contains(t, markdown, "### scheduler_check_availability")
	assert.Contains(t, markdown, "### scheduler_chat")
	assert.Contains(t, markdown, "`attendee_email` (required)")
}
