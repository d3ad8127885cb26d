package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReplayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReplayAdapter_ServesRecordedResponses(t *testing.T) {
	path := writeReplayFile(t, `{
		"What is the capital of France?": {
			"contexts": ["Paris is the capital of France."],
			"answer": "Paris."
		}
	}`)

	adapter, err := NewReplayAdapter("recorded", path)
	require.NoError(t, err)
	assert.Equal(t, "recorded", adapter.Name())

	contexts, answer, err := adapter.Answer(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris is the capital of France."}, contexts)
	assert.Equal(t, "Paris.", answer)
}

func TestReplayAdapter_UnknownQueryIsAnError(t *testing.T) {
	path := writeReplayFile(t, `{}`)

	adapter, err := NewReplayAdapter("recorded", path)
	require.NoError(t, err)

	_, _, err = adapter.Answer(context.Background(), "never recorded")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recorded response")
}

func TestNewReplayAdapter_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewReplayAdapter("recorded", filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeReplayFile(t, `{"q": `)
		_, err := NewReplayAdapter("recorded", path)
		require.Error(t, err)
	})
}
