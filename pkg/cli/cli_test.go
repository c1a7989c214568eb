package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "NEON_DB_URL", "SCRIPTURA_DEFAULT_TRANSLATION",
		"GEMINI_API_KEY", "GEMINI_AI_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

// run executes the root command against a memory-store config in a temp dir.
func run(t *testing.T, system string, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	dir := t.TempDir()
	app := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(app, []byte(`{"store":{"driver":"memory"}}`), 0o644))
	sys := filepath.Join(dir, "system.json")
	if system != "" {
		require.NoError(t, os.WriteFile(sys, []byte(system), 0o644))
	}

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", app, "--system", sys, "--seed=false"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTranslationsCommand(t *testing.T) {
	out, err := run(t, "", "translations")
	require.NoError(t, err)
	assert.Equal(t, "BSB, KJV\n", out)
}

func TestAskFastPath(t *testing.T) {
	out, err := run(t, "", "ask", "John 3:16")
	require.NoError(t, err)
	assert.Equal(t, "John 3:16 (BSB)\nFor God so loved the world that He gave His one and only Son, that everyone who believes in Him shall not perish but have eternal life.\n", out)
}

func TestAskShowsRoute(t *testing.T) {
	out, err := run(t, "", "ask", "--route", "Psalms 117 KJV")
	require.NoError(t, err)
	assert.Contains(t, out, "[fast_path]")
	assert.Contains(t, out, "Psalms 117 (KJV)\n1. O praise the LORD")
}

func TestAskExplainsMisses(t *testing.T) {
	out, err := run(t, "", "ask", "John 3:16 XYZ")
	require.Error(t, err)
	assert.Contains(t, out, "Translation 'XYZ' is not available. Available translations: BSB, KJV.")
}

func TestAskWithoutModelFailsDelegation(t *testing.T) {
	out, err := run(t, "", "ask", "What is grace?")
	require.Error(t, err)
	assert.Contains(t, out, "Sorry, I could not work out an answer right now.")
}

func TestAskRequiresOneArgument(t *testing.T) {
	_, err := run(t, "", "ask")
	assert.Error(t, err)
}

func TestTranscriptsNeedsPath(t *testing.T) {
	_, err := run(t, "", "transcripts")
	assert.ErrorContains(t, err, "transcript_path is not set")
}

func TestTranscriptsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	out, err := run(t, `{"transcript_path":"`+filepath.ToSlash(path)+`"}`, "transcripts")
	require.NoError(t, err)
	assert.Equal(t, "No transcripts yet.\n", out)
}

func TestMissingConfig(t *testing.T) {
	clearEnv(t)
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.json"), "translations"})
	assert.ErrorContains(t, cmd.Execute(), "not found")
}
