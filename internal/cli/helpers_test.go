package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/merger"
)

// counterLine renders a feed payload line holding one counter.
func counterLine(origin string, value int64) string {
	return fmt.Sprintf(`{"origin":%q,"description":"CNT","kind":"single","payload":{"type":"counter","object":{"title":"CNT","value":%d}}}`,
		origin, value)
}

const (
	tickLine = `{"event":"tick"}`
	eosLine  = `{"event":"end_of_stream"}`
)

// writeFeed writes lines as a JSONL file and returns its path.
func writeFeed(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "feed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// runFeed runs the run command over lines against dbPath with sequential IDs.
func runFeed(t *testing.T, dbPath string, lines ...string) (string, error) {
	t.Helper()
	feedPath := writeFeed(t, t.TempDir(), lines...)
	cmd, _ := newTestRun("text")
	cmd.SetContext(t.Context())
	out, _, err := execute(cmd, "--db", dbPath, "--input", feedPath, "--period", "0")
	return out, err
}

func newTestRun(format string) (*cobra.Command, *RunOptions) {
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: format},
		IDGenerator: merger.NewSequenceGenerator("pub"),
	}
	return newRunCommand(opts), opts
}
