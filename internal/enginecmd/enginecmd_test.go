package enginecmd_test

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/nenuphar-vm/asm"
	"github.com/mna/nenuphar-vm/internal/enginecmd"
	"github.com/mna/nenuphar-vm/internal/filetest"
)

var testUpdateRunTests = flag.Bool("test.update-run-tests", false, "If set, replace expected run command results with actual results.")

func TestRunCommand(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".asm") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &enginecmd.Cmd{}
			err := c.Run(ctx, stdio, []string{filepath.Join(srcDir, fi.Name())})
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateRunTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateRunTests)
		})
	}
}

func TestDisasmCommandRoundTrips(t *testing.T) {
	ctx := context.Background()
	srcDir := filepath.Join("testdata", "in")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".asm") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &enginecmd.Cmd{}
			err := c.Disasm(ctx, stdio, []string{filepath.Join(srcDir, fi.Name())})
			require.NoError(t, err)
			assert.Empty(t, ebuf.String())

			// The normalized output must itself assemble without error: that is
			// the contract disasm promises, regardless of exact formatting.
			_, err = asm.Asm(buf.Bytes())
			require.NoError(t, err)
		})
	}
}

func TestRunCommandMissingFile(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &enginecmd.Cmd{}
	err := c.Run(context.Background(), stdio, []string{filepath.Join("testdata", "in", "does-not-exist.asm")})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := &enginecmd.Cmd{}
	c.SetArgs(nil)
	require.Error(t, c.Validate())

	c = &enginecmd.Cmd{}
	c.SetArgs([]string{"bogus", "a.asm"})
	require.Error(t, c.Validate())

	c = &enginecmd.Cmd{}
	c.SetArgs([]string{"run"})
	require.Error(t, c.Validate())

	c = &enginecmd.Cmd{}
	c.SetArgs([]string{"run", "a.asm"})
	require.NoError(t, c.Validate())

	c = &enginecmd.Cmd{MaxSteps: -1}
	c.SetArgs([]string{"run", "a.asm"})
	require.Error(t, c.Validate())
}
