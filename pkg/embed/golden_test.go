package bsh_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	bsh "github.com/beanshell/beanshell-sub002/pkg/embed"
)

// TestScriptFiles runs testdata/*.bsh and compares console output, stdout
// first then stderr, with the matching .want file.
func TestScriptFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.bsh"))
	require.NoError(t, err)
	if len(files) == 0 {
		t.Skip("No test files with .want found")
	}

	for _, file := range files {
		file := file
		name := strings.TrimSuffix(filepath.Base(file), ".bsh")
		t.Run(name, func(t *testing.T) {
			wantBytes, err := os.ReadFile(strings.TrimSuffix(file, ".bsh") + ".want")
			if os.IsNotExist(err) {
				t.Skip("no .want file")
			}
			require.NoError(t, err)

			var stdout, stderr strings.Builder
			in, err := bsh.New(bsh.WithOutput(&stdout, &stderr))
			require.NoError(t, err)
			defer in.Close()

			_, err = in.LoadFile(file)
			require.NoError(t, err)

			got := strings.TrimSpace(stdout.String())
			if errOut := strings.TrimSpace(stderr.String()); errOut != "" {
				got += "\n" + errOut
			}
			want := strings.TrimSpace(string(wantBytes))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
