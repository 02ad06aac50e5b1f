package integration_tests

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/dokdo/internal/cli"
	"github.com/specialistvlad/dokdo/internal/testutil"
	"github.com/stretchr/testify/require"
)

var project = map[string]string{
	"dokdo.hcl": `
source_dir = "pages"
out_dir    = "public"
exclude    = ["drafts/*"]

variables = {
  site = "Dokdo"
  mode = env.DOKDO_ENV
}
`,
	"pages/index.html":      `<p>{{{ site }}} {{{ mode }}}</p>`,
	"pages/drafts/wip.html": `<p>{{{ undefined }}}</p>`,
}

func TestProjectFile_FillsUnsetFlags(t *testing.T) {
	t.Parallel()

	// Arrange
	cfg, shouldExit, err := cli.Parse([]string{"-config", "dokdo.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	// Act
	result := testutil.RunIntegrationTest(t, project, *cfg)

	// Assert
	require.NoError(t, result.Err)
	require.Equal(t, `<p>Dokdo test</p>`, result.Output(t, "public/index.html"))
	require.NoFileExists(t, result.Path("public/wip.html"))
	require.Equal(t, result.Path("pages"), result.Config.SourceDir)
	require.Equal(t, 1, result.Config.Workers)
}

func TestProjectFile_ExplicitFlagsWin(t *testing.T) {
	t.Parallel()

	// Arrange
	args := []string{"-config", "dokdo.hcl", "-var", "site=Override", "-O", "dist", "-workers", "3"}
	cfg, _, err := cli.Parse(args, &bytes.Buffer{})
	require.NoError(t, err)

	// Act
	result := testutil.RunIntegrationTest(t, project, *cfg)

	// Assert
	require.NoError(t, result.Err)
	require.Equal(t, `<p>Override test</p>`, result.Output(t, "dist/index.html"))
	require.NoDirExists(t, result.Path("public"))
	require.Equal(t, 3, result.Config.Workers)
}

func TestProjectFile_PositionalFileUsesProjectVariables(t *testing.T) {
	t.Parallel()

	cfg, _, err := cli.Parse([]string{"-config", "dokdo.hcl", "pages/index.html"}, &bytes.Buffer{})
	require.NoError(t, err)

	result := testutil.RunIntegrationTest(t, project, *cfg)

	require.NoError(t, result.Err)
	require.Equal(t, `<p>Dokdo test</p>`, result.Stdout)
}

func TestProjectFile_InvalidFileStopsStartup(t *testing.T) {
	t.Parallel()

	files := map[string]string{"dokdo.hcl": "workers = 0\n"}
	cfg, _, err := cli.Parse([]string{"-config", "dokdo.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)

	result := testutil.RunIntegrationTest(t, files, *cfg)

	require.ErrorContains(t, result.Err, "workers must be at least 1")
	require.Zero(t, result.Config)
}
