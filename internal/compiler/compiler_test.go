package compiler_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/specialistvlad/dokdo/internal/compiler"
	"github.com/specialistvlad/dokdo/internal/markup"
	"github.com/specialistvlad/dokdo/internal/style"
	"github.com/specialistvlad/dokdo/internal/testutil"
	"github.com/specialistvlad/dokdo/internal/variables"
	"github.com/stretchr/testify/require"
)

// compileFiles writes files into a temporary directory and compiles entry.
func compileFiles(t *testing.T, files map[string]string, entry string, vars compiler.Variables, opts ...compiler.Option) (string, error) {
	t.Helper()
	root := testutil.WriteFiles(t, files)
	return compiler.New(opts...).Compile(context.Background(), filepath.Join(root, entry), vars)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		files    map[string]string
		vars     compiler.Variables
		expected string
	}{
		{
			name: "root variables are substituted before parsing",
			files: map[string]string{
				"index.html": `<p class="{{{ cls }}}">Hello {{{ name }}}</p>`,
			},
			vars:     compiler.Variables{"name": "World", "cls": "greeting"},
			expected: `<p class="greeting">Hello World</p>`,
		},
		{
			name: "import keeps sibling order",
			files: map[string]string{
				"index.html": `<a></a><import path="p.html"/><b></b>`,
				"p.html":     `<c></c>`,
			},
			expected: `<a></a><c></c><b></b>`,
		},
		{
			name: "import attributes overlay a single root",
			files: map[string]string{
				"index.html": `<import path="p.html" class="y" data-z="1"/>`,
				"p.html":     `<div class="x">hi</div>`,
			},
			expected: `<div class="y" data-z="1">hi</div>`,
		},
		{
			name: "import attributes become variables of the imported template",
			files: map[string]string{
				"index.html": `<main><import path="title.html" text="Welcome"/></main>`,
				"title.html": `<h1>{{{ text }}}</h1>`,
			},
			expected: `<main><h1 text="Welcome">Welcome</h1></main>`,
		},
		{
			name: "multiple roots are spliced in place without overlay",
			files: map[string]string{
				"index.html": `<div><a></a><import path="p.html" class="k"/><b></b></div>`,
				"p.html":     "<x></x>\n<y></y>\n",
			},
			expected: `<div><a></a><x></x><y></y><b></b></div>`,
		},
		{
			name: "imports resolve relative to the importing template",
			files: map[string]string{
				"index.html":      `<import path="parts/card.html"/>`,
				"parts/card.html": `<div><import path="icon.html"/></div>`,
				"parts/icon.html": `<i></i>`,
			},
			expected: `<div><i></i></div>`,
		},
		{
			name: "positional innerhtml is filled",
			files: map[string]string{
				"index.html": `<import path="card.html"><span>A</span></import>`,
				"card.html":  `<div class="card"><innerhtml></innerhtml></div>`,
			},
			expected: `<div class="card"><span>A</span></div>`,
		},
		{
			name: "comments take slot positions",
			files: map[string]string{
				"index.html": `<import path="pair.html"><!-- note --> <p>a</p></import>`,
				"pair.html":  `<div><innerhtml></innerhtml><innerhtml></innerhtml></div>`,
			},
			expected: `<div><!-- note --><p>a</p></div>`,
		},
		{
			name: "slot attributes overlay the supplied node",
			files: map[string]string{
				"index.html": `<import path="card.html"><span class="a">A</span></import>`,
				"card.html":  `<div><innerhtml class="slot" data-x="1"></innerhtml></div>`,
			},
			expected: `<div><span class="slot" data-x="1">A</span></div>`,
		},
		{
			name: "named and positional slots, unmatched slot removed",
			files: map[string]string{
				"index.html": `<import path="layout.html"><h2 id="title">T</h2><p>body</p></import>`,
				"layout.html": `<section><innerhtml id="title"></innerhtml><innerhtml></innerhtml>` +
					`<innerhtml id="missing"><em>fallback</em></innerhtml></section>`,
			},
			expected: `<section><h2 id="title">T</h2><p>body</p></section>`,
		},
		{
			name: "top-level innerhtml is not a slot",
			files: map[string]string{
				"index.html": `<import path="p.html"><span>A</span></import>`,
				"p.html":     `<innerhtml></innerhtml>`,
			},
			expected: `<innerhtml></innerhtml>`,
		},
		{
			name: "import nested in supplied content is resolved",
			files: map[string]string{
				"index.html": `<import path="frame.html"><import path="p.html"/></import>`,
				"frame.html": `<main><innerhtml></innerhtml></main>`,
				"p.html":     `<c></c>`,
			},
			expected: `<main><c></c></main>`,
		},
		{
			name: "nested static without a marker stays in place",
			files: map[string]string{
				"index.html": `<div><static><b>kept</b></static></div><static>dropped</static>`,
			},
			expected: `<div><static><b>kept</b></static></div>`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			out, err := compileFiles(t, tc.files, "index.html", tc.vars)

			// --- Assert ---
			require.NoError(t, err)
			require.Equal(t, tc.expected, out)
		})
	}
}

func TestCompile_VariablesFullyReplaced(t *testing.T) {
	t.Parallel()

	out, err := compileFiles(t, map[string]string{
		"index.html": `<!DOCTYPE html><html><head><style>.a::after{content:"{{{ x }}}"}</style></head>` +
			`<body data-v="{{{x}}}">{{{ x }}}<span>{{{x }}}</span></body></html>`,
	}, "index.html", compiler.Variables{"x": "42"})

	require.NoError(t, err)
	require.NotContains(t, out, "{{{")
	require.Equal(t, `<!DOCTYPE html><html><head><style>.a::after{content:"42"}</style></head>`+
		`<body data-v="42">42<span>42</span></body></html>`, out)
}

func TestCompile_StaticsHoistedOncePerPath(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"index.html": `<!DOCTYPE html><html><head></head><body>` +
			`<import path="widget.html"/><import path="widget.html"/></body></html>`,
		"widget.html": `<div>w</div><static post><script src="w.js"></script></static>`,
	}

	out, err := compileFiles(t, files, "index.html", nil)

	require.NoError(t, err)
	require.Equal(t, `<!DOCTYPE html><html><head></head><body><div>w</div><div>w</div>`+
		`<static post=""><script src="w.js"></script></static></body></html>`, out)
	require.Equal(t, 1, strings.Count(out, "w.js"))
}

func TestCompile_PreStaticsGoToHead(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"index.html": `<!DOCTYPE html><html><head><title>T</title></head><body>` +
			`<import path="a.html"/><static post><script src="root.js"></script></static></body></html>`,
		"a.html": `<div><static pre><link rel="stylesheet" href="a.css"></static>a</div>` +
			`<static post><script src="a.js"></script></static>`,
	}

	out, err := compileFiles(t, files, "index.html", nil)

	require.NoError(t, err)
	require.Equal(t, `<!DOCTYPE html><html><head><title>T</title>`+
		`<static pre=""><link rel="stylesheet" href="a.css"/></static></head>`+
		`<body><div>a</div>`+
		`<static post=""><script src="root.js"></script></static>`+
		`<static post=""><script src="a.js"></script></static></body></html>`, out)
}

func TestCompile_StyleAggregationOrder(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"index.html": `<!DOCTYPE html><html><head><style>.root{}</style></head>` +
			`<body><import path="a.html"/><style>.root2{}</style></body></html>`,
		"a.html": `<div><style>.a{}</style><import path="b.html"/></div>`,
		"b.html": `<section><style>.b{}</style><import path="c.html"/></section>`,
		"c.html": `<span><style>.c{}</style>c</span>`,
	}

	out, err := compileFiles(t, files, "index.html", nil)

	require.NoError(t, err)
	require.Equal(t, `<!DOCTYPE html><html><head><style>.root{}.root2{}.a{}.b{}.c{}</style></head>`+
		`<body><div><section><span>c</span></section></div></body></html>`, out)
}

func TestCompile_ScssTranspiledOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fake := style.Func(func(_ context.Context, src string) (string, error) {
		calls.Add(1)
		return strings.ReplaceAll(src, "$brand", "red"), nil
	})
	files := map[string]string{
		"index.html": `<!DOCTYPE html><html><head></head><body>` +
			`<style type="text/scss">a{color:$brand}</style><style>b{}</style></body></html>`,
	}

	out, err := compileFiles(t, files, "index.html", nil, compiler.WithTranspiler(fake))

	require.NoError(t, err)
	require.Equal(t, `<!DOCTYPE html><html><head><style>a{color:red}b{}</style></head><body></body></html>`, out)
	require.Equal(t, int32(1), calls.Load())
}

func TestCompile_ScssWithoutTranspiler(t *testing.T) {
	t.Parallel()

	_, err := compileFiles(t, map[string]string{
		"index.html": `<!DOCTYPE html><html><head><style type="text/scss">a{}</style></head><body></body></html>`,
	}, "index.html", nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), "scss support is not configured")
}

func TestCompile_RoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []string{
		"<!DOCTYPE html>\n<html lang=\"en\"><head><title>T</title></head><body><p class=\"x\">a &amp; b</p><br/></body></html>",
		`<nav><ul><li><a href="/">Home</a></li></ul></nav><footer>f</footer>`,
	}

	for _, text := range testCases {
		roots, err := markup.Parse(text)
		require.NoError(t, err)
		want, err := markup.RenderAll(roots)
		require.NoError(t, err)

		out, err := compileFiles(t, map[string]string{"index.html": text}, "index.html", nil)

		require.NoError(t, err)
		require.Equal(t, want, out)
		require.Equal(t, text, out)
	}
}

func TestCompile_ImportedDocumentIsOverlaid(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"index.html": `<div><import path="page.html" class="y"/></div>`,
		"page.html":  "<!DOCTYPE html>\n<html class=\"x\"><body></body></html>\n",
	}

	out, err := compileFiles(t, files, "index.html", nil)

	require.NoError(t, err)
	require.Equal(t, `<div><html class="y"><body></body></html></div>`, out)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		files  map[string]string
		assert func(t *testing.T, err error)
	}{
		{
			name:  "undefined variable",
			files: map[string]string{"index.html": `<p>{{{ nope }}}</p>`},
			assert: func(t *testing.T, err error) {
				var undef *variables.UndefinedVariableError
				require.True(t, errors.As(err, &undef))
				require.Equal(t, "nope", undef.Name)
				var tmplErr *compiler.TemplateError
				require.True(t, errors.As(err, &tmplErr))
				require.Equal(t, "index.html", filepath.Base(tmplErr.Path))
			},
		},
		{
			name: "undefined variable in an import names the imported file",
			files: map[string]string{
				"index.html": `<import path="p.html" a="1"/>`,
				"p.html":     `<p>{{{ b }}}</p>`,
			},
			assert: func(t *testing.T, err error) {
				var tmplErr *compiler.TemplateError
				require.True(t, errors.As(err, &tmplErr))
				require.Equal(t, "p.html", filepath.Base(tmplErr.Path))
			},
		},
		{
			name:  "import not found",
			files: map[string]string{"index.html": `<div><import path="missing.html"/></div>`},
			assert: func(t *testing.T, err error) {
				var notFound *compiler.ImportNotFoundError
				require.True(t, errors.As(err, &notFound))
				require.Equal(t, "missing.html", filepath.Base(notFound.Target))
				require.ErrorIs(t, err, fs.ErrNotExist)
			},
		},
		{
			name:  "import without path",
			files: map[string]string{"index.html": `<import class="x"/>`},
			assert: func(t *testing.T, err error) {
				var notFound *compiler.ImportNotFoundError
				require.True(t, errors.As(err, &notFound))
				require.Contains(t, err.Error(), "no path attribute")
			},
		},
		{
			name:  "parse failure",
			files: map[string]string{"index.html": `<div></span>`},
			assert: func(t *testing.T, err error) {
				var perr *markup.ParseError
				require.True(t, errors.As(err, &perr))
			},
		},
		{
			name:  "document without head",
			files: map[string]string{"index.html": `<!DOCTYPE html><html><body></body></html>`},
			assert: func(t *testing.T, err error) {
				var missing *compiler.MissingNodeError
				require.True(t, errors.As(err, &missing))
				require.Equal(t, "head", missing.Tag)
			},
		},
		{
			name:  "document without body",
			files: map[string]string{"index.html": `<!DOCTYPE html><html><head></head></html>`},
			assert: func(t *testing.T, err error) {
				var missing *compiler.MissingNodeError
				require.True(t, errors.As(err, &missing))
				require.Equal(t, "body", missing.Tag)
			},
		},
		{
			name:  "fragment with statics but no head",
			files: map[string]string{"index.html": `<div></div><static post><script></script></static>`},
			assert: func(t *testing.T, err error) {
				var missing *compiler.MissingNodeError
				require.True(t, errors.As(err, &missing))
			},
		},
		{
			name:  "static marked pre and post",
			files: map[string]string{"index.html": `<div><static pre post></static></div>`},
			assert: func(t *testing.T, err error) {
				var placement *compiler.StaticPlacementError
				require.True(t, errors.As(err, &placement))
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := compileFiles(t, tc.files, "index.html", nil)

			require.Error(t, err)
			tc.assert(t, err)
		})
	}
}

func TestCompile_MissingRootFile(t *testing.T) {
	t.Parallel()

	_, err := compiler.New().Compile(context.Background(), filepath.Join(t.TempDir(), "none.html"), nil)

	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
	var notFound *compiler.ImportNotFoundError
	require.False(t, errors.As(err, &notFound), "a missing root is not an import failure")
}

func TestCompile_CanceledContext(t *testing.T) {
	t.Parallel()

	root := testutil.WriteFiles(t, map[string]string{"index.html": `<p></p>`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := compiler.New().Compile(ctx, filepath.Join(root, "index.html"), nil)

	require.ErrorIs(t, err, context.Canceled)
}

func TestCompile_WithReadFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"site/index.html":     {Data: []byte(`<import path="parts/nav.html" current="home"/>`)},
		"site/parts/nav.html": {Data: []byte(`<nav class="{{{ current }}}"></nav>`)},
	}
	c := compiler.New(compiler.WithReadFile(fsys.ReadFile))

	out, err := c.Compile(context.Background(), "site/index.html", nil)

	require.NoError(t, err)
	require.Equal(t, `<nav class="home" current="home"></nav>`, out)
}

func TestCompile_FreshStatePerCall(t *testing.T) {
	t.Parallel()

	root := testutil.WriteFiles(t, map[string]string{
		"index.html":  `<!DOCTYPE html><html><head></head><body><import path="widget.html"/></body></html>`,
		"widget.html": `<i></i><static post><script></script></static>`,
	})
	c := compiler.New()

	first, err := c.Compile(context.Background(), filepath.Join(root, "index.html"), nil)
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), filepath.Join(root, "index.html"), nil)
	require.NoError(t, err)

	require.Equal(t, first, second, "each top-level compile owns its accumulator")
}
