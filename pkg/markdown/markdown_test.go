package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"noticeboard/pkg/markdown"
)

func TestRender(t *testing.T) {
	require.Equal(t, "<p><strong>Hola</strong> món</p>\n", markdown.Render("**Hola** món"))
	require.Contains(t, markdown.Render("# Títol"), "<h1>Títol</h1>")
	require.Contains(t, markdown.Render("~~old~~"), "<del>old</del>")
}

func TestRenderDoesNotPassRawHTML(t *testing.T) {
	out := markdown.Render("<script>alert(1)</script>")
	require.NotContains(t, out, "<script>")
}

func TestRenderMalformedInput(t *testing.T) {
	require.NotPanics(t, func() {
		markdown.Render("**unclosed [link](")
	})
	require.Equal(t, "", markdown.Render(""))
}
