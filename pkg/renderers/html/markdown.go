package html

import (
	"fmt"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/goliatone/go-alohomora/pkg/render"
)

// MarkdownToHTML converts authored page content and sanitises the result.
func MarkdownToHTML(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return render.SafeHTML(markdown.ToHTML(src, p, r))
}

func markdownFilter(input any, _ any) (any, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case string:
		return string(MarkdownToHTML([]byte(v))), nil
	case []byte:
		return string(MarkdownToHTML(v)), nil
	default:
		return string(MarkdownToHTML([]byte(fmt.Sprint(v)))), nil
	}
}
