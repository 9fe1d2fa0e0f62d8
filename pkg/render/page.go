package render

import (
	"io"

	"github.com/vango-dev/filters/pkg/vdom"
)

// DefaultClientScript is the path of the embedded thin client.
const DefaultClientScript = "/_filters/client.js"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content
	Body *vdom.VNode

	// Title is the page title
	Title string

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// InstanceID identifies the server-side widget instance the client
	// connects its event socket to.
	InstanceID string

	// SocketPath is the WebSocket endpoint for client events.
	SocketPath string

	// ClientScript is the path to the thin client JavaScript.
	// Defaults to DefaultClientScript.
	ClientScript string

	// Lang is the language attribute for the html element.
	// Defaults to "en".
	Lang string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	ew := &errWriter{w: w}

	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	ew.WriteString("<!DOCTYPE html>\n")
	ew.WriteString(`<html lang="` + escapeAttr(lang) + `">` + "\n")

	ew.WriteString("<head>\n")
	ew.WriteString(`  <meta charset="utf-8">` + "\n")
	ew.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		ew.WriteString("  <title>" + escapeHTML(page.Title) + "</title>\n")
	}
	for _, href := range page.StyleSheets {
		ew.WriteString(`  <link rel="stylesheet" href="` + escapeAttr(href) + `">` + "\n")
	}
	ew.WriteString("</head>\n")

	ew.WriteString("<body")
	if page.InstanceID != "" {
		ew.WriteString(` data-instance="` + escapeAttr(page.InstanceID) + `"`)
	}
	if page.SocketPath != "" {
		ew.WriteString(` data-socket="` + escapeAttr(page.SocketPath) + `"`)
	}
	ew.WriteString(">\n")

	r.renderNode(ew, page.Body, 0)
	ew.WriteString("\n")

	clientPath := page.ClientScript
	if clientPath == "" {
		clientPath = DefaultClientScript
	}
	ew.WriteString(`  <script src="` + escapeAttr(clientPath) + `" defer></script>` + "\n")

	ew.WriteString("</body>\n</html>\n")
	return ew.err
}
