package server

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/conneroisu/iconward/internal/catalog"
)

const galleryHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Icons</title>
<style>
body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
.grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(140px, 1fr)); gap: 12px; }
.icon { background: white; border: 1px solid #ddd; border-radius: 6px; padding: 12px; text-align: center; }
.icon img { width: 32px; height: 32px; }
.icon code { display: block; font-size: 11px; color: #666; overflow-wrap: anywhere; }
.custom { border-color: #007acc; }
</style>
</head>
<body>
`

const galleryFoot = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (ev) {
    try {
      if (JSON.parse(ev.data).type === "catalog_updated") { location.reload(); }
    } catch (e) {}
  };
})();
</script>
</body>
</html>
`

// galleryPage renders every icon as an <img> so each one loads under the
// icon CSP rather than inline in the page.
func galleryPage(manifest []catalog.ManifestEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, galleryHead); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<h1>Icons <small>("+strconv.Itoa(len(manifest))+")</small></h1>\n<div class=\"grid\">\n"); err != nil {
			return err
		}
		for _, entry := range manifest {
			class := "icon"
			if entry.IsCustom {
				class += " custom"
			}
			src := "/icons/" + url.PathEscape(entry.Key) + ".svg"
			card := `<div class="` + class + `">` +
				`<img src="` + templ.EscapeString(src) + `" alt="` + templ.EscapeString(entry.Label) + `">` +
				`<div>` + templ.EscapeString(entry.Label) + `</div>` +
				`<code>` + templ.EscapeString(entry.Key) + `</code>` +
				"</div>\n"
			if _, err := io.WriteString(w, card); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
		_, err := io.WriteString(w, galleryFoot)
		return err
	})
}
