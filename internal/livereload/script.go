package livereload

import (
	"log/slog"
	"net/http"

	"github.com/wpmoo-org/uibuild/internal/logfields"
)

const (
	EventsPath = "/livereload"
	ScriptPath = "/livereload.js"
)

// Script is the browser client. CSS events swap matching stylesheet links in
// place; anything else reloads the page.
const Script = `(() => {
  if (window.__UIBUILD_LR__) return;
  window.__UIBUILD_LR__ = true;
  function refreshCSS(paths) {
    const links = document.querySelectorAll('link[rel="stylesheet"]');
    let hit = false;
    links.forEach((link) => {
      const url = new URL(link.href, location.href);
      const name = url.pathname.split('/').pop();
      if (paths.length && !paths.includes(name)) return;
      url.searchParams.set('livereload', Date.now());
      link.href = url.toString();
      hit = true;
    });
    if (!hit) location.reload();
  }
  function connect() {
    const es = new EventSource('` + EventsPath + `');
    es.onmessage = (e) => {
      try {
        const ev = JSON.parse(e.data);
        if (ev.type === 'css') { refreshCSS(ev.paths || []); } else { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { console.warn('[uibuild] livereload error - retrying'); es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`

// ScriptHandler serves Script.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write([]byte(Script)); err != nil {
			slog.Error("failed to write livereload script", logfields.Error(err))
		}
	})
}
