package livereload

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxInjectSize = 512 * 1024

var scriptTag = []byte(`<script async src="` + ScriptPath + `"></script>`)

// Inject wraps next so HTML pages load the live-reload client.
func Inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") && !strings.HasSuffix(p, ".htm") {
			next.ServeHTTP(w, r)
			return
		}
		inj := &injector{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(inj, r)
		inj.finalize()
	})
}

// InjectScript inserts the client script tag before the closing body tag, or
// appends it when the document has none. Markup inside comments, scripts and
// attribute values is not mistaken for the body end.
func InjectScript(page []byte) []byte {
	at := bodyEndOffset(page)
	if at < 0 {
		out := make([]byte, 0, len(page)+len(scriptTag))
		return append(append(out, page...), scriptTag...)
	}
	out := make([]byte, 0, len(page)+len(scriptTag))
	out = append(out, page[:at]...)
	out = append(out, scriptTag...)
	return append(out, page[at:]...)
}

func bodyEndOffset(page []byte) int {
	z := html.NewTokenizer(bytes.NewReader(page))
	offset, found := 0, -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return -1
			}
			return found
		}
		raw := len(z.Raw())
		if tt == html.EndTagToken {
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Body {
				found = offset
			}
		}
		offset += raw
	}
}

// injector buffers HTML responses up to maxInjectSize so the script can be
// inserted. Larger or non-HTML bodies pass through untouched.
type injector struct {
	http.ResponseWriter
	statusCode    int
	buffer        []byte
	headerWritten bool
	passthrough   bool
}

func (l *injector) WriteHeader(code int) {
	l.statusCode = code
	if l.passthrough {
		l.ResponseWriter.WriteHeader(code)
		l.headerWritten = true
	}
}

func (l *injector) Write(data []byte) (int, error) {
	if !l.headerWritten && !l.passthrough && l.buffer == nil {
		ct := l.Header().Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "text/html") {
			l.startPassthrough()
			return l.ResponseWriter.Write(data)
		}
		l.buffer = make([]byte, 0, 64*1024)
	}
	if l.passthrough {
		return l.ResponseWriter.Write(data)
	}
	if len(l.buffer)+len(data) > maxInjectSize {
		l.startPassthrough()
		if _, err := l.ResponseWriter.Write(l.buffer); err != nil {
			return 0, err
		}
		return l.ResponseWriter.Write(data)
	}
	l.buffer = append(l.buffer, data...)
	return len(data), nil
}

func (l *injector) startPassthrough() {
	l.passthrough = true
	l.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.statusCode)
	l.headerWritten = true
}

func (l *injector) finalize() {
	if l.passthrough || len(l.buffer) == 0 {
		if !l.headerWritten {
			l.ResponseWriter.WriteHeader(l.statusCode)
		}
		return
	}
	out := l.buffer
	if l.statusCode == http.StatusOK {
		out = InjectScript(l.buffer)
	}
	l.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.statusCode)
	_, _ = l.ResponseWriter.Write(out)
}
