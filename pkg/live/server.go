package live

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/glimmer-dev/glimmer/pkg/host"
	"github.com/glimmer-dev/glimmer/pkg/observer"
	"github.com/glimmer-dev/glimmer/pkg/render"
	"github.com/glimmer-dev/glimmer/pkg/telemetry"
)

// Config configures a live Server.
type Config struct {
	// Title is the page title of the HTML shell.
	Title string

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, if set, records render and sweep activity.
	Metrics *telemetry.Metrics

	// Tracer, if set, wraps render passes in spans.
	Tracer *telemetry.Tracer

	// WriteTimeout bounds each WebSocket write (default 10s).
	WriteTimeout time.Duration
}

// Server serves one observed page component to any number of WebSocket
// clients, each with an isolated host and instance.
type Server struct {
	page     func() observer.RenderFunc
	cfg      Config
	router   chi.Router
	upgrader websocket.Upgrader
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewServer creates a Server for the given page. The page constructor is
// invoked once per connection so per-session signals created inside it are
// not shared between clients.
func NewServer(page func() observer.RenderFunc, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		page:     page,
		cfg:      cfg,
		renderer: render.NewRenderer(),
		logger:   cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	s.router = r

	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleIndex serves the HTML shell with the first render inlined.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	h := host.New(host.WithLogger(s.logger))
	in := h.Mount(s.page())
	defer in.Unmount()

	html, err := s.renderer.RenderToString(in.LastTree())
	if err != nil {
		s.logger.Error("index render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RenderPasses.Inc()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, shell, escapeTitle(s.cfg.Title), html)
}

// handleWS upgrades the connection and runs a session until either side
// goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s)
	sess.run(r.Context())
}

const shell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<div id="glimmer-root">%s</div>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");
  ws.onmessage = function (ev) {
    var frame = JSON.parse(ev.data);
    document.getElementById("glimmer-root").innerHTML = frame.html;
  };
})();
</script>
</body>
</html>`

func escapeTitle(title string) string {
	if title == "" {
		return "glimmer"
	}
	out := ""
	for _, r := range title {
		switch r {
		case '<':
			out += "&lt;"
		case '>':
			out += "&gt;"
		case '&':
			out += "&amp;"
		default:
			out += string(r)
		}
	}
	return out
}
