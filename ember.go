package ember

import (
	"net"
	"os"

	"github.com/ember-web/ember/config"
	"github.com/ember-web/ember/http"
	"github.com/ember-web/ember/internal/protocol/http1"
	"github.com/ember-web/ember/kv"
	"github.com/ember-web/ember/router"
	"github.com/ember-web/ember/transport"
	"github.com/rs/zerolog"
)

const preallocHeaders = 16

// App wires the listener, the per-connection protocol engine and a router into
// a runnable origin server.
type App struct {
	cfg   *config.Config
	log   zerolog.Logger
	tcp   *transport.TCP
	hooks hooks
}

// New returns a new App instance with the default config, listening on the
// default bind address unless tuned otherwise.
func New() *App {
	return &App{
		cfg: config.Default(),
		log: zerolog.New(os.Stderr).With().Timestamp().Logger(),
		tcp: transport.NewTCP(),
	}
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default stderr logger.
func (a *App) Logger(log zerolog.Logger) *App {
	a.log = log
	return a
}

// NotifyOnStart calls the callback at the moment the listener is bound.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback after the listener went down and all the
// connections were served till the end.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the configured address and processes connections until Stop is
// called or the listener fails.
func (a *App) Serve(r router.Router) error {
	if err := a.tcp.Bind(a.cfg.NET.Addr); err != nil {
		return err
	}

	callIfNotNil(a.hooks.OnStart)

	err := a.tcp.Listen(a.cfg.NET, func(conn net.Conn) {
		a.serveConn(conn, r)
	})

	a.tcp.Close()
	a.tcp.Wait()
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop makes the accept loop exit after its current interrupt period. Already
// accepted connections are served till the end.
func (a *App) Stop() {
	a.tcp.Stop()
}

func (a *App) serveConn(conn net.Conn, r router.Router) {
	client := transport.NewClient(conn, a.cfg.NET.ReadTimeout, make([]byte, a.cfg.NET.ReadBufferSize))
	request := http.NewRequest(client, kv.NewPrealloc(preallocHeaders))

	http1.New(a.cfg, r, client, request, a.log).Serve()
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
