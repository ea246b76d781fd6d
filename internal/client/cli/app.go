package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/KaityXD/choas-lib/internal/client/client"
	"github.com/KaityXD/choas-lib/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	openFn func(name string) (io.ReadCloser, error)
}

func NewApp(c *config.Config) (*App, error) {
	hc := &http.Client{}
	api := client.NewHTTPClient(c.ServerURL, hc)

	return &App{
		config: c,
		client: api,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		openFn: func(name string) (io.ReadCloser, error) { return os.Open(name) },
	}, nil
}

// Run checks that the server answers, then blocks in the REPL until the
// user exits or stdin closes. An open session is revoked on the way out.
func (a *App) Run(ctx context.Context) {
	pctx, cancel := a.requestContext(ctx)
	if err := a.client.Ping(pctx); err != nil {
		log.Printf("server %s is not reachable: %v", a.config.ServerURL, err)
	}
	cancel()

	defer func() {
		if a.client.LoggedIn() {
			lctx, cancel := a.requestContext(context.Background())
			defer cancel()
			_ = a.client.Logout(lctx)
		}
	}()

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "admin"
	}
	return "guest"
}

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
