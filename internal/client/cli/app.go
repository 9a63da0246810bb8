// Package cli is the operator REPL: it hosts the ledger session, signature
// pads and finalization gate against the Protokol server, with a local
// SQLite cache for drafts and finalized fingerprints.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sterilpoint/protokol/internal/client/api"
	"github.com/sterilpoint/protokol/internal/client/cache"
	"github.com/sterilpoint/protokol/internal/client/config"
	"github.com/sterilpoint/protokol/internal/client/session"
	"github.com/sterilpoint/protokol/internal/tooldict"
)

type App struct {
	config    *config.Config
	api       api.Client
	cache     *cache.Cache
	dict      *tooldict.Dictionary
	ledger    *session.Ledger
	finalizer *session.Finalizer
	userName  string
	reader    *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	localCache, err := cache.Open(ctx, c.CachePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	apiClient := api.NewHTTPClient(c.ServerEndpointAddr, &http.Client{Timeout: c.RequestTimeout})

	return &App{
		config:    c,
		api:       apiClient,
		cache:     localCache,
		finalizer: session.NewFinalizer(apiClient, localCache),
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.cache.Close()

	fmt.Println("Protokol CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) hasLedger() bool {
	return a.ledger != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName
	}
	if a.ledger != nil {
		s = fmt.Sprintf("%s %s/%s", s, a.ledger.ClientID(), a.ledger.Month())
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
