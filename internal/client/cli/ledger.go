package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sterilpoint/protokol/internal/client/session"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

// Open loads a client's monthly ledger and makes it the active session.
func (a *App) Open(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		log.Println("log in first")
		return common.ErrorUnauthorized
	}
	if len(args) != 2 {
		log.Println("usage: open <client> <month>")
		return common.ErrorValidation
	}

	l, err := session.OpenLedger(ctx, a.api, a.cache, a.dict, args[0], args[1])
	if err != nil {
		log.Printf("error opening ledger: %v", err)
		return err
	}
	a.ledger = l
	fmt.Printf("Opened %s/%s, %d entries\n", l.ClientID(), l.Month(), l.Len())
	return nil
}

// Documents prints the list of known protocols across all clients.
func (a *App) Documents(ctx context.Context) error {
	summaries, err := a.api.ListProtocols(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, s := range summaries {
		fmt.Printf("%s/%s: %d entries, %d packages\n", s.ClientID, s.Month, s.EntryCount, s.TotalPackages)
	}
	return nil
}

// Clients prints the client directory.
func (a *App) Clients(ctx context.Context) error {
	clients, err := a.api.ListClients(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, c := range clients {
		fmt.Printf("%s: %s\n", c.ID, c.Name)
	}
	return nil
}

// List prints the active ledger sorted by date, with selection markers and
// signature/queue state per entry.
func (a *App) List(ctx context.Context) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}

	for _, ie := range a.ledger.SortedView() {
		fmt.Println(formatEntry(ie.Index, &ie.Entry, a.ledger.IsSelected(ie.Index)))
	}
	fmt.Printf("Total packages: %d\n", a.ledger.Totals().TotalPackages)
	return nil
}

func formatEntry(index int, e *models.Entry, selected bool) string {
	marker := " "
	if selected {
		marker = "*"
	}

	var flags []string
	if e.Signatures.Transfer.Client != "" || e.Signatures.Transfer.Staff != "" {
		flags = append(flags, "T:"+signState(e.Signatures.Transfer))
	}
	if e.Signatures.Return.Client != "" || e.Signatures.Return.Staff != "" {
		flags = append(flags, "R:"+signState(e.Signatures.Return))
	}
	if t, ok := e.Queue.Active(); ok {
		q := string(t)
		if t == models.QueueCourier && e.Queue.CourierPlannedDate != "" {
			q += "@" + e.Queue.CourierPlannedDate
		}
		flags = append(flags, q)
	}

	tools := make([]string, 0, len(e.Tools))
	for _, tool := range e.Tools {
		tools = append(tools, fmt.Sprintf("%s x%d", tool.Name, tool.Count))
	}

	s := fmt.Sprintf("%s[%d] %s -> %s  %s  pkg:%d",
		marker, index, e.Date, e.EffectiveReturnDate(), strings.Join(tools, ", "), e.Packages)
	if len(flags) > 0 {
		s += "  [" + strings.Join(flags, " ") + "]"
	}
	if e.Comment != "" {
		s += "  # " + e.Comment
	}
	return s
}

func signState(l models.LegSignatures) string {
	s := ""
	if l.Client != "" {
		s += "c"
	}
	if l.Staff != "" {
		s += "s"
	}
	return s
}
