package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

// Select marks entries for the next bulk operation. Accepts one index per
// argument.
func (a *App) Select(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) == 0 {
		log.Println("usage: sel <index> [index...]")
		return common.ErrorValidation
	}
	for _, arg := range args {
		index, err := parseIndex(arg)
		if err != nil {
			log.Println(err.Error())
			return err
		}
		if err := a.ledger.Select(index); err != nil {
			log.Printf("entry %s: %v", arg, err)
			return err
		}
	}
	fmt.Printf("Selected: %v\n", a.ledger.Selected())
	return nil
}

// Deselect clears selection marks. Without arguments it clears them all.
func (a *App) Deselect(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) == 0 {
		a.ledger.ClearSelection()
		fmt.Println("Selection cleared")
		return nil
	}
	for _, arg := range args {
		index, err := parseIndex(arg)
		if err != nil {
			log.Println(err.Error())
			return err
		}
		a.ledger.Deselect(index)
	}
	fmt.Printf("Selected: %v\n", a.ledger.Selected())
	return nil
}

// Queue marks every selected entry pending signature through the given
// channel. A courier queue may carry a planned pickup date.
func (a *App) Queue(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) < 1 || len(args) > 2 {
		log.Println("usage: queue <courier|point> [plannedDate]")
		return common.ErrorValidation
	}

	queueType := models.QueueType(args[0])
	plannedDate := ""
	if len(args) == 2 {
		plannedDate = args[1]
	}

	if err := a.ledger.SetQueueSelected(ctx, queueType, plannedDate); err != nil {
		log.Printf("error queueing entries: %v", err)
		return err
	}
	fmt.Println("Queued")
	return nil
}

// Unqueue lowers the pending flag of one entry, whichever channel it sits in.
func (a *App) Unqueue(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 1 {
		log.Println("usage: unqueue <index>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if err := a.ledger.ClearQueue(ctx, index); err != nil {
		log.Printf("error unqueueing entry: %v", err)
		return err
	}
	fmt.Println("Unqueued")
	return nil
}

// Pending prints the server-wide signing queue for one channel, optionally
// narrowed to a month.
func (a *App) Pending(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		log.Println("log in first")
		return common.ErrorUnauthorized
	}
	if len(args) < 1 || len(args) > 2 {
		log.Println("usage: pending <courier|point> [month]")
		return common.ErrorValidation
	}

	month := ""
	if len(args) == 2 {
		month = args[1]
	}

	items, err := a.api.SignQueue(ctx, models.QueueType(args[0]), month)
	if err != nil {
		log.Printf("error listing queue: %v", err)
		return err
	}
	for _, item := range items {
		line := fmt.Sprintf("%s/%s[%d] %s  %s", item.ClientID, item.Month, item.Index, item.ClientName, item.Entry.Date)
		if item.PlannedDate != "" {
			line += "  planned " + item.PlannedDate
		}
		fmt.Println(line)
	}
	return nil
}
