package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

// Add interviews the operator for a new entry and appends it to the active
// ledger. A draft that fails to submit is kept in the local cache and offered
// back on the next attempt, so a dropped connection never loses typed input.
func (a *App) Add(ctx context.Context) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}

	draft, err := a.resumeDraft(ctx)
	if err != nil {
		return err
	}
	if draft == nil {
		draft, err = a.promptEntry()
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
	}

	index, err := a.ledger.Create(ctx, draft)
	if err != nil {
		log.Printf("error adding entry: %v", err)
		if saveErr := a.cache.SaveDraft(ctx, a.ledger.ClientID(), a.ledger.Month(), draft); saveErr != nil {
			log.Printf("error saving draft: %v", saveErr)
		} else {
			log.Println("draft saved, run 'add' again to retry")
		}
		return err
	}

	if err := a.cache.ClearDraft(ctx, a.ledger.ClientID(), a.ledger.Month()); err != nil {
		log.Printf("error clearing draft: %v", err)
	}
	fmt.Printf("Added entry %d\n", index)
	return nil
}

// resumeDraft returns a previously saved draft if the operator wants it back,
// or nil when there is none or it was declined. A declined draft is dropped.
func (a *App) resumeDraft(ctx context.Context) (*models.Entry, error) {
	draft, err := a.cache.LoadDraft(ctx, a.ledger.ClientID(), a.ledger.Month())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		log.Printf("error reading draft: %v", err)
		return nil, err
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Found an unsent draft dated %s, resume it? (y/n)", draft.Date), os.Stdout)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(answer, "y") {
		return draft, nil
	}
	if err := a.cache.ClearDraft(ctx, a.ledger.ClientID(), a.ledger.Month()); err != nil {
		log.Printf("error clearing draft: %v", err)
	}
	return nil, nil
}

func (a *App) promptEntry() (*models.Entry, error) {
	date, err := GetSimpleText(a.reader, "Transfer date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return nil, err
	}

	tools, err := GetTools(a.reader, "Tools", os.Stdout)
	if err != nil {
		return nil, err
	}

	packages, err := GetInt(a.reader, "Packages (default 1)", 1, os.Stdout)
	if err != nil {
		return nil, err
	}

	service, err := GetSimpleText(a.reader, "Service (none/shipping/courierSingle/courierDouble, default none)", os.Stdout)
	if err != nil {
		return nil, err
	}
	if service == "" {
		service = string(models.ServiceNone)
	}

	comment, err := GetSimpleText(a.reader, "Comment (optional)", os.Stdout)
	if err != nil {
		return nil, err
	}

	return &models.Entry{
		Date:     date,
		Tools:    tools,
		Packages: packages,
		Service:  models.ServiceType(service),
		Comment:  comment,
	}, nil
}

// Edit patches the transfer side of one entry. Empty answers keep the
// current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 1 {
		log.Println("usage: edit <index>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}

	var patch models.EntryPatch

	date, err := GetSimpleText(a.reader, "Transfer date (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if date != "" {
		patch.Date = &date
	}

	tools, err := GetTools(a.reader, "Tools (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if len(tools) > 0 {
		patch.Tools = &tools
	}

	packages, err := GetInt(a.reader, "Packages (empty keeps current)", 0, os.Stdout)
	if err != nil {
		return err
	}
	if packages > 0 {
		patch.Packages = &packages
	}

	service, err := GetSimpleText(a.reader, "Service (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if service != "" {
		s := models.ServiceType(service)
		patch.Service = &s
	}

	comment, err := GetSimpleText(a.reader, "Comment (empty keeps current, '-' clears)", os.Stdout)
	if err != nil {
		return err
	}
	if comment == "-" {
		empty := ""
		patch.Comment = &empty
	} else if comment != "" {
		patch.Comment = &comment
	}

	if patch.Empty() {
		fmt.Println("Nothing to change")
		return nil
	}
	if err := a.ledger.Update(ctx, index, patch); err != nil {
		log.Printf("error updating entry: %v", err)
		return err
	}
	fmt.Println("Updated")
	return nil
}

// Return records the return leg of one entry. Empty answers keep the
// fallback behavior: next business day, same tools, same package count.
func (a *App) Return(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 1 {
		log.Println("usage: return <index>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}

	var patch models.EntryPatch

	date, err := GetSimpleText(a.reader, "Return date (empty = next business day)", os.Stdout)
	if err != nil {
		return err
	}
	if date != "" {
		patch.ReturnDate = &date
	}

	tools, err := GetTools(a.reader, "Returned tools (empty = same as transferred)", os.Stdout)
	if err != nil {
		return err
	}
	if len(tools) > 0 {
		patch.ReturnTools = &tools
	}

	packages, err := GetInt(a.reader, "Returned packages (empty = same as transferred)", 0, os.Stdout)
	if err != nil {
		return err
	}
	if packages > 0 {
		patch.ReturnPackages = &packages
	}

	if patch.Empty() {
		fmt.Println("Nothing to record")
		return nil
	}
	if err := a.ledger.Update(ctx, index, patch); err != nil {
		log.Printf("error recording return: %v", err)
		return err
	}
	fmt.Println("Return recorded")
	return nil
}

// Delete removes one entry by index, or every selected entry when called
// without arguments.
func (a *App) Delete(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}

	if len(args) == 0 {
		selected := a.ledger.Selected()
		if len(selected) == 0 {
			log.Println("usage: del <index>, or select entries first")
			return common.ErrorValidation
		}
		outcome := a.ledger.RemoveSelected(ctx)
		indexes := make([]int, 0, len(outcome))
		for i := range outcome {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		var failed bool
		for _, i := range indexes {
			if err := outcome[i]; err != nil {
				log.Printf("entry %d: %v", i, err)
				failed = true
			}
		}
		if failed {
			return common.ErrorInternal
		}
		fmt.Printf("Deleted %d entries\n", len(outcome))
		return nil
	}

	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if err := a.ledger.Remove(ctx, index); err != nil {
		log.Printf("error deleting entry: %v", err)
		return err
	}
	fmt.Println("Deleted")
	return nil
}

// Duplicate appends a copy of an entry's tool list, package count, service
// and comment under a freshly prompted transfer date. The copy starts
// unsigned, unqueued and without a return leg.
func (a *App) Duplicate(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 1 {
		log.Println("usage: dup <index>")
		return common.ErrorValidation
	}
	index, err := parseIndex(args[0])
	if err != nil {
		log.Println(err.Error())
		return err
	}

	dup, err := a.ledger.Duplicate(index)
	if err != nil {
		log.Printf("error duplicating entry: %v", err)
		return err
	}

	date, err := GetSimpleText(a.reader, "Transfer date for the copy (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	dup.Date = date

	newIndex, err := a.ledger.Create(ctx, dup)
	if err != nil {
		log.Printf("error adding duplicate: %v", err)
		return err
	}
	fmt.Printf("Duplicated entry %d as %d\n", index, newIndex)
	return nil
}
