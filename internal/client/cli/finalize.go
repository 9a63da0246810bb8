package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/netx"
)

// Finalize promotes the selected entries of the active ledger into a stored
// export snapshot. Every selected entry must carry a staff signature, sit in
// the given queue, and not belong to an earlier snapshot; one failing entry
// aborts the whole batch.
func (a *App) Finalize(ctx context.Context, args []string) error {
	if !a.hasLedger() {
		log.Println("open a ledger first")
		return common.ErrorValidation
	}
	if len(args) != 1 {
		log.Println("usage: finalize <courier|point>")
		return common.ErrorValidation
	}

	rec, err := a.finalizer.Finalize(ctx, a.ledger, models.QueueType(args[0]))
	if err != nil {
		log.Printf("finalization refused: %v", err)
		return err
	}
	fmt.Printf("Finalized %d entries into %s\n", len(rec.Fingerprints), rec.Name)
	return nil
}

// Exports prints stored export snapshots, optionally narrowed to a month.
func (a *App) Exports(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		log.Println("log in first")
		return common.ErrorUnauthorized
	}

	month := ""
	if len(args) > 0 {
		month = args[0]
	}

	records, err := a.api.ListExports(ctx, month)
	if err != nil {
		log.Printf("error listing exports: %v", err)
		return err
	}
	for _, r := range records {
		fmt.Printf("%s  %s/%s  %d packages  %s\n", r.Name, r.ClientID, r.Month, r.TotalPackages, r.ID)
	}
	return nil
}

// Fetch downloads a stored snapshot document into a local file. The server
// hands out a short-lived presigned URL and the bytes come straight from
// object storage.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		log.Println("log in first")
		return common.ErrorUnauthorized
	}
	if len(args) != 2 {
		log.Println("usage: fetch <export-id> <file>")
		return common.ErrorValidation
	}

	url, err := a.api.ExportURL(ctx, args[0])
	if err != nil {
		log.Printf("error resolving export: %v", err)
		return err
	}
	body, err := netx.DownloadFromPresignedURL(url)
	if err != nil {
		log.Printf("error downloading export: %v", err)
		return err
	}
	if err := os.WriteFile(args[1], body, 0o660); err != nil {
		log.Printf("error writing %s: %v", args[1], err)
		return err
	}
	fmt.Printf("Saved %d bytes to %s\n", len(body), args[1])
	return nil
}
