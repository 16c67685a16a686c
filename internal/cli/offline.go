package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/librefy/librefy-cli/internal/library"
)

// Download makes a book available offline on this device. The progress ramp
// runs synchronously; Ctrl-C or a removeoffline from another session cancels it.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: download <bookID>")
		return nil
	}
	bookID := args[0]

	printlnFn("Downloading", bookID, "...")
	if err := a.library.DownloadOffline(ctx, bookID); err != nil {
		printlnFn("Download failed:", err)
		return err
	}
	printlnFn("Done;", bookID, "is available offline")
	return nil
}

// Renew extends this device's offline license for the book.
func (a *App) Renew(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: renew <bookID>")
		return nil
	}
	if err := a.library.RenewOffline(ctx, args[0]); err != nil {
		printlnFn("Renew failed:", err)
		return err
	}
	for _, e := range a.library.Entries() {
		if e.BookID == args[0] && e.OfflineExpiresAt != nil {
			printlnFn("Renewed until", e.OfflineExpiresAt.Format("2006-01-02"))
			return nil
		}
	}
	printlnFn("Renewed")
	return nil
}

// RemoveOffline revokes this device's license and frees the local copy.
func (a *App) RemoveOffline(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: removeoffline <bookID>")
		return nil
	}
	if err := a.library.RemoveOffline(ctx, args[0]); err != nil {
		printlnFn("Remove offline failed:", err)
		return err
	}
	printlnFn("Offline copy removed for", args[0])
	return nil
}

// Licenses lists this account's offline licenses with their expiry state.
func (a *App) Licenses(ctx context.Context) error {
	licenses := a.library.Licenses()
	if len(licenses) == 0 {
		printlnFn("No offline licenses")
		return nil
	}

	now := time.Now()
	for _, lic := range licenses {
		state := library.ClassifyExpiry(lic.ExpiresAt, now)
		printlnFn(fmt.Sprintf("%-12s %q device=%s expires=%s (%s)",
			lic.Book.ID, lic.Book.Title, lic.DeviceID, lic.ExpiresAt.Format("2006-01-02"), state))
	}
	return nil
}
