package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	sgrpc "github.com/dmitrijs2005/sealvault/internal/server/grpc"
)

const helpText = `Available commands:
  ping                               check the server is reachable
  upload <path> [name=value ...]     store a file; expires_in=<duration> sets an expiry
  download <id> [out]                fetch and decrypt; writes to out or stdout
  verify <id>                        re-check the stored digest
  share <id> <user|email|id:ID>      grant read access
  unshare <id> <principal-id>        revoke read access
  delete <id>                        delete an object
  list                               list owned and shared objects
  audit <id>                         show the audit log of an owned object
  exit | quit                        leave the prompt`

var errUsage = errors.New("usage")

// now is a test seam for expiry calculation.
var now = time.Now

// Exec runs one command with the configured per-request timeout.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	if a.config != nil && a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}

	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "ping":
		err = a.ping(ctx)
	case "upload":
		err = a.upload(ctx, args)
	case "download":
		err = a.download(ctx, args)
	case "verify":
		err = a.verify(ctx, args)
	case "share":
		err = a.share(ctx, args)
	case "unshare":
		err = a.unshare(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "l", "list":
		err = a.list(ctx)
	case "audit":
		err = a.audit(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(a.out, helpText)
	}
	return err
}

func need(args []string, n int, cmd string) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, cmd, n)
	}
	return nil
}

func (a *App) ping(ctx context.Context) error {
	resp, err := a.api.Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Status)
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	if err := need(args, 1, "upload"); err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	meta, expires, err := parseMetadata(args[1:], now())
	if err != nil {
		return err
	}

	resp, err := a.api.Upload(ctx, &sgrpc.UploadRequest{
		Name:      filepath.Base(args[0]),
		Content:   content,
		Metadata:  meta,
		ExpiresAt: expires,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "uploaded %s (%d bytes) id=%s\n", resp.Object.OriginalName, resp.Object.Size, resp.Object.ID)
	return nil
}

func (a *App) download(ctx context.Context, args []string) error {
	if err := need(args, 1, "download"); err != nil {
		return err
	}

	resp, err := a.api.Download(ctx, args[0])
	if err != nil {
		return err
	}

	if len(args) < 2 {
		_, err := a.out.Write(resp.Content)
		return err
	}

	if err := os.WriteFile(args[1], resp.Content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", args[1], err)
	}
	fmt.Fprintf(a.out, "saved %d bytes to %s\n", len(resp.Content), args[1])
	if owner, ok := resp.Watermark["ownerId"].(string); ok {
		fmt.Fprintf(a.out, "watermark: owner=%s username=%v at=%v\n", owner, resp.Watermark["username"], resp.Watermark["timestamp"])
	}
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	if err := need(args, 1, "verify"); err != nil {
		return err
	}

	resp, err := a.api.Verify(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "matched=%t status=%s\nexpected=%s\nactual=%s\n",
		resp.Matched, resp.Status, resp.ExpectedDigest, resp.ActualDigest)
	return nil
}

func (a *App) share(ctx context.Context, args []string) error {
	if err := need(args, 2, "share"); err != nil {
		return err
	}

	resp, err := a.api.Share(ctx, &sgrpc.ShareRequest{ID: args[0], Target: parseTarget(args[1])})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "shared %s with %d principal(s)\n", resp.Object.ID, len(resp.Object.SharedWith))
	return nil
}

func (a *App) unshare(ctx context.Context, args []string) error {
	if err := need(args, 2, "unshare"); err != nil {
		return err
	}

	resp, err := a.api.Unshare(ctx, &sgrpc.UnshareRequest{ID: args[0], PrincipalID: args[1]})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "shared %s with %d principal(s)\n", resp.Object.ID, len(resp.Object.SharedWith))
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if err := need(args, 1, "delete"); err != nil {
		return err
	}

	if err := a.api.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted", args[0])
	return nil
}

func (a *App) list(ctx context.Context) error {
	resp, err := a.api.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tSTATUS\tOWNER\tCREATED")
	for _, group := range [][]*sgrpc.ObjectInfo{resp.Owned, resp.Shared} {
		for _, o := range group {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				o.ID, o.OriginalName, o.Size, o.Status, o.OwnerID, o.CreatedAt.Format(time.RFC3339))
		}
	}
	return w.Flush()
}

func (a *App) audit(ctx context.Context, args []string) error {
	if err := need(args, 1, "audit"); err != nil {
		return err
	}

	resp, err := a.api.AuditLog(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tACTOR\tTARGET")
	for _, ev := range resp.Events {
		target := ev.TargetPrincipalID
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ev.Timestamp.Format(time.RFC3339), ev.Action, ev.ActorID, target)
	}
	return w.Flush()
}
