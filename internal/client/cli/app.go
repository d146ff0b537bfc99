// Package cli is the sealvault command-line client. It runs a single
// command given on the command line, or an interactive prompt when none is.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sealvault/internal/client/config"
	sgrpc "github.com/dmitrijs2005/sealvault/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ObjectAPI is the remote surface the commands use. *sgrpc.Client
// satisfies it.
type ObjectAPI interface {
	Ping(ctx context.Context) (*sgrpc.PingResponse, error)
	Upload(ctx context.Context, in *sgrpc.UploadRequest) (*sgrpc.ObjectResponse, error)
	Download(ctx context.Context, id string) (*sgrpc.DownloadResponse, error)
	Verify(ctx context.Context, id string) (*sgrpc.VerifyResponse, error)
	Share(ctx context.Context, in *sgrpc.ShareRequest) (*sgrpc.ObjectResponse, error)
	Unshare(ctx context.Context, in *sgrpc.UnshareRequest) (*sgrpc.ObjectResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) (*sgrpc.ListResponse, error)
	AuditLog(ctx context.Context, id string) (*sgrpc.AuditLogResponse, error)
}

type App struct {
	config *config.Config
	api    ObjectAPI
	out    io.Writer
	closer io.Closer
}

// NewApp dials the configured endpoint. The connection is lazy, so an
// unreachable server surfaces on the first command.
func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.ServerEndpointAddr, err)
	}

	api := sgrpc.NewClient(conn).WithToken(c.AccessToken)
	return &App{config: c, api: api, out: os.Stdout, closer: conn}, nil
}

// Run executes args as a single command, or starts the prompt when args is
// empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer func() {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	if len(args) > 0 {
		return a.Exec(ctx, args[0], args[1:])
	}

	fmt.Fprintln(a.out, "sealvault CLI (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(os.Stdin), a.out)
	return nil
}
