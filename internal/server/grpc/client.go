package grpc

import (
	"context"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls ObjectService over an existing connection. It is used by
// tests and tooling; every call carries the configured access token.
type Client struct {
	conn  grpc.ClientConnInterface
	token string
	opts  []grpc.CallOption
}

func NewClient(conn grpc.ClientConnInterface, opts ...grpc.CallOption) *Client {
	return &Client{conn: conn, opts: append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, c.token)
	}
	return c.conn.Invoke(ctx, fullMethod(method), in, out, c.opts...)
}

// call invokes method and decodes the reply into a fresh T.
func call[T any](ctx context.Context, c *Client, method string, in any) (*T, error) {
	out := new(T)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	return call[PingResponse](ctx, c, "Ping", &PingRequest{})
}

func (c *Client) Upload(ctx context.Context, in *UploadRequest) (*ObjectResponse, error) {
	return call[ObjectResponse](ctx, c, "Upload", in)
}

func (c *Client) Download(ctx context.Context, id string) (*DownloadResponse, error) {
	return call[DownloadResponse](ctx, c, "Download", &ObjectRequest{ID: id})
}

func (c *Client) Verify(ctx context.Context, id string) (*VerifyResponse, error) {
	return call[VerifyResponse](ctx, c, "Verify", &ObjectRequest{ID: id})
}

func (c *Client) Share(ctx context.Context, in *ShareRequest) (*ObjectResponse, error) {
	return call[ObjectResponse](ctx, c, "Share", in)
}

func (c *Client) Unshare(ctx context.Context, in *UnshareRequest) (*ObjectResponse, error) {
	return call[ObjectResponse](ctx, c, "Unshare", in)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := call[DeleteResponse](ctx, c, "Delete", &ObjectRequest{ID: id})
	return err
}

func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	return call[ListResponse](ctx, c, "List", &ListRequest{})
}

func (c *Client) AuditLog(ctx context.Context, id string) (*AuditLogResponse, error) {
	return call[AuditLogResponse](ctx, c, "AuditLog", &ObjectRequest{ID: id})
}
