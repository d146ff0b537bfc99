package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sealvault.v1.ObjectService"

// ObjectServiceServer is implemented by GRPCServer.
type ObjectServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Upload(context.Context, *UploadRequest) (*ObjectResponse, error)
	Download(context.Context, *ObjectRequest) (*DownloadResponse, error)
	Verify(context.Context, *ObjectRequest) (*VerifyResponse, error)
	Share(context.Context, *ShareRequest) (*ObjectResponse, error)
	Unshare(context.Context, *UnshareRequest) (*ObjectResponse, error)
	Delete(context.Context, *ObjectRequest) (*DeleteResponse, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	AuditLog(context.Context, *ObjectRequest) (*AuditLogResponse, error)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a typed handler to grpc.MethodDesc, running the server's
// interceptor chain around it.
func unary[Req, Resp any](method string, call func(ObjectServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(ObjectServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes sealvault.v1.ObjectService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObjectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", ObjectServiceServer.Ping),
		unary("Upload", ObjectServiceServer.Upload),
		unary("Download", ObjectServiceServer.Download),
		unary("Verify", ObjectServiceServer.Verify),
		unary("Share", ObjectServiceServer.Share),
		unary("Unshare", ObjectServiceServer.Unshare),
		unary("Delete", ObjectServiceServer.Delete),
		unary("List", ObjectServiceServer.List),
		unary("AuditLog", ObjectServiceServer.AuditLog),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sealvault/v1/objects",
}
