package grpc

import (
	"context"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[common.Kind]codes.Code{
	common.KindValidation:    codes.InvalidArgument,
	common.KindNotFound:      codes.NotFound,
	common.KindAuthorization: codes.PermissionDenied,
	common.KindIntegrity:     codes.DataLoss,
	common.KindTamperBlocked: codes.FailedPrecondition,
	common.KindStorage:       codes.Unavailable,
}

// toStatus maps a service error onto a gRPC status. Integrity and tamper
// failures keep their message; internal failures are logged and hidden.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := common.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	if kind == common.KindIntegrity || kind == common.KindTamperBlocked {
		s.logger.Warn(ctx, "security failure", "method", method, "kind", string(kind), "error", err)
	}

	return status.Error(code, err.Error())
}
