package grpc

import (
	"context"

	"github.com/dmitrijs2005/sealvault/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Upload(ctx context.Context, req *UploadRequest) (*ObjectResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := s.objects.Upload(ctx, userID, services.UploadInput{
		Name:      req.Name,
		MimeType:  req.MimeType,
		Content:   req.Content,
		Metadata:  req.Metadata,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "Upload", err)
	}

	return &ObjectResponse{Object: toObjectInfo(obj)}, nil
}

func (s *GRPCServer) Download(ctx context.Context, req *ObjectRequest) (*DownloadResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.objects.Download(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "Download", err)
	}

	return &DownloadResponse{
		Object:    toObjectInfo(res.Object),
		Content:   res.Content,
		Watermark: res.Watermark,
	}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *ObjectRequest) (*VerifyResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.objects.Verify(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "Verify", err)
	}

	return &VerifyResponse{Result: res}, nil
}

func (s *GRPCServer) Share(ctx context.Context, req *ShareRequest) (*ObjectResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := s.objects.Share(ctx, userID, req.ID, req.Target)
	if err != nil {
		return nil, s.toStatus(ctx, "Share", err)
	}

	return &ObjectResponse{Object: toObjectInfo(obj)}, nil
}

func (s *GRPCServer) Unshare(ctx context.Context, req *UnshareRequest) (*ObjectResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := s.objects.Unshare(ctx, userID, req.ID, req.PrincipalID)
	if err != nil {
		return nil, s.toStatus(ctx, "Unshare", err)
	}

	return &ObjectResponse{Object: toObjectInfo(obj)}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *ObjectRequest) (*DeleteResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.objects.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, "Delete", err)
	}

	return &DeleteResponse{}, nil
}

func (s *GRPCServer) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.objects.List(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "List", err)
	}

	return &ListResponse{Owned: toObjectInfos(list.Owned), Shared: toObjectInfos(list.Shared)}, nil
}

func (s *GRPCServer) AuditLog(ctx context.Context, req *ObjectRequest) (*AuditLogResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.objects.AuditLog(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "AuditLog", err)
	}

	out := make([]AuditEventInfo, 0, len(events))
	for _, ev := range events {
		out = append(out, AuditEventInfo{
			ID:                ev.ID,
			Action:            ev.Action,
			ActorID:           ev.ActorID,
			TargetPrincipalID: ev.TargetPrincipalID,
			Timestamp:         ev.Timestamp,
			Metadata:          ev.Metadata,
		})
	}

	return &AuditLogResponse{Events: out}, nil
}
