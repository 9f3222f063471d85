// Package grpcserver implements the TrackerService gRPC server.
//
// It delegates all business logic to tracker.Service and handles only the
// gRPC transport concerns: principal extraction from metadata, error
// mapping, and conversion between the domain model and protobuf messages.
// Requests and responses are google.protobuf.Struct values, so clients need
// no generated stubs: any gRPC client can call
// /tracker.v1.TrackerService/<Method> with a Struct payload.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "tracker.v1.TrackerService"

// TrackerServer is the server API of TrackerService.
type TrackerServer interface {
	ListApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes TrackerService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListApplications", Handler: unary("ListApplications", TrackerServer.ListApplications)},
		{MethodName: "CreateApplication", Handler: unary("CreateApplication", TrackerServer.CreateApplication)},
		{MethodName: "UpdateStatus", Handler: unary("UpdateStatus", TrackerServer.UpdateStatus)},
		{MethodName: "DeleteApplication", Handler: unary("DeleteApplication", TrackerServer.DeleteApplication)},
		{MethodName: "GetDashboard", Handler: unary("GetDashboard", TrackerServer.GetDashboard)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracker/v1/tracker.proto",
}

// FullMethod returns the path used to invoke method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

func unary(method string, call func(TrackerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TrackerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TrackerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server implements TrackerServer.
type Server struct {
	svc   *tracker.Service
	authn *auth.Authenticator
}

// NewServer constructs a gRPC Server backed by the given tracker.Service.
func NewServer(svc *tracker.Service, authn *auth.Authenticator) *Server {
	return &Server{svc: svc, authn: authn}
}

// Register mounts s on gs.
func Register(gs *grpc.Server, s *Server) {
	gs.RegisterService(&ServiceDesc, s)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListApplications returns the caller's applications, optionally filtered by
// the "query" field.
func (s *Server) ListApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	apps, err := s.svc.ListApplications(ctx, userID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	apps = tracker.FilterByText(apps, stringField(req, "query"))

	list := make([]any, 0, len(apps))
	for i := range apps {
		list = append(list, appToMap(&apps[i]))
	}
	return newStruct(map[string]any{"applications": list})
}

// CreateApplication creates an application from company, role and the
// optional status, appliedDate, followUpDate, notes, location and source fields.
func (s *Server) CreateApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	in := tracker.NewApplication{
		Company:  stringField(req, "company"),
		Role:     stringField(req, "role"),
		Status:   tracker.Status(stringField(req, "status")),
		Notes:    stringField(req, "notes"),
		Location: stringField(req, "location"),
		Source:   stringField(req, "source"),
	}
	if in.AppliedDate, err = timeField(req, "appliedDate"); err != nil {
		return nil, err
	}
	if in.FollowUpDate, err = timeField(req, "followUpDate"); err != nil {
		return nil, err
	}

	app, err := s.svc.CreateApplication(ctx, userID, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(appToMap(app))
}

// UpdateStatus moves applicationId to status.
func (s *Server) UpdateStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	app, err := s.svc.UpdateStatus(ctx, userID, stringField(req, "applicationId"), stringField(req, "status"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(appToMap(app))
}

// DeleteApplication removes applicationId. Deleting a missing record succeeds.
func (s *Server) DeleteApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id := stringField(req, "applicationId")
	if err := s.svc.DeleteApplication(ctx, userID, id); err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(map[string]any{"applicationId": id, "deleted": true})
}

// GetDashboard returns counts, recent applications and upcoming follow-ups.
func (s *Server) GetDashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.svc.Dashboard(ctx, userID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	counts := make(map[string]any, len(d.StatusCounts))
	for st, n := range d.StatusCounts {
		counts[string(st)] = n
	}
	return newStruct(map[string]any{
		"total":             d.Total,
		"statusCounts":      counts,
		"recent":            appsToList(d.Recent),
		"upcomingFollowUps": appsToList(d.FollowUps),
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx resolves the caller from x-user-id or authorization metadata,
// depending on the authenticator's mode.
func (s *Server) userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	p, err := s.authn.Resolve(first(md, "x-user-id"), first(md, "authorization"))
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	return p.UserID, nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *tracker.ValidationError
	var pe *tracker.PersistenceError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, tracker.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, tracker.ErrMissingUser):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.As(err, &pe):
		return status.Error(codes.Unavailable, "record store unavailable")
	}
	return status.Error(codes.Internal, "internal server error")
}

func first(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

func timeField(s *structpb.Struct, key string) (*time.Time, error) {
	raw := stringField(s, key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be RFC 3339: %v", key, err)
	}
	return &t, nil
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

// appToMap converts an Application to the map shape carried in a Struct.
// Timestamps are RFC 3339 strings; an absent follow-up is null.
func appToMap(a *tracker.Application) map[string]any {
	var followUp any
	if a.FollowUpDate != nil {
		followUp = a.FollowUpDate.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"id":           a.ID,
		"userId":       a.UserID,
		"company":      a.Company,
		"role":         a.Role,
		"status":       string(a.Status),
		"appliedDate":  a.AppliedDate.UTC().Format(time.RFC3339),
		"followUpDate": followUp,
		"notes":        a.Notes,
		"location":     a.Location,
		"source":       a.Source,
	}
}

func appsToList(apps []tracker.Application) []any {
	out := make([]any, 0, len(apps))
	for i := range apps {
		out = append(out, appToMap(&apps[i]))
	}
	return out
}
