package rpc

import (
	"context"
	"encoding/json"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/obsidianstack/valvecalc/internal/api"
	"github.com/obsidianstack/valvecalc/internal/auth"
	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "valvecalc.v1.Calculator"

// Full method names.
const (
	MethodCompute = "/" + ServiceName + "/Compute"
	MethodBypass  = "/" + ServiceName + "/Bypass"
)

// CalculatorServer is the server API for valvecalc.v1.Calculator.
type CalculatorServer interface {
	Compute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Bypass(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compute", Handler: unaryHandler(MethodCompute, CalculatorServer.Compute)},
		{MethodName: "Bypass", Handler: unaryHandler(MethodBypass, CalculatorServer.Bypass)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "valvecalc/v1/calculator",
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&serviceDesc, srv)
}

func unaryHandler(fullMethod string, call func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Service implements CalculatorServer on top of calc.Service.
type Service struct {
	svc *calc.Service
}

// NewService returns the gRPC calculator backed by svc.
func NewService(svc *calc.Service) *Service {
	return &Service{svc: svc}
}

// Compute runs one calculation. in is an api.ValvesRequest document.
func (s *Service) Compute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.ValvesRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	rep, err := s.svc.Compute(req.Config(s.svc.DefaultDecimals()))
	if err != nil {
		return nil, statusFor(err)
	}
	return toStruct(rep)
}

// Bypass computes a single split valve. in is an api.BypassRequest document.
func (s *Service) Bypass(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.BypassRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	d := s.svc.DefaultDecimals()
	if req.Decimals != nil {
		d = valve.ClampDecimals(*req.Decimals)
	}
	pct, err := s.svc.Bypass(req.Bypass, req.Main, d)
	if err != nil {
		return nil, statusFor(err)
	}
	return toStruct(api.BypassResponse{Percent: pct, Decimals: d})
}

// NewServer builds a gRPC server with the calculator and health services and
// the API key interceptor configured from a.
func NewServer(svc *calc.Service, a config.AuthConfig) *grpc.Server {
	interceptor := auth.APIKeyInterceptor(a.Mode, a.EffectiveHeader(), a.Key())
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor))

	RegisterCalculatorServer(s, NewService(svc))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return s
}

func statusFor(err error) error {
	code := api.ErrorCode(err)
	if code == "internal" {
		slog.Error("rpc: compute failed", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(in *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// toStruct encodes v into a Struct through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
