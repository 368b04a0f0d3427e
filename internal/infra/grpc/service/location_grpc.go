package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	LocationServiceName = "gotrack.location.v1.LocationService"

	SubmitLocationMethod  = "/" + LocationServiceName + "/SubmitLocation"
	NearestDriversMethod  = "/" + LocationServiceName + "/NearestDrivers"
	ZonesContainingMethod = "/" + LocationServiceName + "/ZonesContaining"
)

// LocationServiceServer carries google.protobuf.Struct payloads so the
// service needs no generated message types.
type LocationServiceServer interface {
	SubmitLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	NearestDrivers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ZonesContaining(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterLocationServiceServer(s grpc.ServiceRegistrar, srv LocationServiceServer) {
	s.RegisterService(&LocationServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(srv LocationServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LocationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LocationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LocationServiceDesc = grpc.ServiceDesc{
	ServiceName: LocationServiceName,
	HandlerType: (*LocationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitLocation",
			Handler:    unaryHandler(SubmitLocationMethod, LocationServiceServer.SubmitLocation),
		},
		{
			MethodName: "NearestDrivers",
			Handler:    unaryHandler(NearestDriversMethod, LocationServiceServer.NearestDrivers),
		},
		{
			MethodName: "ZonesContaining",
			Handler:    unaryHandler(ZonesContainingMethod, LocationServiceServer.ZonesContaining),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gotrack/location/v1/location.proto",
}

type LocationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLocationServiceClient(cc grpc.ClientConnInterface) *LocationServiceClient {
	return &LocationServiceClient{cc: cc}
}

func (c *LocationServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LocationServiceClient) SubmitLocation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SubmitLocationMethod, in, opts...)
}

func (c *LocationServiceClient) NearestDrivers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, NearestDriversMethod, in, opts...)
}

func (c *LocationServiceClient) ZonesContaining(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ZonesContainingMethod, in, opts...)
}
