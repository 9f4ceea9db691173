package nem12v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "nem12.v1.MeterReadService"

	ListMeterReadsFullMethodName = "/" + ServiceName + "/ListMeterReads"
	ParseFileFullMethodName      = "/" + ServiceName + "/ParseFile"
)

// MeterReadServiceServer is the server API for MeterReadService.
type MeterReadServiceServer interface {
	ListMeterReads(context.Context, *ListMeterReadsRequest) (*ListMeterReadsResponse, error)
	ParseFile(context.Context, *ParseFileRequest) (*ParseFileResponse, error)
}

// UnimplementedMeterReadServiceServer can be embedded to satisfy MeterReadServiceServer.
type UnimplementedMeterReadServiceServer struct{}

func (UnimplementedMeterReadServiceServer) ListMeterReads(context.Context, *ListMeterReadsRequest) (*ListMeterReadsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMeterReads not implemented")
}

func (UnimplementedMeterReadServiceServer) ParseFile(context.Context, *ParseFileRequest) (*ParseFileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ParseFile not implemented")
}

func RegisterMeterReadServiceServer(s grpc.ServiceRegistrar, srv MeterReadServiceServer) {
	s.RegisterService(&MeterReadServiceDesc, srv)
}

// MeterReadServiceDesc is the grpc.ServiceDesc for MeterReadService.
var MeterReadServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MeterReadServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListMeterReads", Handler: listMeterReadsHandler},
		{MethodName: "ParseFile", Handler: parseFileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nem12/v1/meterread.proto",
}

func listMeterReadsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		typed, err := listMeterReadsRequestFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		resp, err := srv.(MeterReadServiceServer).ListMeterReads(ctx, typed)
		if err != nil {
			return nil, err
		}
		return encodeResponse(resp.toStruct())
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListMeterReadsFullMethodName}
	return interceptor(ctx, in, info, call)
}

func parseFileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		resp, err := srv.(MeterReadServiceServer).ParseFile(ctx, &ParseFileRequest{Content: req.(*wrapperspb.BytesValue).GetValue()})
		if err != nil {
			return nil, err
		}
		return encodeResponse(resp.toStruct())
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseFileFullMethodName}
	return interceptor(ctx, in, info, call)
}

func encodeResponse(s *structpb.Struct, err error) (any, error) {
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

// MeterReadServiceClient is the client API for MeterReadService.
type MeterReadServiceClient interface {
	ListMeterReads(ctx context.Context, in *ListMeterReadsRequest, opts ...grpc.CallOption) (*ListMeterReadsResponse, error)
	ParseFile(ctx context.Context, in *ParseFileRequest, opts ...grpc.CallOption) (*ParseFileResponse, error)
}

type meterReadServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMeterReadServiceClient(cc grpc.ClientConnInterface) MeterReadServiceClient {
	return &meterReadServiceClient{cc: cc}
}

func (c *meterReadServiceClient) ListMeterReads(ctx context.Context, in *ListMeterReadsRequest, opts ...grpc.CallOption) (*ListMeterReadsResponse, error) {
	req, err := in.toStruct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode request: %v", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListMeterReadsFullMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	resp, err := listMeterReadsResponseFromStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "decode response: %v", err)
	}
	return resp, nil
}

func (c *meterReadServiceClient) ParseFile(ctx context.Context, in *ParseFileRequest, opts ...grpc.CallOption) (*ParseFileResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ParseFileFullMethodName, wrapperspb.Bytes(in.Content), out, opts...); err != nil {
		return nil, err
	}
	resp, err := parseFileResponseFromStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "decode response: %v", err)
	}
	return resp, nil
}
