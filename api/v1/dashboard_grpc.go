package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the dashboard service.
const ServiceName = "competency.v1.DashboardService"

const (
	MethodGetRegions            = "GetRegions"
	MethodGetCatalog            = "GetCatalog"
	MethodGetBarChart           = "GetBarChart"
	MethodGetHeatmap            = "GetHeatmap"
	MethodGetRadarChart         = "GetRadarChart"
	MethodGetSubCompetencyRadar = "GetSubCompetencyRadar"
	MethodGetSubCompetencyChart = "GetSubCompetencyChart"
	MethodGetBubbleMatrix       = "GetBubbleMatrix"
	MethodGetTalentDistribution = "GetTalentDistribution"
	MethodInvalidateCatalog     = "InvalidateCatalog"
	MethodTransform             = "Transform"
)

// FullMethod returns the "/service/method" path of a dashboard method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// DashboardServiceServer is the server API for the dashboard service. Every method takes and
// returns a google.protobuf.Struct; see RequestStruct and ResponseStruct for the layout.
type DashboardServiceServer interface {
	GetRegions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBarChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHeatmap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRadarChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSubCompetencyRadar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSubCompetencyChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBubbleMatrix(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTalentDistribution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InvalidateCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedDashboardServiceServer()
}

// UnimplementedDashboardServiceServer must be embedded to have forward compatible implementations.
type UnimplementedDashboardServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedDashboardServiceServer) GetRegions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetRegions)
}
func (UnimplementedDashboardServiceServer) GetCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetCatalog)
}
func (UnimplementedDashboardServiceServer) GetBarChart(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetBarChart)
}
func (UnimplementedDashboardServiceServer) GetHeatmap(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetHeatmap)
}
func (UnimplementedDashboardServiceServer) GetRadarChart(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetRadarChart)
}
func (UnimplementedDashboardServiceServer) GetSubCompetencyRadar(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetSubCompetencyRadar)
}
func (UnimplementedDashboardServiceServer) GetSubCompetencyChart(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetSubCompetencyChart)
}
func (UnimplementedDashboardServiceServer) GetBubbleMatrix(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetBubbleMatrix)
}
func (UnimplementedDashboardServiceServer) GetTalentDistribution(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetTalentDistribution)
}
func (UnimplementedDashboardServiceServer) InvalidateCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodInvalidateCatalog)
}
func (UnimplementedDashboardServiceServer) Transform(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodTransform)
}
func (UnimplementedDashboardServiceServer) mustEmbedUnimplementedDashboardServiceServer() {}

type unaryCall func(DashboardServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DashboardService_ServiceDesc is the grpc.ServiceDesc for the dashboard service.
var DashboardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodGetRegions, Handler: unaryHandler(MethodGetRegions, DashboardServiceServer.GetRegions)},
		{MethodName: MethodGetCatalog, Handler: unaryHandler(MethodGetCatalog, DashboardServiceServer.GetCatalog)},
		{MethodName: MethodGetBarChart, Handler: unaryHandler(MethodGetBarChart, DashboardServiceServer.GetBarChart)},
		{MethodName: MethodGetHeatmap, Handler: unaryHandler(MethodGetHeatmap, DashboardServiceServer.GetHeatmap)},
		{MethodName: MethodGetRadarChart, Handler: unaryHandler(MethodGetRadarChart, DashboardServiceServer.GetRadarChart)},
		{MethodName: MethodGetSubCompetencyRadar, Handler: unaryHandler(MethodGetSubCompetencyRadar, DashboardServiceServer.GetSubCompetencyRadar)},
		{MethodName: MethodGetSubCompetencyChart, Handler: unaryHandler(MethodGetSubCompetencyChart, DashboardServiceServer.GetSubCompetencyChart)},
		{MethodName: MethodGetBubbleMatrix, Handler: unaryHandler(MethodGetBubbleMatrix, DashboardServiceServer.GetBubbleMatrix)},
		{MethodName: MethodGetTalentDistribution, Handler: unaryHandler(MethodGetTalentDistribution, DashboardServiceServer.GetTalentDistribution)},
		{MethodName: MethodInvalidateCatalog, Handler: unaryHandler(MethodInvalidateCatalog, DashboardServiceServer.InvalidateCatalog)},
		{MethodName: MethodTransform, Handler: unaryHandler(MethodTransform, DashboardServiceServer.Transform)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterDashboardServiceServer registers srv with s.
func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&DashboardService_ServiceDesc, srv)
}

// DashboardServiceClient is the client API for the dashboard service.
type DashboardServiceClient interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dashboardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardServiceClient(cc grpc.ClientConnInterface) DashboardServiceClient {
	return &dashboardServiceClient{cc}
}

// Call invokes one of the Method* names.
func (c *dashboardServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
