package transport

import (
	"context"

	"github.com/relset/elector"
	"google.golang.org/grpc"
)

const serviceName = "elector.Elector"

// ElectorServer is implemented by whatever answers incoming Freshness/Elect
// RPCs — in this module, a thin adapter around *elector.Responder.
type ElectorServer interface {
	SendFresh(context.Context, *elector.FreshQuery) (*elector.FreshReply, error)
	SendElect(context.Context, *elector.ElectRequest) (*elector.ElectReply, error)
}

// ElectorClient is implemented by the gRPC client stub below.
type ElectorClient interface {
	SendFresh(ctx context.Context, in *elector.FreshQuery, opts ...grpc.CallOption) (*elector.FreshReply, error)
	SendElect(ctx context.Context, in *elector.ElectRequest, opts ...grpc.CallOption) (*elector.ElectReply, error)
}

type electorClient struct {
	cc grpc.ClientConnInterface
}

// NewElectorClient wraps cc as an ElectorClient.
func NewElectorClient(cc grpc.ClientConnInterface) ElectorClient {
	return &electorClient{cc: cc}
}

func (c *electorClient) SendFresh(ctx context.Context, in *elector.FreshQuery, opts ...grpc.CallOption) (*elector.FreshReply, error) {
	out := new(elector.FreshReply)
	opts = append(opts, grpc.CallContentSubtype("gob"))
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/SendFresh", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *electorClient) SendElect(ctx context.Context, in *elector.ElectRequest, opts ...grpc.CallOption) (*elector.ElectReply, error) {
	out := new(elector.ElectReply)
	opts = append(opts, grpc.CallContentSubtype("gob"))
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/SendElect", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterElectorServer registers srv on s, mirroring the shape
// protoc-gen-go-grpc emits for RegisterXxxServer.
func RegisterElectorServer(s grpc.ServiceRegistrar, srv ElectorServer) {
	s.RegisterService(&electorServiceDesc, srv)
}

func electorSendFreshHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(elector.FreshQuery)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ElectorServer).SendFresh(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SendFresh"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ElectorServer).SendFresh(ctx, req.(*elector.FreshQuery))
	}
	return interceptor(ctx, in, info, handler)
}

func electorSendElectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(elector.ElectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ElectorServer).SendElect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SendElect"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ElectorServer).SendElect(ctx, req.(*elector.ElectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var electorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ElectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendFresh", Handler: electorSendFreshHandler},
		{MethodName: "SendElect", Handler: electorSendElectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "elector.proto",
}
