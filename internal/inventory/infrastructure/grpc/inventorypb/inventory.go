// Package inventorypb holds the wire contract of the inventory gRPC service.
// Messages travel as JSON through the codec registered under CodecName, so
// the contract needs no generated protobuf code.
package inventorypb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	CodecName   = "json"
	ServiceName = "storefront.inventory.v1.InventoryService"

	FetchStockMethod     = "/" + ServiceName + "/FetchStock"
	DecrementStockMethod = "/" + ServiceName + "/DecrementStock"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

type StockLevel struct {
	ProductId     string `json:"product_id"`
	Name          string `json:"name"`
	Quantity      int32  `json:"quantity"`
	MinStockLevel int32  `json:"min_stock_level"`
}

type FetchStockRequest struct {
	ProductIds []string `json:"product_ids"`
}

type FetchStockResponse struct {
	Levels []*StockLevel `json:"levels"`
}

type DecrementStockRequest struct {
	ProductId string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type DecrementStockResponse struct {
	Level *StockLevel `json:"level"`
}

type InventoryServiceServer interface {
	FetchStock(context.Context, *FetchStockRequest) (*FetchStockResponse, error)
	DecrementStock(context.Context, *DecrementStockRequest) (*DecrementStockResponse, error)
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchStock", Handler: fetchStockHandler},
		{MethodName: "DecrementStock", Handler: decrementStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory.json",
}

func fetchStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FetchStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).FetchStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FetchStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).FetchStock(ctx, req.(*FetchStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func decrementStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DecrementStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).DecrementStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DecrementStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServiceServer).DecrementStock(ctx, req.(*DecrementStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type InventoryServiceClient interface {
	FetchStock(ctx context.Context, in *FetchStockRequest, opts ...grpc.CallOption) (*FetchStockResponse, error)
	DecrementStock(ctx context.Context, in *DecrementStockRequest, opts ...grpc.CallOption) (*DecrementStockResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func (c *inventoryServiceClient) FetchStock(ctx context.Context, in *FetchStockRequest, opts ...grpc.CallOption) (*FetchStockResponse, error) {
	out := new(FetchStockResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FetchStockMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) DecrementStock(ctx context.Context, in *DecrementStockRequest, opts ...grpc.CallOption) (*DecrementStockResponse, error) {
	out := new(DecrementStockResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, DecrementStockMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
