package grpc

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	invgrpc "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/grpc"
	pb "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/grpc/inventorypb"
)

// InventoryClient is the inventory store reached over gRPC.
type InventoryClient struct {
	log  *slog.Logger
	conn *grpc.ClientConn
	cc   pb.InventoryServiceClient
}

func NewInventoryClient(log *slog.Logger, addr string, opts ...grpc.DialOption) (*InventoryClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{
		log:  log,
		conn: conn,
		cc:   pb.NewInventoryServiceClient(conn),
	}, nil
}

func (c *InventoryClient) Close() error { return c.conn.Close() }

func (c *InventoryClient) Fetch(ctx context.Context, ids []string) ([]domain.StockLevel, error) {
	resp, err := c.cc.FetchStock(ctx, &pb.FetchStockRequest{ProductIds: ids})
	if err != nil {
		return nil, err
	}
	levels := make([]domain.StockLevel, 0, len(resp.Levels))
	for _, l := range resp.Levels {
		levels = append(levels, invgrpc.FromProto(l))
	}
	return levels, nil
}

func (c *InventoryClient) Decrement(ctx context.Context, id string, qty int) (domain.StockLevel, error) {
	resp, err := c.cc.DecrementStock(ctx, &pb.DecrementStockRequest{ProductId: id, Quantity: int32(qty)})
	if err != nil {
		switch status.Code(err) {
		case codes.FailedPrecondition:
			return domain.StockLevel{}, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, status.Convert(err).Message())
		case codes.NotFound:
			return domain.StockLevel{}, domain.ErrProductNotFound
		}
		return domain.StockLevel{}, err
	}
	return invgrpc.FromProto(resp.Level), nil
}
