package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/storefront-orders/internal/inventory/application"
	"github.com/dmehra2102/storefront-orders/internal/inventory/domain"
	pb "github.com/dmehra2102/storefront-orders/internal/inventory/infrastructure/grpc/inventorypb"
)

type Server struct {
	log   *slog.Logger
	store application.Store
}

func NewServer(log *slog.Logger, store application.Store) *Server {
	return &Server{log: log, store: store}
}

func (s *Server) FetchStock(ctx context.Context, req *pb.FetchStockRequest) (*pb.FetchStockResponse, error) {
	if len(req.ProductIds) == 0 {
		return &pb.FetchStockResponse{}, nil
	}
	levels, err := s.store.Fetch(ctx, req.ProductIds)
	if err != nil {
		s.log.Error("fetch stock failed", "products", len(req.ProductIds), "err", err)
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	resp := &pb.FetchStockResponse{Levels: make([]*pb.StockLevel, 0, len(levels))}
	for _, l := range levels {
		resp.Levels = append(resp.Levels, ToProto(l))
	}
	return resp, nil
}

func (s *Server) DecrementStock(ctx context.Context, req *pb.DecrementStockRequest) (*pb.DecrementStockResponse, error) {
	if req.ProductId == "" || req.Quantity < 1 {
		return nil, status.Error(codes.InvalidArgument, "product_id and a positive quantity are required")
	}
	l, err := s.store.Decrement(ctx, req.ProductId, int(req.Quantity))
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return nil, status.Errorf(codes.FailedPrecondition, "%s: %d available, %d requested", req.ProductId, l.Quantity, req.Quantity)
	case errors.Is(err, domain.ErrProductNotFound):
		return nil, status.Errorf(codes.NotFound, "product %s not found", req.ProductId)
	case err != nil:
		s.log.Error("decrement stock failed", "product_id", req.ProductId, "err", err)
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &pb.DecrementStockResponse{Level: ToProto(l)}, nil
}

func ToProto(l domain.StockLevel) *pb.StockLevel {
	return &pb.StockLevel{
		ProductId:     l.ProductID,
		Name:          l.Name,
		Quantity:      int32(l.Quantity),
		MinStockLevel: int32(l.MinStockLevel),
	}
}

func FromProto(l *pb.StockLevel) domain.StockLevel {
	if l == nil {
		return domain.StockLevel{}
	}
	return domain.StockLevel{
		ProductID:     l.ProductId,
		Name:          l.Name,
		Quantity:      int(l.Quantity),
		MinStockLevel: int(l.MinStockLevel),
	}
}

func Run(addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	pb.RegisterInventoryServiceServer(gs, srv)
	go func() {
		if err := gs.Serve(lis); err != nil {
			srv.log.Error("grpc serve stopped", "err", err)
		}
	}()
	return gs, nil
}
