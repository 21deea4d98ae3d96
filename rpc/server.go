package rpc

import (
	"fmt"
	"log"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/bookbridge-io/bookbridge/gen"
	"github.com/bookbridge-io/bookbridge/usecase"
)

var logger = log.New(os.Stdout, "[rpc] ", log.LstdFlags)

type server struct {
	orderbookSnapshotUseCase *usecase.OrderBookSnapshotUseCase
	gen.UnimplementedMarketDataServiceServer
	validationService *ValidationService
}

func NewServer(
	orderbookSnapshotUseCase *usecase.OrderBookSnapshotUseCase,
	validationService *ValidationService,
) *server {
	return &server{
		orderbookSnapshotUseCase: orderbookSnapshotUseCase,
		validationService:        validationService,
	}
}

// Serve blocks on the listener until the process exits.
func (s *server) Serve(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", port, err)
	}

	grpcServer := grpc.NewServer()
	gen.RegisterMarketDataServiceServer(grpcServer, s)

	logger.Printf("grpc server listening at %s", lis.Addr())
	return grpcServer.Serve(lis)
}
