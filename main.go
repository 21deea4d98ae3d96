package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/bookbridge-io/bookbridge/config"
	"github.com/bookbridge-io/bookbridge/infrastructure/prometheus"
	"github.com/bookbridge-io/bookbridge/infrastructure/publisher"
	"github.com/bookbridge-io/bookbridge/provider"
	"github.com/bookbridge-io/bookbridge/rpc"
	"github.com/bookbridge-io/bookbridge/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}
	conf := config.Load()

	go promclient.StartPromClientServer(conf.MetricsPort)

	pub, err := publisher.FromConfig(conf)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}
	defer pub.Close()

	connManager := provider.NewConnectionManager(conf)
	connManager.Init()
	defer connManager.Close()

	orderbookSnapshotUseCase := usecase.NewOrderBookSnapshotUseCase(connManager, pub)
	validationService := rpc.NewValidationService(conf)

	server := rpc.NewServer(orderbookSnapshotUseCase, validationService)
	if err := server.Serve(conf.GRPCPort); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
