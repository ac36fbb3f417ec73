package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stp-explore/ilha-server/internal/catalog"
	"github.com/stp-explore/ilha-server/internal/config"
	"github.com/stp-explore/ilha-server/internal/db"
	"github.com/stp-explore/ilha-server/internal/events"
	"github.com/stp-explore/ilha-server/internal/metrics"
	"github.com/stp-explore/ilha-server/internal/planner"
	"github.com/stp-explore/ilha-server/internal/routing"
	"github.com/stp-explore/ilha-server/internal/server"
	websocketControllers "github.com/stp-explore/ilha-server/internal/server/websocket"
	"github.com/stp-explore/ilha-server/internal/storage"
	"github.com/ztrue/shutdown"
	"golang.org/x/sync/errgroup"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ilha-server",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	slog.Info("ilha-server", "version", cmd.Annotations["version"], "commit", cmd.Annotations["commit"])

	config, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	database, err := db.MakeDB(config)
	if err != nil {
		return fmt.Errorf("failed to make database: %w", err)
	}
	slog.Info("Database connection established")

	store, err := catalog.Load(database)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("Catalog loaded", "locations", store.Len())

	gateway, err := routing.NewGateway(routing.GatewayConfig{
		BaseURL: config.Routing.BaseURL,
		APIKey:  config.Routing.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create routing gateway: %w", err)
	}

	images, err := storage.NewStorage(config)
	if err != nil {
		return fmt.Errorf("failed to open image storage: %w", err)
	}
	defer images.Close()

	m := metrics.NewMetrics()
	m.SetCatalogLocations(store.Len())

	bus := events.NewEventBus()
	planSocket := websocketControllers.CreatePlanSocket(m)
	p := planner.NewPlanner(store, gateway, planSocket, m, bus)
	planSocket.SetPlanner(p)

	publisherCtx, cancelPublisher := context.WithCancel(context.Background())
	defer cancelPublisher()
	publisherGroup, publisherCtx := errgroup.WithContext(publisherCtx)
	if config.NATS.Enabled {
		publisher, err := events.NewNATSPublisher(config.NATS.URL, bus)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		publisherGroup.Go(func() error {
			return publisher.Run(publisherCtx)
		})
		slog.Info("Event publisher connected", "url", config.NATS.URL)
	}

	slog.Info("Starting HTTP server")
	srv := server.NewServer(config, store, p, images, planSocket)
	err = srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	stop := func(_ os.Signal) {
		slog.Info("Shutting down")

		errGrp := errgroup.Group{}

		errGrp.Go(func() error {
			return srv.Stop()
		})
		errGrp.Go(func() error {
			cancelPublisher()
			return publisherGroup.Wait()
		})

		err := errGrp.Wait()
		if err != nil {
			slog.Error("Shutdown error", "error", err.Error())
		}
		slog.Info("Shutdown complete")
	}

	if cmd.Annotations["version"] == "testing" {
		doneChannel := make(chan struct{})
		go func() {
			slog.Info("Sleeping for 5 seconds")
			time.Sleep(5 * time.Second)
			slog.Info("Sending SIGTERM")
			stop(syscall.SIGTERM)
			doneChannel <- struct{}{}
		}()
		<-doneChannel
	} else {
		shutdown.AddWithParam(stop)
		shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT)
	}

	return nil
}
