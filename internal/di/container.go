// Package di is the composition root: it assembles the store, pipeline,
// workflow, poller, ws hub and rpc server from a loaded configuration.
package di

import (
	"fmt"

	"github.com/nexus-ledger/nexusd/internal/config"
	"github.com/nexus-ledger/nexusd/internal/core/compliance"
	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/submit"
	"github.com/nexus-ledger/nexusd/internal/rpc"
)

// Container holds every wired component of a running nexusd instance
type Container struct {
	Config   *config.Config
	Store    *ledger.Store
	Pipeline *submit.Pipeline
	Workflow *compliance.Workflow
	Poller   *rpc.Poller
	Hub      *rpc.Hub
	Server   *rpc.Server
}

// Build wires a full instance from configuration. The hub doubles as the
// pipeline's notification sink so submission outcomes reach the ws feed.
func Build(cfg *config.Config) (*Container, error) {
	store := ledger.NewStore()
	if cfg.SeedDemo {
		if err := ledger.SeedDemo(store); err != nil {
			return nil, fmt.Errorf("failed to seed demo state: %w", err)
		}
	}

	hub := rpc.NewHub()

	pipeline := submit.NewPipeline(store,
		submit.WithLatency(cfg.Submit.LatencyMin(), cfg.Submit.LatencyMax()),
		submit.WithNotifier(hub),
	)

	workflow := compliance.NewWorkflow(store, pipeline)

	poller, err := rpc.NewPoller(store,
		cfg.Network.Endpoint,
		cfg.Server.PollInterval,
		cfg.Server.SummaryCacheSize,
		rpc.WithSummarySink(hub.BroadcastSummary),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build poller: %w", err)
	}

	server := rpc.NewServer(
		rpc.Addr(cfg.Server.IP, cfg.Server.Port),
		store, pipeline, workflow, poller, hub,
	)

	return &Container{
		Config:   cfg,
		Store:    store,
		Pipeline: pipeline,
		Workflow: workflow,
		Poller:   poller,
		Hub:      hub,
		Server:   server,
	}, nil
}
