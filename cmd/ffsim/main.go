// Command ffsim is the thin command-line driver wiring a scenario file to
// the simulator core. The driver itself — flag parsing, topology/transport
// construction, output formatting — is explicitly outside the core's scope
// (spec.md §1); this file is exactly that external glue.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dikang/ffsim-core/eventlist"
	"github.com/dikang/ffsim-core/scenario"
	"github.com/dikang/ffsim-core/sim"
	"github.com/dikang/ffsim-core/sim/emit"
	"github.com/dikang/ffsim-core/topology"
	"github.com/dikang/ffsim-core/transport"
)

var log = logrus.New()

func main() {
	var (
		scenarioPath string
		seed         int64
		ssthresh     int64
		strategyName string
		nodes        int
		bandwidth    int64
		hopLatencyNs int64
		tracePath    string
	)

	root := &cobra.Command{
		Use:   "ffsim",
		Short: "Run a discrete-event training-workload simulation from a scenario file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}

			strategy, err := parseStrategy(strategyName)
			if err != nil {
				return err
			}

			el := eventlist.New()
			topo := topology.NewFlat(nodes)
			tr := transport.NewCongestionControlled(el, bandwidth, sim.Time(hopLatencyNs)*1000)

			var emitter emit.Emitter = emit.NewLogEmitter(os.Stdout, false)
			if tracePath != "" {
				sqliteEmitter, err := emit.NewSQLiteEmitter(tracePath)
				if err != nil {
					return err
				}
				defer sqliteEmitter.Close()
				emitter = emit.NewMultiEmitter(emitter, sqliteEmitter)
			}

			runID := uuid.NewString()
			log.WithField("run_id", runID).Info("starting simulation")

			app, err := scenario.Build(runID, f, topo, tr,
				sim.WithSSThresh(ssthresh),
				sim.WithAllReduceStrategy(strategy),
				sim.WithEmitter(emitter),
			)
			if err != nil {
				return err
			}

			driver := sim.NewDriverWithEventList(el, seed, nil)
			driver.Register(app)
			driver.Run()

			fmt.Printf("application %s finished at %d ps (first iteration at %d ps)\n",
				app.ID, app.FinalFinishTime, app.FirstIterationTime)
			return nil
		},
	}

	root.Flags().StringVar(&scenarioPath, "scenario", "", "path to the scenario YAML file")
	root.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed for random path selection")
	root.Flags().Int64Var(&ssthresh, "ssthresh", 65536, "transport slow-start threshold, in data-packet-size units")
	root.Flags().StringVar(&strategyName, "strategy", "RING", "default all-reduce strategy: RING, PS, or DPS")
	root.Flags().IntVar(&nodes, "nodes", 8, "number of nodes in the reference flat topology")
	root.Flags().Int64Var(&bandwidth, "bandwidth-bps", 100_000_000_000, "reference transport link rate, bits/sec")
	root.Flags().Int64Var(&hopLatencyNs, "hop-latency-ns", 500, "reference transport per-hop latency, nanoseconds")
	root.Flags().StringVar(&tracePath, "trace", "", "optional SQLite path to record a run trace")
	_ = root.MarkFlagRequired("scenario")

	if err := root.Execute(); err != nil {
		log.WithError(err).Fatal("simulation failed")
	}
}

func parseStrategy(s string) (sim.AllReduceStrategy, error) {
	switch s {
	case "", "RING":
		return sim.StrategyRing, nil
	case "PS":
		return sim.StrategyPS, nil
	case "DPS":
		return sim.StrategyDPS, nil
	default:
		return 0, &sim.ConfigError{Field: "allreduce_strategy", Value: s}
	}
}
