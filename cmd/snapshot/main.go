// Command snapshot renders a converged ego-network layout to a static SVG.
// It runs the same extraction and simulation as the server, against a JSON
// dataset file, and is the quickest way to eyeball a layout or a tuning
// change without a browser.
package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"os"
	"strconv"

	"go.uber.org/zap"

	"kith-backend/domain/egonet"
	"kith-backend/domain/layout"
	"kith-backend/infrastructure/config"
	"kith-backend/infrastructure/persistence/memory"
	"kith-backend/interfaces/view"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "path to a JSON dataset file (required)")
		center     = flag.String("center", "", "person ID to center on (empty for the whole network)")
		depth      = flag.Int("depth", egonet.DefaultDepth, "traversal depth in hops")
		category   = flag.String("category", "", "relationship category filter")
		tuningPath = flag.String("tuning", "", "optional YAML tuning file")
		width      = flag.Float64("width", 1200, "output width in pixels")
		height     = flag.Float64("height", 800, "output height in pixels")
		outPath    = flag.String("out", "network.svg", "output SVG path")
	)
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	catalog := memory.NewCatalog()
	if err := catalog.LoadFile(*dataPath); err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}

	values := url.Values{}
	if *center != "" {
		values.Set("center", *center)
	}
	values.Set("depth", strconv.Itoa(*depth))
	if *category != "" {
		values.Set("category", *category)
	}
	filter, err := egonet.DecodeFilter(values)
	if err != nil {
		logger.Fatal("Invalid filter", zap.Error(err))
	}

	tuning, err := config.LoadTuning(*tuningPath)
	if err != nil {
		logger.Fatal("Failed to load tuning", zap.Error(err))
	}

	network, err := catalog.Snapshot(context.Background())
	if err != nil {
		logger.Fatal("Failed to build network", zap.Error(err))
	}

	sub := egonet.Extract(network, filter)
	logger.Info("Extracted subgraph",
		zap.String("filter", filter.EncodeString()),
		zap.Int("nodeCount", sub.NodeCount()),
		zap.Int("edgeCount", sub.EdgeCount()),
	)

	sim := layout.NewSimulation(sub, nil, 1, tuning, logger)
	var frame layout.Frame
	for {
		frame = sim.StepOnce()
		if frame.Frozen {
			break
		}
	}
	logger.Info("Layout converged",
		zap.Int("ticks", frame.Tick),
		zap.Float64("energy", frame.Energy),
	)

	scene := view.BuildScene(sub, network, frame.Positions)
	vp := view.NewViewport(*width, *height)

	out, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	defer out.Close()

	view.RenderSVG(out, scene, vp)
	logger.Info("Wrote snapshot", zap.String("path", *outPath))
}
