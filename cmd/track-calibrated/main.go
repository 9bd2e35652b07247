// Command track-calibrated drives the object tracker through a
// calibrated mount model: it loads (or starts from identity) a mount
// model, tracks either an aircraft by ICAO or the scope's own
// commanded celestial target, and on request captures a calibration
// point and refits the model against everything captured so far.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/unklstewy/ads-bscope/pkg/adsb"
	"github.com/unklstewy/ads-bscope/pkg/alpaca"
	"github.com/unklstewy/ads-bscope/pkg/calibration"
	"github.com/unklstewy/ads-bscope/pkg/config"
	"github.com/unklstewy/ads-bscope/pkg/coordinates"
	"github.com/unklstewy/ads-bscope/pkg/mount"
	"github.com/unklstewy/ads-bscope/pkg/trackable"
	"github.com/unklstewy/ads-bscope/pkg/tracking"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	modelPath := flag.String("model", "configs/mount-model.json", "Path to persisted mount model")
	icao := flag.String("icao", "", "ICAO hex code of aircraft to track; if empty, tracks the scope's own commanded celestial target")
	tickInterval := flag.Duration("tick", 200*time.Millisecond, "Tracking loop tick interval")
	latencySeconds := flag.Float64("latency", 0, "Predict aircraft position this many seconds ahead to compensate for feed latency; 0 disables")
	enforceLimits := flag.Bool("enforce-limits", false, "Withhold slews outside the configured telescope altitude limits")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	model, err := mount.Load(*modelPath)
	if err != nil {
		log.Printf("warning: %v, starting from identity model", err)
	}

	observer := coordinates.Geographic{
		Latitude:  cfg.Observer.Latitude,
		Longitude: cfg.Observer.Longitude,
		Altitude:  cfg.Observer.Elevation,
	}
	frame := coordinates.NewLocalFrame(observer)

	telescopeURL := cfg.Telescope.BaseURL
	scope := alpaca.NewTelescopeClient(telescopeURL, cfg.Telescope.DeviceNumber)
	log.Printf("telescope client targeting %s (device %d)", telescopeURL, cfg.Telescope.DeviceNumber)

	tracker := tracking.NewObjectTracker(frame, scope, model)
	calMgr := calibration.NewManager(tracker, model)

	if *enforceLimits {
		minAlt, maxAlt := cfg.Telescope.GetAltitudeLimits()
		tracker.SetTrackingLimits(tracking.TrackingLimitsFromConfig(minAlt, maxAlt))
		log.Printf("enforcing tracking limits: %.1f to %.1f degrees altitude", minAlt, maxAlt)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *icao != "" {
		if len(cfg.ADSB.Sources) == 0 {
			log.Fatal("no ADS-B sources configured")
		}
		source := adsb.NewAirplanesLiveClient(cfg.ADSB.Sources[0].BaseURL)
		defer source.Close()

		mgrCfg := adsb.DefaultManagerConfig(observer.Latitude, observer.Longitude, cfg.ADSB.SearchRadiusNM)
		mgr := adsb.NewManager(source, mgrCfg)
		go mgr.Run(ctx)

		if *latencySeconds > 0 {
			tracker.SetTrackedObject(tracking.NewLatencyCompensatedAircraft(mgr, *icao, *latencySeconds))
			log.Printf("tracking aircraft %s with %.2fs latency compensation", *icao, *latencySeconds)
		} else {
			tracker.SetTrackedObject(trackable.NewAircraft(mgr, *icao))
			log.Printf("tracking aircraft %s", *icao)
		}
	} else {
		tracker.SetTrackedObject(trackable.NewCelestial(scope))
		log.Printf("tracking scope-commanded celestial target")
	}

	log.Println("commands: 'c' capture calibration point, 'u' refit model, 'r' reset, 'q' quit")
	go readCommands(tracker, calMgr, *modelPath)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := tracker.Run(); err != nil {
			log.Printf("tracking loop: %v", err)
			continue
		}
		alt, az := tracker.LastMotorAngle()
		fmt.Printf("\r%s alt=%6.2f az=%6.2f   ", tracker.TrackedObjectName(), alt, az)
	}
}

func readCommands(tracker *tracking.ObjectTracker, calMgr *calibration.Manager, modelPath string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "c":
			if err := calMgr.CapturePoint(); err != nil {
				log.Printf("capture failed: %v", err)
				continue
			}
			log.Printf("captured point %d", len(calMgr.PointList()))
		case "u":
			residual := calMgr.UpdateModel(true)
			if residual < 0 {
				log.Println("fit failed or no points captured")
				continue
			}
			log.Printf("refit residual: %.6f", residual)
			if err := mount.Save(modelPath, calMgr.GetModel()); err != nil {
				log.Printf("failed to persist model: %v", err)
			}
		case "r":
			calMgr.ResetModel()
			tracker.SetModel(calMgr.GetModel())
			log.Println("model and points reset")
		case "q":
			log.Println("quitting")
			os.Exit(0)
		}
	}
}
