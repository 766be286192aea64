// Command otach runs the tachometer sampling loop against the simulated
// board, logs published readings and optionally forwards the wire frames
// to a real serial port.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/4114241996/sapog/pkg/config"
	"github.com/4114241996/sapog/pkg/frame"
	"github.com/4114241996/sapog/pkg/hal"
	"github.com/4114241996/sapog/pkg/loop"
	"github.com/4114241996/sapog/pkg/opto"
	"github.com/4114241996/sapog/pkg/rpm"
	"github.com/4114241996/sapog/pkg/tacho"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override for frame output (e.g., /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		debugFlag  = flag.Bool("debug", false, "Log every published reading")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	sim := hal.NewSim(cfg.Sim)

	var sink hal.ByteSink = sim.UART()
	if cfg.Serial.Port != "" {
		serialSink, err := hal.OpenSerialSink(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			log.Fatal().Err(err).Str("port", cfg.Serial.Port).Msg("failed to open serial port")
		}
		defer serialSink.Close()
		sink = serialSink
		log.Info().Str("port", cfg.Serial.Port).Int("baud", cfg.Serial.BaudRate).Msg("forwarding frames to serial port")
	}

	pulse := sim.Pin("rpm")
	status := sim.Pin("led")
	detector := opto.NewEdgeDetector(cfg.Opto.Threshold, cfg.Opto.DCWindow, pulse)
	monitor := tacho.NewMonitor(cfg.Tacho.TimeoutTicks, sim.Ticks())
	transmitter := frame.NewTransmitter(sink)
	smoother := rpm.NewSmoother(cfg.Tacho.SmoothWindow)

	var overrunSeen bool
	l := loop.New(loop.Params{
		OptoChannel:    cfg.ADC.OptoChannel,
		VoltageChannel: cfg.ADC.VoltageChannel,
		CurrentChannel: cfg.ADC.CurrentChannel,
		OnPublish: func(ev tacho.Event, voltage, current uint16) {
			if transmitter.Failed() && !overrunSeen {
				overrunSeen = true
				log.Warn().Msg("frame dropped, transmit overrun latched")
			}
			if ev.TimedOut {
				log.Info().Msg("rotor stopped")
				return
			}
			smoothed := smoother.Add(rpm.FromPeriod(ev.Period, cfg.Tacho.TickRateHz, cfg.Tacho.BladeCount))
			log.Debug().
				Uint16("period_ticks", ev.Period).
				Uint16("voltage_raw", voltage).
				Uint16("current_raw", current).
				Float64("rpm", smoothed).
				Msg("reading published")
		},
	}, sim, sim, detector, monitor, transmitter, status)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("sampling loop started")
	l.Run(ctx)
	log.Info().Msg("sampling loop stopped")
}
