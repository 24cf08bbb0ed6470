package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"gioui.org/app"

	"kosketin"
	"kosketin/audio"
	kosketingio "kosketin/gioui"
	"kosketin/gomidi"
	"kosketin/haptic"
	"kosketin/oto"
	"kosketin/touch"
)

var (
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile   = flag.String("memprofile", "", "write memory profile to `file`")
	noAudio      = flag.Bool("no-audio", false, "disable the built-in tone generator")
	hapticDevice = flag.String("haptic-device", "", "serial device of the haptic motor controller")
	hapticBaud   = flag.Int("haptic-baud", haptic.DefaultBaudRate, "baud rate of the haptic serial port")
	midiOutput   = flag.String("midi-output", "", "send notes to the MIDI output matching this device name prefix")
	midiChannel  = flag.Int("midi-channel", 0, "MIDI channel (0-15) for note output")
	debug        = flag.Bool("debug", false, "verbose logging with source locations")
)

func main() {
	flag.Parse()
	logger := initLogger(*debug)
	var f *os.File
	if *cpuprofile != "" {
		var err error
		f, err = os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
	}

	keyboard, err := kosketin.LoadKeyboard()
	if err != nil {
		logger.Error("loading keyboard", "err", err)
		os.Exit(1)
	}

	var sinks []kosketin.FeedbackSink
	var synth *audio.Synth
	if !*noAudio {
		synth = audio.NewSynth(audio.DefaultSampleRate)
		sinks = append(sinks, synth)
	}
	if *hapticDevice != "" {
		hs, err := haptic.OpenSerial(*hapticDevice, *hapticBaud, keyboard, logger)
		if err != nil {
			// no hardware is not fatal; keys keep working without it
			logger.Info("haptics unavailable", "err", err)
		} else {
			sinks = append(sinks, hs)
		}
	}
	if isFlagPassed("midi-output") {
		if !validMIDIChannel(*midiChannel) {
			logger.Error("midi channel out of range", "channel", *midiChannel)
			os.Exit(1)
		}
		sinks = append(sinks, gomidi.NewSink(*midiOutput, uint8(*midiChannel), logger))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, kosketin.NopSink())
	}

	prefs, warn := kosketingio.MakePreferences()
	if warn != nil {
		logger.Warn("preferences", "err", warn)
	}
	broker := touch.NewBroker()
	engine, err := touch.NewEngine(broker, keyboard, kosketin.MultiSink(sinks...),
		float64(prefs.Window.Width), float64(prefs.Window.Height), logger)
	if err != nil {
		logger.Error("starting engine", "err", err)
		os.Exit(1)
	}
	go engine.Run()

	if synth != nil {
		out, err := oto.Play(synth)
		if err != nil {
			logger.Info("audio output unavailable", "err", err)
		} else {
			defer out.Close()
		}
	}

	if path, err := kosketin.UserConfigPath("keyboard.yml"); err == nil {
		if watcher, err := touch.WatchKeyboard(path, broker, logger); err == nil {
			defer watcher.Close()
		}
	}

	ui := kosketingio.NewApp(broker, keyboard, engine.Pressed(), logger)
	go func() {
		ui.Main()
		touch.TrySend(broker.CloseEngine, struct{}{})
		touch.TimeoutReceive(broker.FinishedEngine, 3*time.Second)
		if *cpuprofile != "" {
			pprof.StopCPUProfile()
			f.Close()
		}
		if *memprofile != "" {
			f, err := os.Create(*memprofile)
			if err != nil {
				log.Fatal("could not create memory profile: ", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatal("could not write memory profile: ", err)
			}
		}
		os.Exit(0)
	}()
	app.Main()
}

func initLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// validMIDIChannel reports whether ch is a usable MIDI channel number.
func validMIDIChannel(ch int) bool {
	return ch >= 0 && ch <= 15
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
