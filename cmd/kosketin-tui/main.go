package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kosketin"
	"kosketin/audio"
	"kosketin/oto"
	"kosketin/touch"
	"kosketin/tui"
)

var (
	noAudio = flag.Bool("no-audio", false, "disable the built-in tone generator")
	debug   = flag.Bool("debug", false, "verbose logging")
)

func main() {
	flag.Parse()
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	// bubbletea owns the terminal; keep logs out of it
	logFile, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	keyboard, err := kosketin.LoadKeyboard()
	if err != nil {
		slog.Error("loading keyboard", "err", err)
		os.Exit(1)
	}

	sink := kosketin.NopSink()
	var synth *audio.Synth
	if !*noAudio {
		synth = audio.NewSynth(audio.DefaultSampleRate)
		sink = synth
	}

	broker := touch.NewBroker()
	engine, err := touch.NewEngine(broker, keyboard, sink,
		tui.VirtualWidth(keyboard), tui.VirtualHeight, logger)
	if err != nil {
		slog.Error("starting engine", "err", err)
		os.Exit(1)
	}
	go engine.Run()

	if synth != nil {
		if out, err := oto.Play(synth); err == nil {
			defer out.Close()
		}
	}

	model, err := tui.NewModel(broker, keyboard, engine.Pressed())
	if err != nil {
		slog.Error("building keyboard view", "err", err)
		os.Exit(1)
	}
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		slog.Error("terminal ui", "err", err)
	}
	touch.TrySend(broker.CloseEngine, struct{}{})
	touch.TimeoutReceive(broker.FinishedEngine, 3*time.Second)
}
