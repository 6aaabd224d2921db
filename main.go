package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	"github.com/Valeron2206/voice-dictation-pro/audio"
	"github.com/Valeron2206/voice-dictation-pro/beep"
	"github.com/Valeron2206/voice-dictation-pro/clipboard"
	"github.com/Valeron2206/voice-dictation-pro/config"
	"github.com/Valeron2206/voice-dictation-pro/doctor"
	"github.com/Valeron2206/voice-dictation-pro/encoder"
	"github.com/Valeron2206/voice-dictation-pro/hotkey"
	"github.com/Valeron2206/voice-dictation-pro/log"
	"github.com/Valeron2206/voice-dictation-pro/overlay"
	"github.com/Valeron2206/voice-dictation-pro/session"
	"github.com/Valeron2206/voice-dictation-pro/shutdown"
	"github.com/Valeron2206/voice-dictation-pro/transcriber"
)

var version = "dev"

var (
	activeTranscriber transcriber.Transcriber
	controller        *session.Controller
	backend           hotkey.Backend
	dispatcher        *overlay.Dispatcher
	terminal          *overlay.Terminal
	insertEnabled     bool
	insertCount       atomic.Int64
)

var shutdownOnce sync.Once

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if controller != nil {
			controller.Shutdown()
		}
		if backend != nil {
			backend.Stop()
		}
		if dispatcher != nil {
			dispatcher.Close()
		}
		if n := insertCount.Load(); n > 0 {
			log.SessionEnd(int(n))
		}
		log.Close()
		if terminal != nil {
			terminal.Quit()
		}
		os.Exit(0)
	})
}

// cuePlayer adapts session cues to the beep package. Playback is
// fire-and-forget inside beep, so Play never blocks.
type cuePlayer struct{}

func (cuePlayer) Play(c session.Cue) {
	switch c {
	case session.CueStart:
		beep.PlayStart()
	case session.CueStop:
		beep.PlayEnd()
	case session.CueError:
		beep.PlayError()
	case session.CueSuccess:
		beep.PlaySuccess()
	}
}

// inserter places confirmed text at the cursor, or only copies it when
// keystroke insertion is disabled.
type inserter struct{}

func (inserter) Insert(text string) error {
	insertCount.Add(1)
	if !insertEnabled {
		return clipboard.Copy(text)
	}
	return clipboard.Insert(text)
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func providerLineText() string {
	label := activeTranscriber.Name()
	if lang := activeTranscriber.GetLanguage(); lang != "" {
		label += " (" + lang + ")"
	}
	return "[" + label + "]"
}

func hotkeyLineText(b hotkey.Binding) string {
	caser := map[string]string{
		"alt": "Alt", "ctrl": "Ctrl", "shift": "Shift",
		"space": "Space", "enter": "Enter", "esc": "Esc",
	}
	mod, key := caser[b.Modifier], caser[b.Confirm]
	if mod == "" {
		mod = b.Modifier
	}
	if key == "" {
		key = b.Confirm
	}
	return mod + "+" + key
}

func main() {
	configFlag := flag.String("config", "", "Config file path (default: ~/.config/dictate/config.toml)")
	langFlag := flag.String("lang", "", "Language code for transcription (e.g., en, es, fr). Empty = auto-detect")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	soundsFlag := flag.Bool("sounds", true, "Play feedback sounds")
	insertFlag := flag.Bool("insert", true, "Insert text at cursor after confirmation (otherwise copy only)")
	guiFlag := flag.Bool("gui", false, "Show status in a desktop overlay window instead of the terminal")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("dictate %s\n", version)
		os.Exit(0)
	}

	// API keys may live in a .env next to the binary
	godotenv.Load()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override config
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if !*soundsFlag {
		cfg.Sounds = false
	}
	if !*insertFlag {
		cfg.Insert = false
	}
	insertEnabled = cfg.Insert

	binding := hotkey.Binding{
		Modifier: cfg.Hotkey.Modifier,
		Confirm:  cfg.Hotkey.Confirm,
		Cancel:   cfg.Hotkey.Cancel,
	}

	if *doctorFlag {
		os.Exit(doctor.Run(binding))
	}

	if !cfg.Sounds {
		beep.Disable()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	activeTranscriber, err = transcriber.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Language != "" {
		activeTranscriber.SetLanguage(cfg.Language)
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	if *setupFlag {
		// Picker preselects the configured device when one is set.
		selectedDevice, err = audio.SelectDevice(audioCtx, cfg.Device)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Falling back to default device")
			selectedDevice = nil
		}
	} else if cfg.Device != "" {
		if devices, err := audioCtx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == cfg.Device {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			log.Warnf("device %q not found, using default", cfg.Device)
			fmt.Fprintf(os.Stderr, "Warning: device %q not found, using default\n", cfg.Device)
		}
	}

	captureDevice, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	if insertEnabled {
		if err := clipboard.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: paste init failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	recorder := audio.NewRecorder(captureDevice)

	var sink overlay.Sink
	var gui *overlay.GUI
	if *guiFlag {
		gui, err = overlay.NewGUI(func() {
			serve(binding, selectedDevice)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sink = gui
	} else {
		terminal = overlay.NewTerminal()
		sink = terminal
	}

	dispatcher = overlay.NewDispatcher(sink)
	controller = session.New(recorder, activeTranscriber, dispatcher, inserter{}, cuePlayer{},
		session.Config{MinDuration: time.Duration(cfg.MinDurationMS) * time.Millisecond})

	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	go func() {
		<-sig
		gracefulShutdown()
	}()

	if gui != nil {
		// Fyne owns the main thread; serve runs from its ready callback.
		if err := gui.Run(); err != nil {
			log.Errorf("overlay error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
		return
	}

	terminal.SetInfo(deviceLineText(selectedDevice), providerLineText(), hotkeyLineText(binding))
	go func() {
		if err := terminal.Run(); err != nil {
			log.Errorf("status panel error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
	}()

	serve(binding, selectedDevice)
	<-terminal.Done()
}

// serve starts the hotkey backend feeding the controller. In GUI mode it
// runs from the overlay's ready callback.
func serve(binding hotkey.Binding, dev *audio.DeviceInfo) {
	mapper := hotkey.NewMapper(controller.State, controller.Handle)

	var err error
	backend, err = hotkey.NewBackend(binding)
	if err != nil {
		log.Errorf("hotkey backend init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: no usable hotkey backend: %v\n", err)
		os.Exit(1)
	}
	if err := backend.Start(mapper); err != nil {
		log.Errorf("hotkey backend start error: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting hotkey backend: %v\n", err)
		os.Exit(1)
	}

	deviceName := "default"
	if dev != nil {
		deviceName = dev.Name
	}
	log.SessionStart(activeTranscriber.Name(), backend.Name(), deviceName)
	log.Info("ready: hold " + hotkeyLineText(binding) + " to dictate")
}
