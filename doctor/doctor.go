// Package doctor runs interactive system diagnostics: hotkey input,
// microphone capture, transcription round trip, and keystroke output.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Valeron2206/voice-dictation-pro/audio"
	"github.com/Valeron2206/voice-dictation-pro/clipboard"
	"github.com/Valeron2206/voice-dictation-pro/encoder"
	"github.com/Valeron2206/voice-dictation-pro/hotkey"
	"github.com/Valeron2206/voice-dictation-pro/session"
	"github.com/Valeron2206/voice-dictation-pro/transcriber"
)

// Run executes the checks in order and returns an exit code
// (0=all pass, 1=any fail).
func Run(binding hotkey.Binding) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dictate doctor - interactive system diagnostics")
	fmt.Println("===============================================")

	allPass := true

	if !checkHotkey(binding) {
		allPass = false
	}
	var pcm []byte
	if allPass {
		var ok bool
		pcm, ok = checkMicrophone()
		if !ok {
			allPass = false
		}
	}
	if allPass && !checkTranscription(pcm) {
		allPass = false
	}
	if allPass && !checkKeystroke() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey(binding hotkey.Binding) bool {
	fmt.Println()
	fmt.Println("[1/4] Hotkey input")

	backend, err := hotkey.NewBackend(binding)
	if err != nil {
		fmt.Printf("  FAIL: no usable hotkey backend: %v\n", err)
		return false
	}
	fmt.Printf("Using backend: %s\n", backend.Name())
	fmt.Printf("Hold %s+%s...\n", binding.Modifier, binding.Confirm)

	begin := make(chan struct{}, 1)
	mapper := hotkey.NewMapper(
		func() session.State { return session.StateIdle },
		func(intent session.Intent) {
			if intent == session.IntentBegin {
				select {
				case begin <- struct{}{}:
				default:
				}
			}
		})
	if err := backend.Start(mapper); err != nil {
		fmt.Printf("  FAIL: could not start hotkey backend: %v\n", err)
		return false
	}
	defer backend.Stop()

	select {
	case <-begin:
		fmt.Println("  PASS: hotkey detected")
		// Backend may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicrophone() ([]byte, bool) {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture")

	reader := bufio.NewReader(os.Stdin)

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}

	var device *audio.DeviceInfo
	if len(devices) == 1 {
		device = &devices[0]
		fmt.Printf("Using device: %s\n", device.Name)
	} else {
		fmt.Println()
		fmt.Println("Select input device:")
		for i, d := range devices {
			fmt.Printf("  %d. %s\n", i+1, d.Name)
		}
		fmt.Printf("Choice [1-%d]: ", len(devices))

		devChoice, _ := reader.ReadString('\n')
		devChoice = strings.TrimSpace(devChoice)
		idx := 0
		if devChoice != "" {
			fmt.Sscanf(devChoice, "%d", &idx)
			idx--
		}
		if idx < 0 || idx >= len(devices) {
			fmt.Println("  FAIL: invalid choice")
			return nil, false
		}
		device = &devices[idx]
		fmt.Printf("Selected: %s\n", device.Name)
	}

	capture, err := ctx.NewCapture(device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot open capture device: %v\n", err)
		return nil, false
	}
	defer capture.Close()

	recorder := audio.NewRecorder(capture)

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	if err := recorder.Arm(); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return nil, false
	}
	time.Sleep(3 * time.Second)
	pcm := recorder.Disarm()

	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return nil, false
	}

	fmt.Printf("  PASS: recorded %.1f KB (%.1fs)\n",
		float64(len(pcm))/1024, encoder.Duration(pcm))
	return pcm, true
}

func checkTranscription(pcm []byte) bool {
	fmt.Println()
	fmt.Println("[3/4] Transcription")

	trans, err := transcriber.New()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  Set GROQ_API_KEY or OPENAI_API_KEY (flags, env, or .env file)")
		return false
	}
	fmt.Printf("Using provider: %s\n", trans.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := trans.Transcribe(ctx, pcm)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(no speech detected)"
	}

	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func checkKeystroke() bool {
	fmt.Println()
	fmt.Println("[4/4] Keystroke output")

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
