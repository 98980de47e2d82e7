// Command lorarx drives the LoRa receiver over a raw IQ file (or stdin)
// and prints each decoded frame, optionally serving a monitor dashboard
// over a local WebSocket.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/jeongseonghan/lora-lite-phy/internal/iqsource"
	"github.com/jeongseonghan/lora-lite-phy/internal/monitor"
	"github.com/jeongseonghan/lora-lite-phy/internal/receiver"
)

func main() {
	sf := flag.Int("sf", 7, "spreading factor [7,12]")
	inputPath := flag.String("in", "-", "raw IQ file (interleaved float32 I/Q), - for stdin")
	live := flag.Bool("live", false, "capture from the default audio input instead of a file")
	sampleRate := flag.Float64("sample-rate", 44100, "live capture sample rate")
	syncWord := flag.Uint("sync-word", 0x34, "expected sync word byte")
	monitorAddr := flag.String("monitor-addr", "", "serve the monitor dashboard on this address, e.g. :8090")
	chunkSamples := flag.Int("chunk", 4096, "samples read per poll")
	flag.Parse()

	cfg := receiver.DefaultConfig(*sf)
	cfg.ExpectedSyncWord = byte(*syncWord)

	rx, err := receiver.New(cfg)
	if err != nil {
		log.Fatalf("lorarx: receiver init: %v", err)
	}

	var src iqsource.Source
	if *live {
		ls, err := iqsource.OpenLive(*sampleRate)
		if err != nil {
			log.Fatalf("lorarx: open live source: %v", err)
		}
		src = ls
	} else {
		f, err := openInput(*inputPath)
		if err != nil {
			log.Fatalf("lorarx: open input: %v", err)
		}
		src = iqsource.NewFileSource(f)
	}
	defer src.Close()

	var hub *monitor.Hub
	if *monitorAddr != "" {
		hub = monitor.NewHub()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			if err := hub.Upgrade(w, r); err != nil {
				log.Printf("lorarx: websocket upgrade: %v", err)
			}
		})
		go func() {
			log.Printf("lorarx: monitor dashboard on %s", *monitorAddr)
			if err := http.ListenAndServe(*monitorAddr, mux); err != nil {
				log.Printf("lorarx: monitor server stopped: %v", err)
			}
		}()
	}

	run(rx, src, hub, *chunkSamples)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func run(rx *receiver.Receiver, src iqsource.Source, hub *monitor.Hub, chunk int) {
	exhausted := false
	for {
		if !exhausted {
			samples, err := src.Read(chunk)
			switch {
			case err == io.EOF:
				exhausted = true
			case err != nil:
				log.Fatalf("lorarx: read: %v", err)
			default:
				rx.Feed(samples)
			}
		}

		progressed, _ := rx.Step()
		if hub != nil {
			hub.BroadcastTransition("step", rx.ReadHead())
		}

		for {
			frame, ok := rx.NextFrame()
			if !ok {
				break
			}
			printFrame(frame.Payload, frame.CRCOk, frame.Detection.OS, frame.CFOFractional, frame.STO)
			if hub != nil {
				hub.BroadcastFrame(frame)
			}
		}

		if exhausted && !progressed {
			return
		}
	}
}

func printFrame(payload []byte, crcOk bool, os int, cfoFrac float64, sto int) {
	fmt.Printf("frame: %d bytes crc_ok=%v os=%d cfo_frac=%.6f sto=%d payload=%x\n",
		len(payload), crcOk, os, cfoFrac, sto, payload)
}
