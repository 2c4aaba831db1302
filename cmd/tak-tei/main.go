// Command tak-tei runs the Tak Engine Interface protocol loop over
// stdin/stdout (spec 6, 12), the TEI analogue of the teacher's
// cmd/chessplay-uci binary.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/taklab/tiltak-go/internal/tei"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	protocol := tei.New()
	protocol.Run()
}
