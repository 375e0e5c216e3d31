// Command gen-mg generates the mG lookup table used to decrypt
// EC-ElGamal ciphertexts. It is a thin wrapper around package mgtable:
// all the real work (stride-parallel point generation, sorting, binary
// persistence) lives there; this command only owns argument parsing,
// progress logging, and where the output file goes.
package main

import (
	"os"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/EllipticPIR/libepir-go/log"
	"github.com/EllipticPIR/libepir-go/mgtable"
)

func main() {
	pathDefault, err := mgtable.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}

	flag.Usage = func() {
		log.Infow("usage", "command", os.Args[0]+" [PATH=\""+pathDefault+"\" [MMAX_MOD=24]]")
	}
	flag.Parse()
	log.Init("info", "stdout", nil)

	args := flag.Args()
	path := pathDefault
	if len(args) > 0 {
		path = args[0]
	}
	mmaxMod := uint(mgtable.DefaultMMaxMod)
	if len(args) > 1 {
		parsed, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			log.Fatalf("failed to parse MMAX_MOD as an integer: %v", err)
		}
		mmaxMod = uint(parsed)
	}
	mmax := uint32(1) << mmaxMod

	if _, err := os.Stat(path); err == nil {
		log.Infow("mG table already exists, doing nothing", "path", path)
		return
	} else if !os.IsNotExist(err) {
		log.Fatalf("failed to stat %s: %v", path, err)
	}

	beginCompute := time.Now()
	entries := mgtable.Generate(mmax, 0, func(count uint32) {
		if count%1_000_000 == 0 {
			log.Infow("generating mG table",
				"computed", count,
				"total", mmax,
				"percent", 100*float64(count)/float64(mmax),
			)
		}
	})
	log.Infow("computation done", "elapsed", time.Since(beginCompute))

	beginSort := time.Now()
	mgtable.Sort(entries)
	log.Infow("points sorted", "elapsed", time.Since(beginSort))

	beginWrite := time.Now()
	if err := mgtable.SaveFile(path, entries); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	log.Infow("output written", "path", path, "elapsed", time.Since(beginWrite))
}
