// Command preview parses a saved copy of the accident listing page and
// prints what an ELT run would load, without touching the database or a
// geocoding provider. Rows the transform would reject are reported, so a
// changed upstream layout can be caught before a scheduled run fails on it.
//
// Usage:
//
//	curl -A Mozilla/5.0 -o acc_us.html https://classic.avalanche.state.co.us/caic/acc/acc_us.php
//	go run ./cmd/preview -in acc_us.html -curated -out data/preview.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/source"
	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "saved listing page (- for stdin)")
	out := flag.String("out", "", "output path for the JSON rows (default stdout)")
	curated := flag.Bool("curated", false, "emit curated rows instead of raw rows")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	r, closeIn, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeIn()

	rows, err := source.Parse(r)
	if err != nil {
		return fmt.Errorf("parse %s: %w", *in, err)
	}
	log.Printf("parsed %d rows", len(rows))

	var payload any = rows
	if *curated {
		accidents, rejected := curateAll(rows)
		for _, rej := range rejected {
			log.Printf("row %d rejected: %v", rej.index+1, rej.err)
		}
		log.Printf("curated %d rows, rejected %d", len(accidents), len(rejected))
		payload = accidents
	}

	if err := writeJSON(*out, payload); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	printStats(rows)
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	return f, func() { f.Close() }, nil
}

type rejection struct {
	index int
	err   error
}

// curateAll transforms every row, numbering them as the bronze table would on
// an empty database. Unlike a real run it keeps going past bad rows.
func curateAll(rows []domain.AccidentRaw) ([]domain.AccidentCurated, []rejection) {
	var out []domain.AccidentCurated //nolint:prealloc // rejected rows are skipped
	var rejected []rejection
	for i, raw := range rows {
		raw.ID = int64(i + 1)
		acc, err := domain.CurateAccident(raw)
		if err != nil {
			rejected = append(rejected, rejection{index: i, err: err})
			continue
		}
		out = append(out, acc)
	}
	return out, rejected
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// printStats logs row counts per season in page order.
func printStats(rows []domain.AccidentRaw) {
	counts := map[string]int{}
	var seasons []string
	for _, r := range rows {
		if _, ok := counts[r.Season]; !ok {
			seasons = append(seasons, r.Season)
		}
		counts[r.Season]++
	}

	states := map[string]int{}
	for _, r := range rows {
		states[domain.StateName(r.State)]++
	}
	names := make([]string, 0, len(states))
	for s := range states {
		names = append(names, s)
	}
	sort.Slice(names, func(i, j int) bool {
		if states[names[i]] != states[names[j]] {
			return states[names[i]] > states[names[j]]
		}
		return names[i] < names[j]
	})

	log.Printf("seasons: %d", len(seasons))
	for _, s := range seasons {
		log.Printf("  %-16s %4d", s, counts[s])
	}
	log.Printf("states: %d", len(names))
	for _, s := range names {
		log.Printf("  %-16s %4d", s, states[s])
	}
}
