// Package main provides a debugging web server for browsing the void model:
// ECharts renderings of the calibrated ΔT_core(R) curve and the normalized
// radial profile, plus stored measurement/prediction runs when a runs
// database is attached.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gop-cosmology/voidcmb/internal/cosmo"
	"github.com/gop-cosmology/voidcmb/internal/voidstore"
)

func main() {
	var (
		listen = flag.String("listen", ":8080", "HTTP listen address")
		anchor = flag.String("anchor", cosmo.DefaultAnchor, "Default calibration anchor preset")
		nExp   = flag.Float64("n-exp", cosmo.DefaultNExp, "Redshift exponent n in g(z,|δ|)")
		dbPath = flag.String("db", "", "Optional runs database to browse")
	)
	flag.Parse()

	params := cosmo.DefaultModelParams()
	params.NExp = *nExp

	srv := NewServer(*anchor, params)

	if *dbPath != "" {
		store, err := voidstore.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open runs database: %v", err)
		}
		defer store.Close()
		srv.store = store
	}

	mux := srv.ServeMux()
	log.Printf("profile-server listening on %s", *listen)
	if err := http.ListenAndServe(*listen, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
