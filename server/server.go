package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

func SetupRoutes(extractHandler *handlers.ExtractHandler, withExtractions bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/extract", extractHandler.Extract).Methods("POST")
	r.HandleFunc("/extract/batch", extractHandler.ExtractBatch).Methods("POST")
	r.HandleFunc("/extract/combine", extractHandler.Combine).Methods("POST")

	// Asynchronous batches
	r.HandleFunc("/extract/jobs", extractHandler.StartJob).Methods("POST")
	r.HandleFunc("/extract/jobs/{id}", extractHandler.GetJob).Methods("GET")

	// Stored results only exist when a database is configured
	if withExtractions {
		r.HandleFunc("/extractions/{id}", extractHandler.GetExtraction).Methods("GET")
	}

	r.HandleFunc("/health", handlers.Health).Methods("GET")

	return r
}

// ServeProduction serves HTTPS with certificates from Let's Encrypt.
func ServeProduction(n *negroni.Negroni, cfg config.Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Port 80 answers ACME "http-01" challenges and redirects everything
	// else to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:   autocertManager.GetCertificate,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: WriteTimeout(cfg),
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// WriteTimeout leaves room for a full fetch plus OCR of a large scan.
// Batch requests extend their own deadline per file.
func WriteTimeout(cfg config.Config) time.Duration {
	return cfg.FetchTimeout + 2*time.Minute
}

// ServeDevelopment start the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
