// Package web serves a read-only dashboard: sale progress and submission
// receipts streamed over SSE. It only reads controller state and never
// mutates it.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vadiminshakov/presale/internal/controller"
	"github.com/vadiminshakov/presale/internal/domain"
	"golang.org/x/crypto/acme/autocert"
)

const viewPollInterval = 2 * time.Second

type viewReader interface {
	View() controller.View
}

type receiptReader interface {
	ReceiptsAfter(index uint64) ([]domain.ReceiptRecord, error)
}

// Server exposes HTTP endpoints serving the HTML page and SSE streams.
type Server struct {
	Addr     string
	Views    viewReader
	Receipts receiptReader
}

// NewServer creates a new dashboard server instance.
func NewServer(addr string, views viewReader, receipts receiptReader) *Server {
	return &Server{Addr: addr, Views: views, Receipts: receipts}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/sale/stream", s.handleSaleStream)
	mux.HandleFunc("/receipts/stream", s.handleReceiptStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = httpsSrv.Shutdown(shutdownCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	go func() {
		if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// handleSaleStream streams the controller view, emitting only when it changes.
func (s *Server) handleSaleStream(w http.ResponseWriter, r *http.Request) {
	if s.Views == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "controller not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(viewPollInterval)
	defer pollTicker.Stop()

	var lastPayload string
	sendView := func() error {
		payload, err := json.Marshal(s.Views.View())
		if err != nil {
			return err
		}
		if string(payload) == lastPayload {
			return nil
		}
		lastPayload = string(payload)
		fmt.Fprintf(w, "event: sale\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	}

	if err := sendView(); err != nil {
		http.Error(w, "failed to load sale view", http.StatusInternalServerError)
		log.Printf("sale stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendView(); err != nil {
				log.Printf("sale stream poll err: %v", err)
			}
		}
	}
}

// handleReceiptStream tails the receipt journal over SSE.
func (s *Server) handleReceiptStream(w http.ResponseWriter, r *http.Request) {
	if s.Receipts == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "receipt store not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(viewPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendReceipts := func() error {
		records, err := s.Receipts.ReceiptsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Receipt)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: receipt\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendReceipts(); err != nil {
		http.Error(w, "failed to load receipts", http.StatusInternalServerError)
		log.Printf("receipt stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendReceipts(); err != nil {
				log.Printf("receipt stream poll err: %v", err)
			}
		}
	}
}
