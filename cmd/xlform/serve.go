// Serve command runs the live evaluation service.
package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/spf13/cobra"

	"github.com/gridwerk/xlform-go/internal/live"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Serve formula evaluation sessions over websockets",
	Long: `Serve starts an HTTP server. Websocket clients connect to /ws and
each gets a private session grid; the root path reports service status as
JSON.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (default from config serve.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := flagServeAddr
	if addr == "" {
		addr = cfg.GetString(cfgKeyServeAddr)
	}

	hub := live.NewHub()
	go hub.Run()

	mux := newServeMux(hub)

	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func newServeMux(hub *live.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		live.ServeWS(hub, w, r)
	})
	mux.Handle("/", gziphandler.GzipHandler(http.HandlerFunc(handleStatus)))
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "xlform",
		"version": version,
	})
}
