// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/opengeos/anymap-sub000/pkg/backends"
	"github.com/opengeos/anymap-sub000/pkg/htmlexport"
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mapserver"
	"github.com/opengeos/anymap-sub000/pkg/mapstore"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/mps"
	"github.com/spf13/cobra"
)

var AnymapVersion = "0.9.0"
var BuildTime = "-"

var rootCmd = &cobra.Command{
	Use:   "anymap",
	Short: "interactive map widget server and exporter",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("anymap %s (build %s)\n", AnymapVersion, BuildTime)
	},
}

var serveAddr string
var serveDemo bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the live map server",
	RunE: func(cmd *cobra.Command, args []string) error {
		mapbase.LoadDotEnv()
		if err := mapstore.InitMapStore(); err != nil {
			return fmt.Errorf("initializing mapstore: %w", err)
		}
		defer mapstore.CloseMapStore()
		server := mapserver.MakeServer(serveAddr, mps.MakeBroker(), mapwidget.DefaultRegistry())
		if serveDemo {
			demo := backends.MakeMapLibreMap(backends.MapLibreOptions{Center: []float64{37.77, -122.42}, Zoom: 11})
			demo.AddMarker(37.8081, -122.4098, "Pier 39")
			if err := server.RegisterWidget(demo.MapWidget); err != nil {
				return err
			}
			log.Printf("demo widget at /map/%s\n", demo.WidgetId())
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx)
	},
}

var exportTitle string
var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [mapid]",
	Short: "export a saved map to a standalone HTML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mapstore.InitMapStore(); err != nil {
			return fmt.Errorf("initializing mapstore: %w", err)
		}
		defer mapstore.CloseMapStore()
		ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		doc, err := mapstore.GetMap(ctx, args[0])
		if err != nil {
			return err
		}
		page, err := htmlexport.ExportSnapshot(doc.Snapshot, nil, htmlexport.Options{Title: exportTitle})
		if err != nil {
			return err
		}
		output := exportOutput
		if output == "" {
			output = doc.Name + ".html"
		}
		if err := os.WriteFile(output, []byte(page), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		log.Printf("exported map %s to %s\n", doc.MapId, output)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list saved maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mapstore.InitMapStore(); err != nil {
			return fmt.Errorf("initializing mapstore: %w", err)
		}
		defer mapstore.CloseMapStore()
		ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		docs, err := mapstore.ListMaps(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "MAPID\tNAME\tBACKEND\tMODIFIED")
		for _, doc := range docs {
			modified := time.UnixMilli(doc.ModifiedTs).Format(time.RFC3339)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", doc.MapId, doc.Name, doc.Backend, modified)
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [mapid]",
	Short: "delete a saved map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mapstore.InitMapStore(); err != nil {
			return fmt.Errorf("initializing mapstore: %w", err)
		}
		defer mapstore.CloseMapStore()
		ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		return mapstore.DeleteMap(ctx, args[0])
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to server:addr setting)")
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "register a demo widget on startup")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "page title (defaults to export:title setting)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to <name>.html)")
	rootCmd.AddCommand(versionCmd, serveCmd, exportCmd, listCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[error] %v\n", err)
		os.Exit(1)
	}
}
