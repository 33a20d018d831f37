// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/morlabs/distribution/api"
	"github.com/morlabs/distribution/genesis"
	"github.com/morlabs/distribution/kvdb"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/metrics"
	"github.com/morlabs/distribution/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "mord",
		Usage:     "playground node of the Morpheus distribution protocol",
		Copyright: "2025 The Morpheus Distribution developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
			enableAPILogsFlag,
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func selectGenesis(ctx *cli.Context) (*genesis.Config, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.LoadFile(path)
	}
	return genesis.Devnet(uint64(time.Now().Unix())), nil
}

func runAction(ctx *cli.Context) error {
	log.SetVerbosity(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	config, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	st := state.New()
	var db *kvdb.LevelDB
	if dataDir := ctx.String(dataDirFlag.Name); dataDir != "" {
		db, err = kvdb.New(filepath.Join(dataDir, "state.db"), kvdb.Options{
			CacheSize:              128,
			OpenFilesCacheCapacity: 64,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		st = state.NewWithSource(db)
	}

	dep, err := config.Open(st)
	if err != nil {
		return err
	}

	now := func() uint64 { return uint64(time.Now().Unix()) }
	handler := api.New(dep.Distribution, dep.L1Factory.BaseFactory, now, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
	})

	server := &http.Server{
		Addr:    ctx.String(apiAddrFlag.Name),
		Handler: handler,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("API server started", "addr", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "err", err)
	}

	if db != nil {
		logger.Info("flushing state...")
		if err := dep.State.Flush(db); err != nil {
			return err
		}
	}
	logger.Info("exited")
	return nil
}
