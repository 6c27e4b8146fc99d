/*
* Archon PSO Server
* Copyright (C) 2014 Andrew Rodman
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
* ---------------------------------------------------------------------
 */
package main

import (
	"flag"
	"net"
	"os"

	"github.com/dcrodman/archon/internal/config"
	"github.com/dcrodman/archon/internal/logging"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/services/patchdata"
)

func main() {
	cfgPath := flag.String("config", "patch.yaml", "path to patch service config")
	flag.Parse()

	var cfg config.PatchConfig
	if err := config.Load(*cfgPath, &cfg); err != nil {
		panic(err)
	}

	log := logging.New("patch", logging.ParseLevel(cfg.LogLevel))

	message := "Welcome to Archon."
	if cfg.MessageFile != "" {
		if data, err := os.ReadFile(cfg.MessageFile); err == nil {
			message = string(data)
		} else {
			log.Warn("could not read message file, using default", "error", err)
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Hostname, cfg.Port))
	if err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}
	log.Info("patch service listening", "addr", ln.Addr())

	r := reactor.New(log, func() reactor.Decoder { return reactor.NewPCAdapter() })
	srv := patchdata.NewPatchServer(log, message, cfg.DataHosts)
	go srv.Run(r)

	if err := r.Serve(ln); err != nil {
		log.Error("serve failed", "error", err)
		os.Exit(1)
	}
}
