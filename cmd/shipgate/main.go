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
	"github.com/dcrodman/archon/internal/shipgatesvc"
	"github.com/dcrodman/archon/internal/shipgatesvc/store"
)

func main() {
	cfgPath := flag.String("config", "shipgate.yaml", "path to shipgate config")
	flag.Parse()

	var cfg config.ShipgateConfig
	if err := config.Load(*cfgPath, &cfg); err != nil {
		panic(err)
	}

	log := logging.New("shipgate", logging.ParseLevel(cfg.LogLevel))

	st, err := store.Open(cfg.Database.DSN())
	if err != nil {
		log.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	addr := net.JoinHostPort(cfg.Hostname, cfg.Port)
	srv := shipgatesvc.New(addr, cfg.Password, st, log)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("serve failed", "error", err)
		os.Exit(1)
	}
}
