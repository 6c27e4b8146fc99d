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
	"strconv"

	"github.com/dcrodman/archon/internal/config"
	"github.com/dcrodman/archon/internal/logging"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/services/ship"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/staticdata/bbtable"
)

func main() {
	cfgPath := flag.String("config", "ship.yaml", "path to ship service config")
	flag.Parse()

	var cfg config.ShipConfig
	if err := config.Load(*cfgPath, &cfg); err != nil {
		panic(err)
	}

	log := logging.New("ship", logging.ParseLevel(cfg.LogLevel))

	table, err := bbtable.Load(cfg.BBTablePath)
	if err != nil {
		log.Error("failed to load bb_table.bin", "error", err)
		os.Exit(1)
	}

	sg, err := shipgateclient.Dial(cfg.Shipgate.Address, cfg.Shipgate.Password)
	if err != nil {
		log.Error("failed to connect to shipgate", "error", err)
		os.Exit(1)
	}
	defer sg.Close()

	blocks := make([]ship.BlockEntry, 0, len(cfg.Blocks))
	for _, b := range cfg.Blocks {
		addr, port, ok := resolveHostPort(net.JoinHostPort(b.Hostname, b.Port))
		if !ok {
			log.Warn("could not resolve block address, skipping", "block", b.Name)
			continue
		}
		blocks = append(blocks, ship.BlockEntry{Num: b.Num, Addr: addr, Port: port, Name: b.Name})
	}

	srv := ship.New(log, sg, table, blocks)

	selfAddr, selfPort, ok := resolveHostPort(net.JoinHostPort(cfg.Hostname, cfg.Port))
	if ok {
		if err := srv.Register(cfg.Name, selfAddr, selfPort); err != nil {
			log.Error("failed to register with shipgate", "error", err)
			os.Exit(1)
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Hostname, cfg.Port))
	if err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}
	log.Info("ship service listening", "addr", ln.Addr())

	r := reactor.New(log, func() reactor.Decoder { return reactor.NewBBAdapter() })
	go srv.Run(r)

	if err := r.Serve(ln); err != nil {
		log.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

func resolveHostPort(hostport string) (ip [4]byte, port uint16, ok bool) {
	h, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return ip, 0, false
	}
	addr, err := net.ResolveIPAddr("ip4", h)
	if err != nil {
		return ip, 0, false
	}
	v4 := addr.IP.To4()
	if v4 == nil {
		return ip, 0, false
	}
	copy(ip[:], v4)
	portNum, err := strconv.Atoi(p)
	if err != nil {
		return ip, 0, false
	}
	return ip, uint16(portNum), true
}
