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
	"hash/crc32"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dcrodman/archon/internal/bbproto"
	"github.com/dcrodman/archon/internal/config"
	"github.com/dcrodman/archon/internal/logging"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/services/login"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/staticdata/bbtable"
	"github.com/dcrodman/archon/internal/staticdata/leveltable"
)

const paramChunkSize = 0x6800

func main() {
	cfgPath := flag.String("config", "login.yaml", "path to login service config")
	flag.Parse()

	var cfg config.LoginConfig
	if err := config.Load(*cfgPath, &cfg); err != nil {
		panic(err)
	}

	log := logging.New("login", logging.ParseLevel(cfg.LogLevel))

	table, err := bbtable.Load(cfg.Static.BBTablePath)
	if err != nil {
		log.Error("failed to load bb_table.bin", "error", err)
		os.Exit(1)
	}
	lt, err := leveltable.Load(cfg.Static.LevelTablePath)
	if err != nil {
		log.Error("failed to load PlayerTable.rel", "error", err)
		os.Exit(1)
	}

	sg, err := shipgateclient.Dial(cfg.Shipgate.Address, cfg.Shipgate.Password)
	if err != nil {
		log.Error("failed to connect to shipgate", "error", err)
		os.Exit(1)
	}
	defer sg.Close()

	host, port, err := net.SplitHostPort(net.JoinHostPort(cfg.Hostname, cfg.Port))
	if err != nil {
		log.Error("invalid listen address", "error", err)
		os.Exit(1)
	}
	selfAddr, selfPort := resolveSelf(host, port, log)

	srv := login.New(log, sg, table, lt, selfAddr, selfPort)
	srv.SetGuildcardData(nil)
	entries, chunks := loadParamFiles(cfg.Static.ParameterFilesPath, log)
	srv.SetParamData(entries, chunks)

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Hostname, cfg.Port))
	if err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}
	log.Info("login service listening", "addr", ln.Addr())

	r := reactor.New(log, func() reactor.Decoder { return reactor.NewBBAdapter() })
	go srv.Run(r)

	if err := r.Serve(ln); err != nil {
		log.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

func resolveSelf(host, port string, log *slog.Logger) (addr [4]byte, p uint16) {
	ipAddr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		log.Warn("could not resolve own address for redirect, using loopback", "error", err)
		addr = [4]byte{127, 0, 0, 1}
	} else if v4 := ipAddr.IP.To4(); v4 != nil {
		copy(addr[:], v4)
	}
	if portNum, err := strconv.Atoi(port); err == nil {
		p = uint16(portNum)
	}
	return addr, p
}

// loadParamFiles reads every file in dir, sorted by name, building the
// ParamFileEntry header (one entry per file) and concatenated chunk stream the
// client fetches after Login per spec.md section 4.5.
func loadParamFiles(dir string, log *slog.Logger) ([]bbproto.ParamFileEntry, [][]byte) {
	if dir == "" {
		return nil, nil
	}
	names, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		log.Warn("could not list parameter files directory", "error", err)
		return nil, nil
	}
	sort.Strings(names)

	var entries []bbproto.ParamFileEntry
	var blob []byte
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			log.Warn("could not read parameter file, skipping", "file", name, "error", err)
			continue
		}
		entries = append(entries, bbproto.ParamFileEntry{
			Size:     uint32(len(data)),
			Checksum: crc32.ChecksumIEEE(data),
			Filename: filepath.Base(name),
		})
		blob = append(blob, data...)
	}

	var chunks [][]byte
	for off := 0; off < len(blob); off += paramChunkSize {
		end := off + paramChunkSize
		if end > len(blob) {
			end = len(blob)
		}
		chunks = append(chunks, blob[off:end])
	}
	return entries, chunks
}
