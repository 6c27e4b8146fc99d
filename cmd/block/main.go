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
	"path/filepath"
	"regexp"

	"github.com/dcrodman/archon/internal/config"
	"github.com/dcrodman/archon/internal/enemygen"
	"github.com/dcrodman/archon/internal/logging"
	"github.com/dcrodman/archon/internal/reactor"
	"github.com/dcrodman/archon/internal/services/block"
	"github.com/dcrodman/archon/internal/shipgateclient"
	"github.com/dcrodman/archon/internal/staticdata/battleparam"
	"github.com/dcrodman/archon/internal/staticdata/bbtable"
	"github.com/dcrodman/archon/internal/staticdata/leveltable"
	"github.com/dcrodman/archon/internal/staticdata/maps"
)

func main() {
	cfgPath := flag.String("config", "block.yaml", "path to block service config")
	flag.Parse()

	var cfg config.BlockConfig
	if err := config.Load(*cfgPath, &cfg); err != nil {
		panic(err)
	}

	log := logging.New("block", logging.ParseLevel(cfg.LogLevel))

	table, err := bbtable.Load(cfg.Static.BBTablePath)
	if err != nil {
		log.Error("failed to load bb_table.bin", "error", err)
		os.Exit(1)
	}

	mapLoader, err := maps.Load(cfg.Static.MapsDir)
	if err != nil {
		log.Error("failed to load maps", "error", err)
		os.Exit(1)
	}

	battleParamSources, err := discoverBattleParamSources(cfg.Static.BattleParamDir)
	if err != nil {
		log.Error("failed to enumerate battle param files", "error", err)
		os.Exit(1)
	}
	battleParams, err := battleparam.Load(battleParamSources)
	if err != nil {
		log.Error("failed to load battle params", "error", err)
		os.Exit(1)
	}

	levelTable, err := leveltable.Load(cfg.Static.LevelTablePath)
	if err != nil {
		log.Error("failed to load level table", "error", err)
		os.Exit(1)
	}

	sg, err := shipgateclient.Dial(cfg.Shipgate.Address, cfg.Shipgate.Password)
	if err != nil {
		log.Error("failed to connect to shipgate", "error", err)
		os.Exit(1)
	}
	defer sg.Close()

	srv := block.New(log, sg, table, cfg.BlockNum, enemygen.Event(cfg.Event), mapLoader, battleParams, levelTable)

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Hostname, cfg.Port))
	if err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}
	log.Info("block service listening", "addr", ln.Addr(), "block_num", cfg.BlockNum)

	r := reactor.New(log, func() reactor.Decoder { return reactor.NewBBAdapter() })
	go srv.Run(r)

	if err := r.Serve(ln); err != nil {
		log.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

// battleParamFilePattern matches ep<1|2|4>_<single|multi>.bin, this
// module's own directory convention for naming the six
// BattleParamEntry* files (three episodes, single and multi player)
// the retrieval pack doesn't supply a canonical naming scheme for.
var battleParamFilePattern = regexp.MustCompile(`^ep([124])_(single|multi)\.bin$`)

func discoverBattleParamSources(dir string) ([]battleparam.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sources []battleparam.Source
	for _, entry := range entries {
		m := battleParamFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		episode := byte(1)
		switch m[1] {
		case "2":
			episode = 2
		case "4":
			episode = 3 // wire episode field: Episode 4 is sent as 3
		}
		sources = append(sources, battleparam.Source{
			Path:         filepath.Join(dir, entry.Name()),
			Episode:      episode,
			SinglePlayer: m[2] == "single",
		})
	}
	return sources, nil
}
