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
* Per-service YAML configuration. Parsing format and CLI plumbing are
* deliberately thin: the static-data paths, listen addresses, and
* shipgate/database coordinates are the only things the core needs
* from the outside.
 */
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML document at path into out, which must be a
// pointer to one of the *Config structs below (or any struct tagged
// with `yaml`).
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN returns a github.com/go-sql-driver/mysql compatible data source
// name built from the configured coordinates.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", d.Username, d.Password, d.Host, d.Port, d.Name)
}

type ShipgateClient struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

type StaticData struct {
	MapsDir            string `yaml:"maps_dir"`
	BattleParamDir     string `yaml:"battle_param_dir"`
	LevelTablePath     string `yaml:"level_table_path"`
	BBTablePath        string `yaml:"bb_table_path"`
	ItemPTPath         string `yaml:"item_pt_path"`
	ItemRTPath         string `yaml:"item_rt_path"`
	ParameterFilesPath string `yaml:"parameter_files_path"`
}

type PatchConfig struct {
	Hostname     string   `yaml:"hostname"`
	Port         string   `yaml:"port"`
	DataHosts    []string `yaml:"data_hosts"`
	MessageFile  string   `yaml:"message_file"`
	LogLevel     string   `yaml:"log_level"`
}

type DataConfig struct {
	Hostname string `yaml:"hostname"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type LoginConfig struct {
	Hostname string         `yaml:"hostname"`
	Port     string         `yaml:"port"`
	Shipgate ShipgateClient `yaml:"shipgate"`
	Static   StaticData     `yaml:"static_data"`
	LogLevel string         `yaml:"log_level"`
}

// BlockListEntry names one block this ship offers, and the address of
// the block service process handling it.
type BlockListEntry struct {
	Num      uint32 `yaml:"num"`
	Hostname string `yaml:"hostname"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
}

type ShipConfig struct {
	Hostname    string           `yaml:"hostname"`
	Port        string           `yaml:"port"`
	Name        string           `yaml:"name"`
	BBTablePath string           `yaml:"bb_table_path"`
	Blocks      []BlockListEntry `yaml:"blocks"`
	Shipgate    ShipgateClient   `yaml:"shipgate"`
	LogLevel    string           `yaml:"log_level"`
}

type BlockConfig struct {
	Hostname string         `yaml:"hostname"`
	Port     string         `yaml:"port"`
	BlockNum int            `yaml:"block_num"`
	Event    uint16         `yaml:"event"`
	Shipgate ShipgateClient `yaml:"shipgate"`
	Static   StaticData     `yaml:"static_data"`
	LogLevel string         `yaml:"log_level"`
}

type ShipgateConfig struct {
	Hostname string   `yaml:"hostname"`
	Port     string   `yaml:"port"`
	Password string   `yaml:"password"`
	Database Database `yaml:"database"`
	LogLevel string   `yaml:"log_level"`
}
