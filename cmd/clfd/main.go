// Copyright 2024 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// clfd reads Common Log Format access logs, stores the parsed entries in an
// SQLite database and exposes them over an HTTP API.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackbister/clf/internal/config"
	"github.com/jackbister/clf/internal/entries"
	"github.com/jackbister/clf/internal/files"
	"github.com/jackbister/clf/internal/web"

	_ "github.com/mattn/go-sqlite3"
)

var cfgFileFlag string
var databaseFileFlag string
var readIntervalFlag time.Duration
var webAddrFlag string

func main() {
	flag.StringVar(&cfgFileFlag, "config", "clfd.json", "The name of the file containing the configuration for clfd. If a config file exists, all other command line configuration will be ignored.")
	flag.StringVar(&databaseFileFlag, "dbfile", "clfd.db", "The name of the file in which clfd will store its data. If the name ':memory:' is used, no file will be created and everything will be stored in memory.")
	flag.DurationVar(&readIntervalFlag, "readinterval", 1*time.Second, "The interval between checks for new lines in the watched files.")
	flag.StringVar(&webAddrFlag, "webaddr", ":8080", "The address on which the HTTP API will be exposed.")
	flag.Parse()

	cfg := config.Config{
		DatabaseFile: databaseFileFlag,
		WebAddress:   webAddrFlag,
		ReadInterval: readIntervalFlag,
		Globs:        flag.Args(),
	}
	cfgFile, err := os.Open(cfgFileFlag)
	if err == nil {
		var jsonCfg config.JsonConfig
		err = json.NewDecoder(cfgFile).Decode(&jsonCfg)
		if err != nil {
			log.Fatalf("error decoding json from file '%v': %v\n", cfgFileFlag, err)
		}
		cfgFile.Close()
		newCfg, err := config.FromJSON(jsonCfg)
		if err != nil {
			log.Fatalf("error parsing configuration from file '%v': %v\n", cfgFileFlag, err)
		}
		cfg = *newCfg
		log.Printf("Using configuration from file '%v': %+v\n", cfgFileFlag, cfg)
	} else {
		log.Printf("Could not open config file '%v', will use command line configuration\n", cfgFileFlag)
	}
	if len(cfg.Globs) == 0 {
		log.Println("no file globs given, clfd will not read any files. Globs are given as command line arguments after the flags, or in the \"globs\" property of the config file.")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := context.Background()

	db, err := sql.Open("sqlite3", "file:"+cfg.DatabaseFile+"?cache=shared&_journal_mode=WAL")
	if err != nil {
		log.Fatalln(err.Error())
	}
	repo, err := entries.SqliteRepository(db, logger)
	if err != nil {
		log.Fatalln(err.Error())
	}
	publisher := entries.BatchedRepositoryPublisher(repo, logger)

	for _, glob := range cfg.Globs {
		_, err := files.NewGlobWatcher(glob, cfg.ReadInterval, publisher, ctx, logger)
		if err != nil {
			log.Printf("got error when creating GlobWatcher for glob=%s: %v", glob, err)
		}
	}

	go func() {
		log.Fatal(web.NewWeb(cfg.WebAddress, repo, logger).Serve())
	}()

	select {}
}
