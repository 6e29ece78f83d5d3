// Copyright 2017-25 the original author or authors.
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

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/model"
	"go.osmpbf.dev/pbf/stream"
)

type extendedHeader struct {
	model.Header

	NodeCount      int64
	WayCount       int64
	RelationCount  int64
	ChangesetCount int64
}

func init() {
	RootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolP("json", "j", false, "format information as JSON")
	infoCmd.Flags().BoolP("extended", "e", false, "scan the entire file and count entities")
	infoCmd.Flags().IntP("workers", "w", pbf.DefaultNumWorkers(), "number of decode workers")
}

var infoCmd = &cobra.Command{
	Use:   "info [<OSM PBF file>]",
	Short: "Print a PBF file's header, and optionally its entity counts",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		jsonfmt, _ := flags.GetBool("json")
		extended, _ := flags.GetBool("extended")
		workers, _ := flags.GetInt("workers")

		f, err := openArgOrStdin(args)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		rc, err := wrapInputFile(f, extended && !jsonfmt)
		if err != nil {
			log.Fatal(err)
		}

		r, err := pbf.NewReader(rc, pbf.WithNumWorkers(workers))
		if err != nil {
			log.Fatal(err)
		}

		info := &extendedHeader{Header: r.Header()}

		if extended {
			countEntities(r, info)
		}

		if err := r.Close(); err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			printJSON(info, extended)
		} else {
			printText(info, extended)
		}
	},
}

func openArgOrStdin(args []string) (*os.File, error) {
	if len(args) == 1 {
		return os.Open(args[0])
	}

	return os.Stdin, nil
}

func countEntities(r *pbf.Reader, info *extendedHeader) {
	for item := range stream.Entities(r) {
		if item.Error != nil {
			log.Fatal(item.Error)
		}

		switch item.Value.(type) {
		case model.Node:
			info.NodeCount++
		case model.Way:
			info.WayCount++
		case model.Relation:
			info.RelationCount++
		case model.Changeset:
			info.ChangesetCount++
		}
	}
}

func printJSON(info *extendedHeader, extended bool) {
	var v interface{} = info.Header
	if extended {
		v = info
	}

	b, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(b))
}

func printText(info *extendedHeader, extended bool) {
	if info.BoundingBox != nil {
		fmt.Printf("BoundingBox: [%s, %s, %s, %s]\n",
			info.BoundingBox.Left, info.BoundingBox.Bottom, info.BoundingBox.Right, info.BoundingBox.Top)
	}

	fmt.Printf("RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Printf("OptionalFeatures: %s\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Printf("WritingProgram: %s\n", info.WritingProgram)
	fmt.Printf("Source: %s\n", info.Source)
	fmt.Printf("OsmosisReplicationTimestamp: %s\n", info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Printf("OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Printf("OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		fmt.Printf("NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Printf("WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Printf("RelationCount: %s\n", humanize.Comma(info.RelationCount))
		fmt.Printf("ChangesetCount: %s\n", humanize.Comma(info.ChangesetCount))
	}
}
