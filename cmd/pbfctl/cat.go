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
	"bufio"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"

	"go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/model"
	"go.osmpbf.dev/pbf/stream"
)

func init() {
	RootCmd.AddCommand(catCmd)
	catCmd.Flags().Bool("nodes", false, "include nodes (default: all types)")
	catCmd.Flags().Bool("ways", false, "include ways (default: all types)")
	catCmd.Flags().Bool("relations", false, "include relations (default: all types)")
	catCmd.Flags().Bool("changesets", false, "include changesets (default: all types)")
	catCmd.Flags().IntP("workers", "w", pbf.DefaultNumWorkers(), "number of decode workers")
}

var catCmd = &cobra.Command{
	Use:   "cat <OSM PBF file>",
	Short: "Dump every entity in a PBF file as newline-delimited JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		workers, _ := flags.GetInt("workers")

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		r, err := pbf.NewReader(f, pbf.WithNumWorkers(workers), pbf.WithReadTypes(readTypesFromFlags(cmd)))
		if err != nil {
			log.Fatal(err)
		}
		defer r.Close()

		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()

		enc := json.NewEncoder(w)

		for item := range stream.Entities(r) {
			if item.Error != nil {
				log.Fatal(item.Error)
			}

			if err := enc.Encode(item.Value); err != nil {
				log.Fatal(err)
			}
		}
	},
}

func readTypesFromFlags(cmd *cobra.Command) model.ReadTypes {
	flags := cmd.Flags()

	nodes, _ := flags.GetBool("nodes")
	ways, _ := flags.GetBool("ways")
	relations, _ := flags.GetBool("relations")
	changesets, _ := flags.GetBool("changesets")

	if !nodes && !ways && !relations && !changesets {
		return model.ReadAll
	}

	var types model.ReadTypes
	if nodes {
		types |= model.ReadNodes
	}

	if ways {
		types |= model.ReadWays
	}

	if relations {
		types |= model.ReadRelations
	}

	if changesets {
		types |= model.ReadChangesets
	}

	return types
}
