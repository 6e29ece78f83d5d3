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
	"log"
	"os"

	"github.com/spf13/cobra"

	"go.osmpbf.dev/pbf"
	"go.osmpbf.dev/pbf/internal/framer"
	"go.osmpbf.dev/pbf/stream"
)

func init() {
	RootCmd.AddCommand(convertCmd)
	convertCmd.Flags().IntP("workers", "w", pbf.DefaultNumWorkers(), "number of decode/encode workers")
	convertCmd.Flags().Bool("no-compression", false, "write raw (uncompressed) blobs instead of zlib")
	convertCmd.Flags().Bool("force", false, "overwrite the output file if it already exists")
	convertCmd.Flags().Bool("progress", true, "show a byte-count progress bar on stderr")
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.osm.pbf> <output.osm.pbf>",
	Short: "Decode a PBF file and re-encode it, exercising the full reader/writer pipeline",
	Args:  cobra.ExactArgs(2), //nolint:mnd // <input> <output>
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		workers, _ := flags.GetInt("workers")
		noCompression, _ := flags.GetBool("no-compression")
		force, _ := flags.GetBool("force")
		progress, _ := flags.GetBool("progress")

		compression := framer.CompressionZlib
		if noCompression {
			compression = framer.CompressionNone
		}

		overwrite := pbf.OverwriteNo
		if force {
			overwrite = pbf.OverwriteAllow
		}

		in, err := os.Open(args[0])
		if err != nil {
			log.Fatal(err)
		}
		defer in.Close()

		rc, err := wrapInputFile(in, progress)
		if err != nil {
			log.Fatal(err)
		}

		r, err := pbf.NewReader(rc, pbf.WithNumWorkers(workers))
		if err != nil {
			log.Fatal(err)
		}
		defer r.Close()

		out, err := pbf.Create(args[1], r.Header(),
			pbf.WithWriterNumWorkers(workers),
			pbf.WithCompression(compression),
			pbf.WithOverwrite(overwrite),
			pbf.WithWriterRegistry(formats),
		)
		if err != nil {
			log.Fatal(err)
		}

		if err := stream.WriteAll(out, stream.Entities(r)); err != nil {
			out.Close() //nolint:errcheck // the write error above takes precedence

			log.Fatal(err)
		}

		if err := out.Close(); err != nil {
			log.Fatal(err)
		}
	},
}
