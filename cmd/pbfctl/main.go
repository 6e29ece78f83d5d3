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

// Command pbfctl inspects, dumps, and converts OpenStreetMap PBF files.
package main

import (
	"fmt"
	"os"

	"go.osmpbf.dev/pbf"
)

// formats is built here, at the process entry point, and registered
// explicitly rather than relying on pbf.DefaultRegistry's lazily-built
// singleton: an operator embedding a second codec (e.g. an XML-based
// one reusing the same Buffer pipeline) registers it here, once, before
// any subcommand opens a file.
var formats = pbf.NewRegistry()

func main() {
	formats.Register(pbf.EncodingBinary, pbf.FormatOSM, pbf.NewReader, pbf.NewWriter)

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
