// Copyright 2025 The agentbench Authors
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

// Command agentbench scores recorded agent outputs and compares
// provider costs from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentbench",
		Short:         "Benchmark and compare AI agent frameworks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newCostsCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}
