// Command judged is the daemon entry point (component O): it wires
// config, logging, the runner transport, the judger specializations,
// the orchestrator, diagnostics, the progress/metrics server and the
// result sink into one running process.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotwords123/judge-v3/version"
)

var rootCmd = &cobra.Command{
	Use:   "judged",
	Short: "judge-v3 daemon: the dependency-aware subtask judging core",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
