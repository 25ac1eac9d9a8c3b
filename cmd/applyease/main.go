// Package main provides the applyease command line: the HTTP API server, an MCP server
// and offline matching, tailoring and rendering commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const app = "applyease"

var version = "dev"

var (
	cfgFile string
	v       = viper.New()

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "Match résumés against job descriptions and tailor them",
		Long:          "applyease scores résumés against job descriptions, lists the missing technical keywords and rewrites résumés toward them, as a REST API, an MCP server or one-off commands.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = v.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
