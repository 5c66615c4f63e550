// Command solbuild is the CLI sketch described in spec §6.5: flag parsing
// and wiring only. "compile" builds a config.Config and calls
// solbuild.Driver; "compile-json" decodes a standard-JSON bundle and calls
// jsondriver.Compile. Argument parsing itself is explicitly out of
// scope for the core; this file exists to show the two commands the core
// expects to be driven by.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sc-build/solbuild"
	"github.com/sc-build/solbuild/config"
	"github.com/sc-build/solbuild/jsondriver"
	"github.com/sc-build/solbuild/wrapper"
)

func main() {
	root := &cobra.Command{Use: "solbuild", Short: "build driver for versioned SC-file compilers"}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newCompileJSONCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCompileCmd() *cobra.Command {
	var configPath, solcBin string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "compile SC files named as inputs, resolving their import closure",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(configPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(raw)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Contracts = config.Contracts(args)
			}
			d := solbuild.NewDriver(cfg, processWrapperFactory(solcBin))
			return d.Compile(context.Background())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "solbuild.json", "path to configuration JSON")
	cmd.Flags().StringVar(&solcBin, "solc-bin", "solc", "path to the resolved compiler binary (discovery is out of core scope)")
	return cmd
}

// processWrapperFactory adapts wrapper.NewProcessWrapper's three-argument
// constructor to the wrapper.Factory shape NewDriver/NewRegistry require,
// supplying the already-resolved binary path since the core never
// discovers or downloads a binary itself (spec §6.3).
func processWrapperFactory(binaryPath string) wrapper.Factory {
	return func(version string, settings json.RawMessage) (wrapper.Wrapper, error) {
		return wrapper.NewProcessWrapper(version, binaryPath, settings)
	}
}

func newCompileJSONCmd() *cobra.Command {
	var bundlePath, pin, solcBin string
	var offline bool
	cmd := &cobra.Command{
		Use:   "compile-json",
		Short: "compile a standard-JSON bundle directly, skipping the import-closure walk",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(bundlePath)
			if err != nil {
				return err
			}
			var bundle struct {
				Sources  map[string]struct{ Content string } `json:"sources"`
				Settings json.RawMessage                     `json:"settings"`
			}
			if err := json.Unmarshal(raw, &bundle); err != nil {
				return err
			}
			sources := make(map[string]string, len(bundle.Sources))
			for path, s := range bundle.Sources {
				sources[path] = s.Content
			}
			registry := wrapper.NewRegistry(processWrapperFactory(solcBin))
			out, version, err := jsondriver.Compile(context.Background(), jsondriver.Request{
				Bundle:           jsondriver.Bundle{Sources: sources, Settings: bundle.Settings},
				Pin:              pin,
				Offline:          offline,
				ReleaseIndexURL:  solbuild.DefaultReleaseIndexURL,
				ReleaseCachePath: ".solbuild-cache/release-index.json",
			}, registry)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "compiled with %s, %d source file(s) in output\n", version, len(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "path to a standard-JSON bundle")
	cmd.Flags().StringVar(&pin, "solc-version", "", "pin a back-end version")
	cmd.Flags().StringVar(&solcBin, "solc-bin", "solc", "path to the resolved compiler binary (discovery is out of core scope)")
	cmd.Flags().BoolVar(&offline, "offline", false, "forbid network for the release index")
	return cmd
}
