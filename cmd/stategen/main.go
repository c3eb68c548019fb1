// Copyright 2025 go-highway Authors
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

// Command stategen generates backend source for the state update blocks of
// a model.
//
// Usage:
//
//	stategen generate -m neuron.yaml -o build -t cython
//	stategen generate -m neuron.yaml -o build -t all
//	stategen functions -t cpp
//	stategen targets
//
// The generate command writes, per target, a source unit holding the support
// code, the namespace setup and each block's scalar and vector lines, plus a
// YAML manifest with the compile arguments, the host callbacks to bind and
// the attribute values captured during generation.
//
// Set STATEGEN_NO_NATIVE=1 to leave host-specific flags out of the compile
// arguments.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajroetker/stategen/codegen"
	"github.com/ajroetker/stategen/funcs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stategen",
		Short:         "Generate backend source for model state updates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newFunctionsCmd(), newTargetsCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var (
		modelPath  string
		targets    string
		outputDir  string
		strict     bool
		bufferSize int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Translate a model into one source unit per target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := LoadModel(modelPath)
			if err != nil {
				return err
			}
			if targets == "" {
				targets = model.Target
			}
			targetList := parseTargets(targets)
			if len(targetList) == 0 {
				return fmt.Errorf("no valid targets specified")
			}

			ns, blocks, indices, err := model.Build()
			if err != nil {
				return err
			}
			registry, err := funcs.Default(funcs.WithBufferSize(bufferSize))
			if err != nil {
				return err
			}
			logger := log.New(cmd.ErrOrStderr(), "stategen: ", 0)

			for _, name := range targetList {
				target, err := codegen.GetTarget(name)
				if err != nil {
					return err
				}
				gen := codegen.New(target, registry, codegen.WithLogger(logger), codegen.WithStrict(strict))
				res, err := gen.Translate(blocks, ns, indices)
				if err != nil {
					return err
				}
				files, err := writeUnit(outputDir, model.Name, target, blocks, res)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", strings.Join(files, ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated code for targets: %s\n", strings.Join(targetList, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model file (YAML)")
	cmd.Flags().StringVarP(&targets, "target", "t", "", "comma-separated targets ("+strings.Join(codegen.AvailableTargets(), ",")+") or 'all'; defaults to the model's target")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on variables of unrecognized kind instead of binding them by name")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", funcs.DefaultBufferSize, "draws per refill of the random number buffers")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newFunctionsCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the functions a backend implements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := funcs.Default()
			if err != nil {
				return err
			}
			names := registry.Functions(target)
			if len(names) == 0 {
				return fmt.Errorf("no functions registered for backend %q (known: %s)", target, strings.Join(registry.Backends(), ", "))
			}
			for _, name := range names {
				d, err := registry.Resolve(name, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-9s %s\n", name, d.Kind, d.CallName(name))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", funcs.Cython, "backend name")
	return cmd
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the available targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range codegen.AvailableTargets() {
				t, err := codegen.GetTarget(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", t.Name, t.Title)
			}
			return nil
		},
	}
}

func parseTargets(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 1 && result[0] == "all" {
		return codegen.AvailableTargets()
	}
	return result
}
