// Package main implements the hikari IR tool: parse, verify, and repair
// shader IR in its textual form.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hikari-gpu/hikari/internal/ir"
	"github.com/hikari-gpu/hikari/internal/ir/passes"
)

const version = "0.1.0-dev"

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hikari-ir: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "hikari-ir",
		Short:         "Inspect and repair hikari shader IR",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			logrus.SetLevel(lvl)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warning",
		"log level (debug, info, warning, error)")

	cmd.AddCommand(newDumpCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newRepairCmd())
	return cmd
}

// loadProgram parses the IR file at path.
func loadProgram(path string) (*ir.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ir.Parse(path, f)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.hir>",
		Short: "Parse a shader and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			ir.Fprint(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.hir>",
		Short: "Check a shader against the SSA and CFG invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if err := ir.Validate(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
}

func newRepairCmd() *cobra.Command {
	var (
		validate      bool
		elimPhis      bool
		debugValidate bool
		dumpBefore    string
		dumpAfter     string
	)

	cmd := &cobra.Command{
		Use:   "repair <file.hir>",
		Short: "Restore SSA dominance by inserting phis, then print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			if debugValidate {
				ir.Debug |= ir.DebugValidateIR
			}

			pipeline := []passes.Pass{
				{Name: "repair_ssa", Fn: passes.RepairSSA},
			}
			if elimPhis {
				pipeline = append(pipeline, passes.Pass{Name: "elim_phis", Fn: passes.ElimPhis})
			}

			cfg := passes.Config{
				DumpBefore: dumpBefore,
				DumpAfter:  dumpAfter,
			}
			if err := passes.Run(p, pipeline, cfg); err != nil {
				return err
			}
			if validate {
				if err := ir.Validate(p); err != nil {
					return fmt.Errorf("validate after repair: %w", err)
				}
			}

			ir.Fprint(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the repaired IR")
	cmd.Flags().BoolVar(&elimPhis, "elim-phis", false, "remove trivial phis after repair")
	cmd.Flags().BoolVar(&debugValidate, "debug-validate", false, "abort on undefined repair phi operands")
	cmd.Flags().StringVar(&dumpBefore, "dump-before", "", "dump IR before pass (name or \"*\")")
	cmd.Flags().StringVar(&dumpAfter, "dump-after", "", "dump IR after pass (name or \"*\")")
	return cmd
}
