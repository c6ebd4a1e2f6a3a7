// Command riscvsim is a thin CLI front end over the simulator core and
// its ambient packages: it is the one place in the module allowed to
// do file I/O.
package main

import (
	"fmt"
	"os"

	"github.com/lookbusy1344/riscv-sim/asmfmt"
	"github.com/lookbusy1344/riscv-sim/config"
	"github.com/lookbusy1344/riscv-sim/debugger"
	"github.com/lookbusy1344/riscv-sim/emit"
	"github.com/lookbusy1344/riscv-sim/isa"
	"github.com/lookbusy1344/riscv-sim/lint"
	"github.com/lookbusy1344/riscv-sim/sim"
	"github.com/lookbusy1344/riscv-sim/xref"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riscvsim",
		Short: "RV32IM assembler and simulator",
	}

	rootCmd.AddCommand(
		newAssembleCmd(),
		newRunCmd(),
		newStepCmd(),
		newDisasmCmd(),
		newEmitCCmd(),
		newEmitCLikeCmd(),
		newLintCmd(),
		newFmtCmd(),
		newXrefCmd(),
		newDebugCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newSimFromFile reads path, loads config (falling back to defaults),
// and returns an assembled Simulator.
func newSimFromFile(path string) (*sim.Simulator, error) {
	source, err := os.ReadFile(path) // #nosec G304 -- CLI argument, operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	s := sim.NewSimulator(cfg.Execution.MemorySize)
	if err := s.Assemble(string(source)); err != nil {
		return nil, fmt.Errorf("assemble %s: %w", path, err)
	}

	return s, nil
}

func newAssembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <file.s>",
		Short: "Assemble a source file and report success or the first error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("OK: %d instructions\n", len(s.Prog.Instructions))
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var maxSteps int

	cmd := &cobra.Command{
		Use:   "run <file.s>",
		Short: "Assemble and run a program to completion or trap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}

			result := s.StepMany(maxSteps)
			printStepResult(result, s)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step cap for this call (0 = use configured default)")
	return cmd
}

// printStepResult reports a StepResult's outcome: a trap, a halt, or
// the PC the program stopped at.
func printStepResult(result isa.StepResult, s *sim.Simulator) {
	switch {
	case result.Trap != nil:
		fmt.Printf("trap: %s (%s) at PC=0x%08X\n", result.Trap.Code, result.Trap.Message, s.CPU.PC)
	case result.Halted:
		fmt.Printf("halted at PC=0x%08X\n", s.CPU.PC)
	default:
		fmt.Printf("stopped at PC=0x%08X (step limit reached)\n", s.CPU.PC)
	}
}

func newStepCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "step <file.s>",
		Short: "Assemble and execute a fixed number of instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}

			for i := 0; i < count; i++ {
				result := s.Step()
				if result.Trap != nil || result.Halted {
					printStepResult(result, s)
					return nil
				}
			}

			fmt.Printf("PC=0x%08X after %d step(s)\n", s.CPU.PC, count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of instructions to execute")
	return cmd
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file.s>",
		Short: "Assemble and print a linear disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}
			for _, line := range emit.Disassemble(s.Prog) {
				fmt.Printf("0x%08X: %s\n", line.PC, line.Text)
			}
			return nil
		},
	}
}

func newEmitCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit-c <file.s>",
		Short: "Assemble and print the RV2C-style C view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Print(emit.EmitC(s.Prog))
			return nil
		},
	}
}

func newEmitCLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit-clike <file.s>",
		Short: "Assemble and print the C-like pseudo-source view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Print(emit.EmitCLike(s.Prog))
			return nil
		},
	}
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file.s>",
		Short: "Assemble and report lint findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}

			issues := lint.Check(s.Prog)
			for _, issue := range issues {
				fmt.Println(issue.String())
			}
			if len(issues) == 0 {
				fmt.Println("no issues found")
			}
			return nil
		},
	}
}

func newFmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file.s>",
		Short: "Canonicalize assembly source formatting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0]) // #nosec G304 -- CLI argument
			if err != nil {
				return err
			}

			formatted, err := asmfmt.Format(string(source))
			if err != nil {
				return err
			}

			if write {
				return os.WriteFile(args[0], []byte(formatted), 0o644) // #nosec G306 -- editing a source file the operator named
			}
			fmt.Print(formatted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the formatted source back to the file")
	return cmd
}

func newXrefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "xref <file.s>",
		Short: "Assemble and print a label cross-reference report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}
			table := xref.Build(s.Prog)
			fmt.Print(table.String())
			return nil
		},
	}
}

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <file.s>",
		Short: "Launch the interactive line debugger on a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimFromFile(args[0])
			if err != nil {
				return err
			}

			dbg := debugger.NewDebugger(s)
			dbg.LoadSymbols(s.Prog.Labels)

			sourceMap := make(map[uint32]string)
			for idx, inst := range s.Prog.Instructions {
				if inst.SrcLine >= 0 && inst.SrcLine < len(s.Prog.SourceLines) {
					sourceMap[uint32(idx)*4] = s.Prog.SourceLines[inst.SrcLine]
				}
			}
			dbg.LoadSourceMap(sourceMap)

			return debugger.RunCLI(dbg)
		},
	}
}
