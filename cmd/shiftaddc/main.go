// Command shiftaddc decomposes a target coefficient matrix into a
// shift-add hardware pipeline: P2D/LZD decomposition, HIR pipeline
// construction, and VHDL netlist emission, wired together the way the
// teacher's cmd/z80opt/main.go wires its search/stoke subcommands around
// a cobra root command.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oisee/shiftaddc/internal/config"
	"github.com/oisee/shiftaddc/pkg/codegen"
	"github.com/oisee/shiftaddc/pkg/decomp"
	"github.com/oisee/shiftaddc/pkg/emit"
	"github.com/oisee/shiftaddc/pkg/hir"
	"github.com/oisee/shiftaddc/pkg/netio"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftaddc",
		Short: "Shift-add pipeline compiler — decompose a matrix into a VHDL netlist",
	}

	rootCmd.AddCommand(newDecomposeCmd(), newEmitCmd(), newCheckpointCmd(), newVerifyCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDecomposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Run a decomposition engine against a target matrix",
	}
	cmd.AddCommand(newDecomposeP2DCmd(), newDecomposeLZDCmd())
	return cmd
}

func newDecomposeP2DCmd() *cobra.Command {
	var matrixPath, slicesStr, checkpointPath string
	var e, totalBits, fracBits, maxIters, workers int
	var sqnrTarget float64
	var search, verbose bool

	cmd := &cobra.Command{
		Use:   "p2d",
		Short: "Sliced power-of-two decomposition",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := netio.ReadMatrixCSV(matrixPath)
			if err != nil {
				return err
			}
			_, cols := m.Dims()

			cfg := config.DefaultP2D()
			cfg.FixedPoint = config.FixedPoint{TotalBits: totalBits, FracBits: fracBits}
			cfg.OperandCap = e
			cfg.SQNRTarget = sqnrTarget
			cfg.MaxIters = maxIters
			cfg.Workers = workers

			dcfg := decomp.P2DConfig{
				E: cfg.OperandCap, SQNRTarget: cfg.SQNRTarget, MaxIters: cfg.MaxIters,
				TotalBits: cfg.TotalBits, FracBits: cfg.FracBits, Verbose: verbose,
			}

			var best *decomp.SlicingResult
			if slicesStr != "" {
				slices, err := parseIntList(slicesStr)
				if err != nil {
					return err
				}
				dcfg.Slices = slices
				res := decomp.DecomposeP2D(m, dcfg)
				best = &decomp.SlicingResult{Slicing: slices, Result: res}
			} else if search {
				candidates := decomp.GenerateSlicings(cols, cols)
				pool := decomp.NewSlicingWorkerPool(cfg.Workers)
				best = pool.RunSlicingSearch(m, candidates, dcfg, verbose)
			} else {
				dcfg.Slices = []int{cols}
				res := decomp.DecomposeP2D(m, dcfg)
				best = &decomp.SlicingResult{Slicing: dcfg.Slices, Result: res}
			}

			if best == nil || !best.Result.Converged {
				return fmt.Errorf("p2d: no slicing converged to %.1f dB within %d iterations", cfg.SQNRTarget, cfg.MaxIters)
			}
			fmt.Printf("slicing: %v\n", best.Slicing)
			fmt.Printf("SQNR: %.2f dB\n", best.Result.SQNR)
			fmt.Printf("adders: %d\n", best.Result.TotalAdds)
			fmt.Printf("iterations: %d\n", best.Result.Iters)

			if checkpointPath != "" {
				ckpt := &netio.Checkpoint{
					BestSlicing: best.Slicing, BestTotalAdds: best.Result.TotalAdds,
					Iteration: best.Result.Iters, SQNRTarget: cfg.SQNRTarget, Converged: true,
				}
				if err := netio.SaveCheckpoint(checkpointPath, ckpt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&matrixPath, "matrix", "", "target matrix CSV path (required)")
	cmd.Flags().StringVar(&slicesStr, "slices", "", "explicit comma-separated slice widths")
	cmd.Flags().BoolVar(&search, "search", false, "search over all valid slicings")
	cmd.Flags().IntVar(&e, "e", 2, "operand cap per factor row (2 or 3)")
	cmd.Flags().IntVar(&totalBits, "total-bits", 8, "fixed-point total bit width W")
	cmd.Flags().IntVar(&fracBits, "frac-bits", 4, "fixed-point fractional bit width D")
	cmd.Flags().Float64Var(&sqnrTarget, "sqnr-target", 48, "target SQNR in dB")
	cmd.Flags().IntVar(&maxIters, "max-iters", 200, "iteration cap P_max")
	cmd.Flags().IntVar(&workers, "workers", 0, "slicing-search parallelism (0 = NumCPU)")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "write progress checkpoint to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")
	cmd.MarkFlagRequired("matrix")
	return cmd
}

func newDecomposeLZDCmd() *cobra.Command {
	var matrixPath string
	var totalBits, fracBits, maxAdd int
	var sqnrTarget float64
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lzd",
		Short: "Dictionary-coded 2-sparse decomposition",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := netio.ReadMatrixCSV(matrixPath)
			if err != nil {
				return err
			}

			lcfg := config.DefaultLZD()
			lcfg.FixedPoint = config.FixedPoint{TotalBits: totalBits, FracBits: fracBits}
			lcfg.SQNRTarget = sqnrTarget
			lcfg.MaxAdd = maxAdd

			dcfg := decomp.LZDConfig{SQNRTarget: lcfg.SQNRTarget, MaxAdd: lcfg.MaxAdd, Verbose: verbose}
			res := decomp.DecomposeLZD(m, dcfg)
			if !res.Converged {
				return fmt.Errorf("lzd: did not reach %.1f dB within an addition budget of %d", sqnrTarget, maxAdd)
			}
			fmt.Printf("SQNR: %.2f dB\n", res.SQNR)
			fmt.Printf("adders: %d\n", res.TotalAdds)
			return nil
		},
	}
	cmd.Flags().StringVar(&matrixPath, "matrix", "", "target matrix CSV path (required)")
	cmd.Flags().IntVar(&totalBits, "total-bits", 8, "fixed-point total bit width W")
	cmd.Flags().IntVar(&fracBits, "frac-bits", 4, "fixed-point fractional bit width D")
	cmd.Flags().Float64Var(&sqnrTarget, "sqnr-target", 48, "target SQNR in dB")
	cmd.Flags().IntVar(&maxAdd, "max-add", 280, "addition budget")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")
	cmd.MarkFlagRequired("matrix")
	return cmd
}

func newEmitCmd() *cobra.Command {
	var matrixPath, engine, outDir, moduleName, slicesStr string
	var totalBits, fracBits int
	var sqnrTarget float64
	var fixShiftBug bool

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Decompose and emit a VHDL netlist for the resulting pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := netio.ReadMatrixCSV(matrixPath)
			if err != nil {
				return err
			}
			rows, cols := m.Dims()

			b := hir.NewBuilder()
			b.NewModule(moduleName)
			input := make([]hir.Ref, cols)
			for i := range input {
				width := totalBits
				r, err := b.NewSignal(fmt.Sprintf("in%d", i), &width)
				if err != nil {
					return err
				}
				input[i] = r
			}

			var outputs []hir.Ref
			switch engine {
			case "p2d":
				slices := []int{cols}
				if slicesStr != "" {
					slices, err = parseIntList(slicesStr)
					if err != nil {
						return err
					}
				}
				dcfg := decomp.P2DConfig{E: 2, SQNRTarget: sqnrTarget, MaxIters: 200, TotalBits: totalBits, FracBits: fracBits, Slices: slices}
				res := decomp.DecomposeP2D(m, dcfg)
				if !res.Converged {
					return fmt.Errorf("emit: p2d decomposition did not converge")
				}
				outputs, err = codegen.GeneratePipelineP2D(b, input, res, slices, totalBits, fracBits, rows)
			case "lzd":
				dcfg := decomp.LZDConfig{SQNRTarget: sqnrTarget, MaxAdd: 280}
				res := decomp.DecomposeLZD(m, dcfg)
				if !res.Converged {
					return fmt.Errorf("emit: lzd decomposition did not converge")
				}
				outputs, err = codegen.GeneratePipelineLZD(b, input, res, totalBits, fracBits, codegen.LZDConfig{FixShiftBug: fixShiftBug})
			default:
				return fmt.Errorf("emit: unknown --engine %q (want p2d or lzd)", engine)
			}
			if err != nil {
				return err
			}
			for i, o := range outputs {
				_ = i
				b.RegisterOutput(o)
			}

			if err := emit.WriteVHDL(b, outDir); err != nil {
				return err
			}
			fmt.Printf("wrote %s/%s.vhd (%d outputs)\n", outDir, moduleName, len(outputs))
			return nil
		},
	}
	cmd.Flags().StringVar(&matrixPath, "matrix", "", "target matrix CSV path (required)")
	cmd.Flags().StringVar(&engine, "engine", "p2d", "decomposition engine: p2d or lzd")
	cmd.Flags().StringVar(&outDir, "out", "./out", "output directory for the generated .vhd file")
	cmd.Flags().StringVar(&moduleName, "name", "shiftadd_pipeline", "entity/architecture name")
	cmd.Flags().StringVar(&slicesStr, "slices", "", "explicit comma-separated slice widths (p2d only)")
	cmd.Flags().IntVar(&totalBits, "total-bits", 8, "fixed-point total bit width W")
	cmd.Flags().IntVar(&fracBits, "frac-bits", 4, "fixed-point fractional bit width D")
	cmd.Flags().Float64Var(&sqnrTarget, "sqnr-target", 48, "target SQNR in dB")
	cmd.Flags().BoolVar(&fixShiftBug, "fix-shift-bug", false, "use corrected per-edge LZD shift amounts instead of the original's shared-first-edge behavior")
	cmd.MarkFlagRequired("matrix")
	return cmd
}

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect or resume from a decomposition checkpoint",
	}
	var path string
	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Print a saved checkpoint's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ckpt, err := netio.LoadCheckpoint(path)
			if err != nil {
				return err
			}
			fmt.Printf("best slicing: %v\n", ckpt.BestSlicing)
			fmt.Printf("best total adds: %d\n", ckpt.BestTotalAdds)
			fmt.Printf("iteration: %d\n", ckpt.Iteration)
			fmt.Printf("converged: %v\n", ckpt.Converged)
			return nil
		},
	}
	resumeCmd.Flags().StringVar(&path, "file", "", "checkpoint file path (required)")
	resumeCmd.MarkFlagRequired("file")
	cmd.AddCommand(resumeCmd)
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var vhdlPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Parse an external VHDL entity and print its interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(vhdlPath)
			if err != nil {
				return err
			}
			ent, err := emit.ParseEntity(string(data))
			if err != nil {
				return err
			}
			fmt.Printf("entity %s\n", ent.Name)
			for _, g := range ent.Generics {
				fmt.Printf("  generic %s := %d\n", g.Name, g.Default)
			}
			generics := make(map[string]int, len(ent.Generics))
			for _, g := range ent.Generics {
				generics[g.Name] = g.Default
			}
			for _, p := range ent.Ports {
				if p.WidthExpr == "" {
					fmt.Printf("  port %s : %v std_logic\n", p.Name, p.Dir)
					continue
				}
				w, err := emit.EvalWidthExpr(p.WidthExpr, generics)
				if err != nil {
					return fmt.Errorf("verify: port %s: %w", p.Name, err)
				}
				fmt.Printf("  port %s : %v std_logic_vector(%d downto 0)\n", p.Name, p.Dir, w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&vhdlPath, "file", "", "external .vhd file to parse (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in slice list", p)
		}
		out = append(out, v)
	}
	return out, nil
}
