// Package emit renders a built hir.Module into a synthesizable VHDL
// entity/architecture pair, following the statement ordering and
// synchronous-register convention of the original netlist generator
// (hwgen.py's Module.generateVHDL) while working from the redesigned
// arena/Builder data model instead of a global module stack.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oisee/shiftaddc/pkg/hir"
)

// WriteVHDL pops the current top module from b, renders it, and writes
// it to <outDir>/<module name>.vhd, creating outDir if necessary (spec
// §6 filesystem convention: one file per module, directory auto-created).
func WriteVHDL(b *hir.Builder, outDir string) error {
	m, err := b.PopModule()
	if err != nil {
		return err
	}
	if err := hir.DetermineWidths(m); err != nil {
		return err
	}
	src, err := RenderModule(b, m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("emit: creating output dir %q: %w", outDir, err)
	}
	path := filepath.Join(outDir, m.Name+".vhd")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("emit: writing %q: %w", path, err)
	}
	return nil
}

// RenderModule renders m to VHDL source text without touching the
// filesystem, so callers such as tests can inspect generated text directly.
func RenderModule(b *hir.Builder, m *hir.Module) (string, error) {
	ports := hir.DiscoverPorts(m)

	var sb strings.Builder
	sb.WriteString("library ieee;\n")
	sb.WriteString("use ieee.std_logic_1164.all;\n")
	sb.WriteString("use ieee.numeric_std.all;\n\n")

	fmt.Fprintf(&sb, "entity %s is\n", m.Name)
	sb.WriteString("  port (\n")
	for _, p := range ports {
		s := signalByName(m, p.Name)
		w, err := s.ResolvedWidth()
		if err != nil {
			return "", err
		}
		dir := "in"
		if p.Dir == hir.PortOut {
			dir = "out"
		}
		fmt.Fprintf(&sb, "    %s : %s std_logic_vector(%d downto 0);\n", p.Name, dir, w-1)
	}
	sb.WriteString("    clk : in std_logic\n")
	sb.WriteString("  );\n")
	fmt.Fprintf(&sb, "end entity %s;\n\n", m.Name)

	fmt.Fprintf(&sb, "architecture behavioral of %s is\n\n", m.Name)

	portNames := make(map[string]bool, len(ports))
	for _, p := range ports {
		portNames[p.Name] = true
	}

	hasBuffers := false
	for _, s := range m.Signals {
		w, err := s.ResolvedWidth()
		if err != nil {
			return "", err
		}
		if !portNames[s.Name] {
			fmt.Fprintf(&sb, "  signal %s : std_logic_vector(%d downto 0);\n", s.Name, w-1)
		}
		if s.Buffer > 0 {
			hasBuffers = true
			for stage := 0; stage < s.Buffer; stage++ {
				fmt.Fprintf(&sb, "  signal %s_b%d : std_logic_vector(%d downto 0);\n", s.Name, stage, w-1)
			}
		}
	}
	sb.WriteString("\nbegin\n\n")

	for _, s := range m.Signals {
		switch s.Init {
		case hir.InitConstant:
			fmt.Fprintf(&sb, "  %s <= \"%s\";\n", s.Name, s.InitBits)
		case hir.InitCopyAssign:
			src := m.Signal(s.InitSrc)
			fmt.Fprintf(&sb, "  %s <= %s;\n", s.Name, src.Name)
		}
	}
	sb.WriteString("\n")

	for _, blk := range m.Blocks {
		if blk.Kind == hir.TernaryAdd || blk.Kind == hir.ExternalHDL {
			if err := emitInstance(&sb, m, blk); err != nil {
				return "", err
			}
			continue
		}
		expr, err := blockExpr(m, blk)
		if err != nil {
			return "", err
		}
		out := m.Signal(blk.Outputs[0])
		fmt.Fprintf(&sb, "  -- %s\n", blk.Name)
		fmt.Fprintf(&sb, "  %s <= %s;\n\n", out.Name, expr)
	}

	if hasBuffers {
		sb.WriteString("  sync: process(clk)\n")
		sb.WriteString("  begin\n")
		sb.WriteString("    if rising_edge(clk) then\n")
		for _, s := range m.Signals {
			if s.Buffer == 0 {
				continue
			}
			fmt.Fprintf(&sb, "      %s_b0 <= %s;\n", s.Name, s.Name)
			for stage := 1; stage < s.Buffer; stage++ {
				fmt.Fprintf(&sb, "      %s_b%d <= %s_b%d;\n", s.Name, stage, s.Name, stage-1)
			}
		}
		sb.WriteString("    end if;\n")
		sb.WriteString("  end process sync;\n\n")
	}

	sb.WriteString("end architecture behavioral;\n")
	return sb.String(), nil
}

func signalByName(m *hir.Module, name string) *hir.Signal {
	for _, s := range m.Signals {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// blockExpr renders the concurrent-assignment RHS for all non-instance
// block kinds.
func blockExpr(m *hir.Module, blk *hir.Block) (string, error) {
	in := func(i int) string { return m.Signal(blk.Inputs[i]).Name }
	outWidth, err := m.Signal(blk.Outputs[0]).ResolvedWidth()
	if err != nil {
		return "", err
	}

	switch blk.Kind {
	case hir.Add2:
		return fmt.Sprintf("std_logic_vector(resize(signed(%s), %d) + resize(signed(%s), %d))", in(0), outWidth, in(1), outWidth), nil
	case hir.Sub2:
		return fmt.Sprintf("std_logic_vector(resize(signed(%s), %d) - resize(signed(%s), %d))", in(0), outWidth, in(1), outWidth), nil
	case hir.Mult2:
		return fmt.Sprintf("std_logic_vector(signed(%s) * signed(%s))", in(0), in(1)), nil
	case hir.And2:
		return fmt.Sprintf("%s and %s", in(0), in(1)), nil
	case hir.Or2:
		return fmt.Sprintf("%s or %s", in(0), in(1)), nil
	case hir.Xor2:
		return fmt.Sprintf("%s xor %s", in(0), in(1)), nil
	case hir.Nand2:
		return fmt.Sprintf("%s nand %s", in(0), in(1)), nil
	case hir.Nor2:
		return fmt.Sprintf("%s nor %s", in(0), in(1)), nil
	case hir.Not:
		return fmt.Sprintf("not %s", in(0)), nil
	case hir.Complement:
		return fmt.Sprintf("std_logic_vector(-signed(%s))", in(0)), nil
	case hir.Assign:
		return in(0), nil
	case hir.Shift:
		return shiftExpr(in(0), blk.ShiftPositions, blk.Arith, outWidth), nil
	case hir.Extend:
		if blk.Arith {
			return fmt.Sprintf("std_logic_vector(resize(signed(%s), %d))", in(0), outWidth), nil
		}
		return fmt.Sprintf("std_logic_vector(resize(unsigned(%s), %d))", in(0), outWidth), nil
	case hir.Shorten:
		hi := blk.ShortenLower + outWidth - 1
		return fmt.Sprintf("%s(%d downto %d)", in(0), hi, blk.ShortenLower), nil
	default:
		return "", fmt.Errorf("emit: block %q has no concurrent-assignment form (kind %s)", blk.Name, blk.Kind)
	}
}

func shiftExpr(name string, positions int, arith bool, outWidth int) string {
	if positions > 0 {
		return fmt.Sprintf("std_logic_vector(shift_left(unsigned(%s), %d))", name, positions)
	}
	if arith {
		return fmt.Sprintf("std_logic_vector(shift_right(signed(%s), %d))", name, -positions)
	}
	return fmt.Sprintf("std_logic_vector(shift_right(unsigned(%s), %d))", name, -positions)
}

// emitInstance writes a child-entity instantiation with a direction-aware
// port map, fanning clk out to every non-external-HDL child the way the
// original's generateVHDL does ("if type(m) != VHDLModule: clk => clk").
func emitInstance(sb *strings.Builder, m *hir.Module, blk *hir.Block) error {
	inst := blk.Instance
	fmt.Fprintf(sb, "  -- %s\n", blk.Name)
	fmt.Fprintf(sb, "  %s_i : entity work.%s\n", blk.Name, inst.EntName)
	sb.WriteString("    port map (\n")
	for i, p := range inst.Ports {
		sig := m.Signal(p.Signal)
		sep := ","
		if i == len(inst.Ports)-1 && blk.Kind != hir.TernaryAdd {
			sep = ""
		}
		fmt.Fprintf(sb, "      %s => %s%s\n", p.PortName, sig.Name, sep)
	}
	if blk.Kind == hir.TernaryAdd {
		sb.WriteString("      clk => clk\n")
	}
	sb.WriteString("    );\n\n")
	return nil
}
