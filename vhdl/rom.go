// Package vhdl writes a picture as a synthesizable VHDL lookup-table ROM.
//
// The generated entity registers the row and col inputs on the rising clock
// edge, concatenates them into an address (row high, col low) and decodes it
// with a single case statement: one branch per pixel in row-major order and a
// final others branch returning black.
package vhdl

import (
	"bufio"
	"fmt"
	"io"

	"romgen/addr"
	"romgen/rgb444"
)

// Source supplies the quantised pixel colours of a ROM.
type Source interface {
	Dims() (height, width int)
	ColorAt(y, x int) rgb444.Color
}

// ROM describes one entity to generate.
type ROM struct {
	Entity string
	Plan   addr.Plan
	Source Source
}

const preamble = `library IEEE;
use IEEE.STD_LOGIC_1164.ALL;
use IEEE.NUMERIC_STD.ALL;

`

// Encode writes r to w. Entries are emitted row by row, so the output is
// deterministic for a given picture.
func Encode(w io.Writer, r *ROM) error {
	if !ValidIdentifier(r.Entity) {
		return fmt.Errorf("invalid entity name %q", r.Entity)
	}
	if h, wd := r.Source.Dims(); h != r.Plan.Height || wd != r.Plan.Width {
		return fmt.Errorf("address plan is for %dx%d but image is %dx%d", r.Plan.Width, r.Plan.Height, wd, h)
	}

	bw := bufio.NewWriterSize(w, 64<<10)
	p := r.Plan

	io.WriteString(bw, preamble)

	fmt.Fprintf(bw, "entity %s is\n", r.Entity)
	io.WriteString(bw, "  Port (\n")
	io.WriteString(bw, "    clk        : in  std_logic;\n")
	fmt.Fprintf(bw, "    row        : in  std_logic_vector(%d downto 0);\n", p.RowBits-1)
	fmt.Fprintf(bw, "    col        : in  std_logic_vector(%d downto 0);\n", p.ColBits-1)
	fmt.Fprintf(bw, "    color_data : out std_logic_vector(%d downto 0)\n", rgb444.Width-1)
	io.WriteString(bw, "  );\n")
	io.WriteString(bw, "end entity;\n\n")

	fmt.Fprintf(bw, "architecture Behavioral of %s is\n", r.Entity)
	fmt.Fprintf(bw, "  signal addr : std_logic_vector(%d downto 0);\n", p.AddrBits()-1)
	fmt.Fprintf(bw, "  signal row_reg : std_logic_vector(%d downto 0);\n", p.RowBits-1)
	fmt.Fprintf(bw, "  signal col_reg : std_logic_vector(%d downto 0);\n", p.ColBits-1)
	io.WriteString(bw, "begin\n\n")

	io.WriteString(bw, "  process(clk)\n")
	io.WriteString(bw, "  begin\n")
	io.WriteString(bw, "    if rising_edge(clk) then\n")
	io.WriteString(bw, "      row_reg <= row;\n")
	io.WriteString(bw, "      col_reg <= col;\n")
	io.WriteString(bw, "    end if;\n")
	io.WriteString(bw, "  end process;\n\n")

	io.WriteString(bw, "  addr <= row_reg & col_reg;\n\n")

	io.WriteString(bw, "  process(addr)\n")
	io.WriteString(bw, "  begin\n")
	io.WriteString(bw, "    case addr is\n")

	for y := 0; y < p.Height; y++ {
		row := addr.Binary(uint64(y), p.RowBits)
		for x := 0; x < p.Width; x++ {
			fmt.Fprintf(bw, "      when \"%s%s\" => color_data <= \"%s\";\n",
				row, addr.Binary(uint64(x), p.ColBits), r.Source.ColorAt(y, x).Bits())
		}
	}

	io.WriteString(bw, "      when others => color_data <= (others => '0');\n")
	io.WriteString(bw, "    end case;\n")
	io.WriteString(bw, "  end process;\n")
	io.WriteString(bw, "end Behavioral;\n")

	// bufio keeps the first write error and turns later writes into no-ops.
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not write entity %s: %w", r.Entity, err)
	}
	return nil
}

const (
	entryLineSize  = len(`      when "" => color_data <= "";` + "\n") + rgb444.Width
	othersLineSize = len(`      when others => color_data <= (others => '0');` + "\n")
)

// TableSize returns the number of bytes taken by the case branches of a ROM
// planned by p.
func TableSize(p addr.Plan) int64 {
	return int64(p.Entries())*int64(entryLineSize+p.AddrBits()) + int64(othersLineSize)
}
