// Command p2asm is the Possum2 two-pass macro assembler.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/possum2kit/p2/internal/assembler"
	"github.com/possum2kit/p2/internal/ppcfg"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is split out from main so it can be exercised without an os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	var cfg ppcfg.Common
	var outputPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:           "p2asm <input>",
		Short:         "Assemble a Possum2 65CE02 source file into a raw binary image",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return assembleFile(posArgs[0], outputPath, cfg.SymbolFile, verbose, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	cfg.RegisterPersistent(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: standard output)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "raise the assembler logger's level to debug")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func assembleFile(inputPath, outputPath, symPath string, verbose bool, stdout, stderr io.Writer) error {
	logger := ppcfg.NewAssemblerLogger(stderr, verbose)

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	openInf := func(path string) (io.ReadSeeker, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(inputPath), path)
		}
		return os.Open(path)
	}

	d := assembler.New(openInf, logger)
	img, err := d.Assemble(in)
	if err != nil {
		return err
	}

	out := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := writeImage(img, out); err != nil {
		return err
	}

	if symPath != "" {
		if err := writeSymbolFile(d.Symbols(), symPath); err != nil {
			return err
		}
	}
	return nil
}

// writeImage writes the minimal contiguous span from the first to the
// last assembled byte, zero-filling any never-written gap in between —
// the raw binary memory image an emulator's ROM loader expects, not a
// sparse 64K dump.
func writeImage(img *assembler.Image, w io.Writer) error {
	ranges := img.Ranges()
	if len(ranges) == 0 {
		return nil
	}
	start := int(ranges[0].Start)
	last := ranges[len(ranges)-1]
	end := int(last.Start) + len(last.Data)

	buf := make([]byte, end-start)
	for _, r := range ranges {
		copy(buf[int(r.Start)-start:], r.Data)
	}
	_, err := w.Write(buf)
	return err
}

// writeSymbolFile writes one `NAME:HHHH` line per defined symbol, name
// and hex value both uppercase, per the spec's symbol-file format.
func writeSymbolFile(symbols *assembler.SymbolTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var sb strings.Builder
	for name, value := range symbols.All() {
		fmt.Fprintf(&sb, "%s:%04X\n", name, uint16(value))
	}
	_, err = f.WriteString(sb.String())
	return err
}
