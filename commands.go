package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/diff"
	"github.com/anas-shakeel/bmp-steg/internal/stego"
)

var hideCmd = &cobra.Command{
	Use:   "hide <payload.bmp> <carrier.bmp>",
	Short: "Hide a bitmap in a copy of the carrier bitmap",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHide(args[0], args[1])
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <merged.bmp>",
	Short: "Extract a hidden bitmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image.bmp>",
	Short: "Print the headers and row layout of a bitmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := bmp.ReadImage(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Filename: \t%v\n", img.Filename)
		img.Layout.Describe(out)

		// Does it look like something we merged?
		d, err := stego.DecodeTag(img.Pix)
		var terr *stego.InvalidTagError
		switch {
		case err == nil:
			fmt.Fprintf(out, "Tag: \t\t%s per byte\n", d)
		case errors.As(err, &terr):
			fmt.Fprintf(out, "Tag: \t\tnone (%d)\n", terr.Tag)
		default:
			return err
		}
		return nil
	},
}

var capacityCmd = &cobra.Command{
	Use:   "capacity <carrier.bmp>",
	Short: "Show how many bytes a carrier can hide at each density",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		l, err := bmp.ReadLayout(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		area := l.PixelArea()
		wtr := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Density\tPixel Bytes\tCapacity (Bytes)")
		fmt.Fprintln(wtr, "-------\t-----------\t----------------")
		for _, d := range []stego.Density{stego.Density1, stego.Density2, stego.Density4} {
			fmt.Fprintf(wtr, "%s\t%d\t%d\n", d, area, stego.Capacity(area, d))
		}
		return wtr.Flush()
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <carrier.bmp> <merged.bmp> <out.bmp>",
	Short: "Write an image of the absolute difference between two bitmaps",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bmp.ReadImage(args[0])
		if err != nil {
			return err
		}
		b, err := bmp.ReadImage(args[1])
		if err != nil {
			return err
		}

		img, err := diff.Generate(a, b)
		if err != nil {
			return err
		}
		changed, err := diff.CountChanged(a, b)
		if err != nil {
			return err
		}
		if err := img.Save(args[2]); err != nil {
			return err
		}
		logger.Info().Str("output", args[2]).Int("changed_bytes", changed).Msg("Diff image written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hideCmd, extractCmd, inspectCmd, capacityCmd, diffCmd)
}
