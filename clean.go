package main

import (
	"fmt"

	"github.com/Aashish23092/loan-ocr-extraction/utils/ocrclean"

	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean FILE",
		Short: "Print normalized OCR text",
		Long: `Clean applies the OCR text normalization used before extraction and prints
the result. A FILE of "-" reads from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ocrclean.Clean(string(data)))
			return err
		},
	}
}
