package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abxsurvey/internal/cipher"
)

func newCipherCommand() *cobra.Command {
	var shift int

	cmd := &cobra.Command{
		Use:         "cipher",
		Short:       "Encode or decode obfuscated audio file names",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	run := func(apply func(string, int) (string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range args {
				converted, err := apply(name, shift)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintln(out, converted)
			}
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <name>...",
		Short: "Obfuscate file names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(cipher.EncodeShift),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <name>...",
		Short: "Recover original file names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(cipher.DecodeShift),
	})
	cmd.PersistentFlags().IntVar(&shift, "shift", cipher.Shift, "Letters to rotate by")
	return cmd
}
