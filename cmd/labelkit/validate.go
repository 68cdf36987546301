package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/labelkit/codec"
)

func newValidateCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate SCENE.json...",
		Short: "Check that scene files decode and satisfy every object invariant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err == nil {
					var n int
					if n, err = objectCount(data); err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d objects)\n", path, n)
						continue
					}
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenes invalid", failed, len(args))
			}
			return nil
		},
	}
}

var errEmpty = errors.New("empty file")

func objectCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, errEmpty
	}
	s, err := codec.Unmarshal(data)
	if err != nil {
		return 0, err
	}
	return len(s.Objects), nil
}
