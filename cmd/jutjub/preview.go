package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	previewUC "github.com/khoahotran/jutjub/internal/application/usecase/preview"
	"github.com/khoahotran/jutjub/internal/domain/upload"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		maxBytes int64
		full     bool
	)
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Read a local file the way the upload form previews it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := upload.OpenFile(args[0], "")
			if err != nil {
				return &previewUC.ReadError{Name: args[0], Err: err}
			}
			p, err := previewUC.NewReadPreviewUseCase(maxBytes).Execute(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.print(p, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s, %d bytes\n", p.Name, p.MimeType, p.Size)
				if full {
					fmt.Fprintln(w, p.DataURL)
					return
				}
				url := p.DataURL
				if len(url) > 80 {
					url = url[:80] + "..."
				}
				fmt.Fprintln(w, url)
			})
		},
	}
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", previewUC.DefaultMaxBytes, "largest file to read")
	cmd.Flags().BoolVar(&full, "full", false, "print the whole data URL")
	return cmd
}
