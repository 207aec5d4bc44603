package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/ngshiheng/passportindexdb/services"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store as an XLSX workbook (to R2 when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			buf, err := services.ExportWorkbook(ctx, a.db)
			if err != nil {
				return withCode(exitDB, err)
			}

			if output != "" {
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), output)
				return nil
			}

			size := int64(buf.Len())
			storage := services.NewStorage(ctx, a.cfg, a.log)
			result, err := storage.UploadReader(ctx, bytes.NewReader(buf.Bytes()), services.ExportKey(time.Now()), services.ExportContentType, size)
			if err != nil {
				return err
			}
			a.log.Info("exported workbook", "key", result.Key, "size", result.FileSize)
			location := result.URL
			if location == "" {
				location = result.Key
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the workbook to this file instead of export storage")
	return cmd
}
