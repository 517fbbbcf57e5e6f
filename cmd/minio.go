package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"AuxFM/config"
	"AuxFM/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO media bucket",
	Long:  `List the blobs stored in the configured MinIO bucket, with sizes and timestamps.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		objects, err := store.ListObjects(ctx, minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}

		var totalSize int64
		for _, obj := range objects {
			totalSize += obj.Size
			fmt.Printf("%-60s %10.2f MB  %s\n", obj.Key,
				float64(obj.Size)/1024/1024,
				obj.LastModified.Format(time.RFC3339))
		}
		fmt.Printf("\n%d objects, %.2f MB total\n", len(objects), float64(totalSize)/1024/1024)
	},
}

func init() {
	minioCmd.Flags().StringVar(&minioPrefix, "prefix", "", "only list objects under this key prefix")
	rootCmd.AddCommand(minioCmd)
}
