package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/josinaldojr/assistant-rag/internal/client"
	"github.com/josinaldojr/assistant-rag/internal/ingest"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-doc",
		Short: "Send local documents to the assistant backend",
		Long: `Extract text from local documents and send it to /ingest-pdf.

PDFs are sent one chunk per page. Markdown, text and HTML files are split
into chunks of at most 2000 characters.

Examples:
  import-doc --file ./policy.pdf
  import-doc --file ./handbook.pdf --name "Employee handbook"
  import-doc --dir ./docs --backend http://localhost:8000`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			dir, _ := cmd.Flags().GetString("dir")
			name, _ := cmd.Flags().GetString("name")
			backend, _ := cmd.Flags().GetString("backend")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			if (file == "") == (dir == "") {
				return fmt.Errorf("exactly one of --file or --dir is required")
			}
			if dir != "" && name != "" {
				return fmt.Errorf("--name only applies to --file")
			}

			paths := []string{file}
			if dir != "" {
				var err error
				if paths, err = collectFiles(dir); err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no supported documents under %s", dir)
				}
			}

			c := client.New(backend, timeout)
			for _, p := range paths {
				if err := importFile(cmd.Context(), cmd, c, p, documentName(p, name)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("file", "", "document to import (.pdf, .md, .txt, .html)")
	cmd.Flags().String("dir", "", "directory whose supported documents are imported")
	cmd.Flags().String("name", "", "document name sent with --file (defaults to the file name)")
	cmd.Flags().String("backend", envOr("BACKEND_URL", "http://localhost:8000"), "backend base URL")
	cmd.Flags().Duration("timeout", 150*time.Second, "request timeout")
	return cmd
}

func importFile(ctx context.Context, cmd *cobra.Command, c *client.Client, path, name string) error {
	chunks, err := ingest.ExtractChunks(path)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		cmd.PrintErrf("skipping %s: no text found\n", path)
		return nil
	}

	resp, err := c.Ingest(ctx, name, chunks)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	cmd.Printf("%s: %s\n", name, resp.Message)
	return nil
}

// collectFiles walks dir and returns the supported documents in lexical order.
func collectFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && ingest.IsSupported(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return out, nil
}

func documentName(path, override string) string {
	if override != "" {
		return override
	}
	return filepath.Base(path)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
