package cli

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage training corpora",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var dataFolder string
	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a corpus file or .tar.gz archive into the data folder",
		Args:  cobra.ExactArgs(1),
		Example: `  postag data download https://example.org/ftb.tar.gz
  postag data download https://example.org/train.conllu --data-folder corpora`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dataDownload(cmd.Context(), args[0], dataFolder)
		},
	}
	downloadCmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Destination folder for training data")

	dataCmd.AddCommand(downloadCmd)
	return dataCmd
}

func dataDownload(ctx context.Context, url, dataFolder string) error {
	if dataFolder == "" {
		dataFolder = "."
	}
	slog.Info("Downloading training data", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download data: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download data: HTTP %d", resp.StatusCode)
	}

	if err := os.MkdirAll(dataFolder, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dataFolder, err)
	}

	name := path.Base(strings.SplitN(url, "?", 2)[0])
	if strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz") {
		count, err := extractTarGz(resp.Body, dataFolder)
		if err != nil {
			return err
		}
		slog.Info("Training data extracted", "files", count, "folder", dataFolder)
		return nil
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(name, ".gz") {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gr.Close() }()
		body = gr
		name = strings.TrimSuffix(name, ".gz")
	}
	if name == "" || name == "." || name == "/" {
		name = "corpus.txt"
	}

	dest := filepath.Join(dataFolder, name)
	written, err := writeFile(dest, body)
	if err != nil {
		return err
	}
	slog.Info("Training data downloaded", "path", dest, "size", fmt.Sprintf("%.1fMB", float64(written)/1024/1024))
	return nil
}

// extractTarGz unpacks a gzipped tarball into dataFolder. A leading "data/"
// directory in the archive is mapped onto dataFolder. Entries escaping the
// folder are rejected.
func extractTarGz(r io.Reader, dataFolder string) (int, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	root := filepath.Clean(dataFolder)
	tr := tar.NewReader(gr)
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read tar: %w", err)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		name = strings.TrimPrefix(name, "data/")
		target := filepath.Join(root, filepath.FromSlash(name))
		if !within(root, target) {
			return count, fmt.Errorf("read tar: entry %q escapes %s", hdr.Name, root)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if _, err := writeFile(target, tr); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// within reports whether target is root or lies below it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func writeFile(target string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create file %s: %w", target, err)
	}
	written, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return written, fmt.Errorf("write file %s: %w", target, err)
	}
	return written, f.Close()
}
