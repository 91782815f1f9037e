// Package ingest loads safety documents into the retrieval index. Sources
// are local files, directories, or FTP mirrors of regulation archives.
package ingest

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

// indexableExtensions are the plain-text document types submitted to the
// index. Binary formats are extracted upstream before ingest.
var indexableExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Ingestor submits source documents to the retrieval service.
type Ingestor struct {
	index   retrieval.Client
	fetcher *FTPFetcher
}

// New creates an Ingestor backed by the given retrieval client.
func New(index retrieval.Client, fetcher *FTPFetcher) *Ingestor {
	return &Ingestor{index: index, fetcher: fetcher}
}

// IngestReader indexes the contents of r under the given source ID.
func (in *Ingestor) IngestReader(ctx context.Context, sourceID string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return eris.Wrapf(err, "ingest: read %s", sourceID)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return eris.Errorf("ingest: %s is empty", sourceID)
	}

	err = in.index.IndexDocument(ctx, retrieval.IndexRequest{
		SourceID: sourceID,
		Content:  string(content),
	})
	if err != nil {
		return eris.Wrapf(err, "ingest: index %s", sourceID)
	}

	zap.L().Info("ingest: indexed document",
		zap.String("source_id", sourceID),
		zap.Int("bytes", len(content)))
	return nil
}

// IngestFile indexes a local file. The source ID is the file's base name.
func (in *Ingestor) IngestFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	return in.IngestReader(ctx, filepath.Base(path), f)
}

// IngestDir walks a directory and indexes every indexable file. Returns
// the number of documents indexed.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !indexableExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := in.IngestFile(ctx, path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, eris.Wrapf(err, "ingest: walk %s", dir)
	}
	return count, nil
}

// IngestFTP downloads a document from an FTP URL and indexes it. The
// source ID is the URL's base path.
func (in *Ingestor) IngestFTP(ctx context.Context, ftpURL string) error {
	if in.fetcher == nil {
		return eris.New("ingest: no FTP fetcher configured")
	}

	rc, err := in.fetcher.Download(ctx, ftpURL)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, path, err := parseFTPURL(ftpURL)
	if err != nil {
		return err
	}
	return in.IngestReader(ctx, filepath.Base(path), rc)
}
