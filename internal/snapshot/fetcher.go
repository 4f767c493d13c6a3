// Package snapshot retrieves the raw dataset snapshot and turns it into a
// verified local SQLite file ready for extraction.
package snapshot

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/fsutil"
	"nba_decade/backend/internal/kaggle"
)

// ErrCorruptArchive indicates the downloaded archive failed structural
// verification. Corruption is deterministic, so it is never retried.
var ErrCorruptArchive = errors.New("corrupt snapshot archive")

// Fetcher downloads, verifies and extracts the dataset snapshot into a
// scratch directory.
type Fetcher struct {
	client      *kaggle.Client
	dataset     string
	file        string
	scratchDir  string
	minFileSize int64
}

// NewFetcher creates a snapshot fetcher that works inside scratchDir.
func NewFetcher(client *kaggle.Client, dataset, file, scratchDir string, minFileSize int64) *Fetcher {
	return &Fetcher{
		client:      client,
		dataset:     dataset,
		file:        file,
		scratchDir:  scratchDir,
		minFileSize: minFileSize,
	}
}

// ScratchDir returns the scratch directory the fetcher works in.
func (f *Fetcher) ScratchDir() string {
	return f.scratchDir
}

// Cleanup empties the scratch directory. It is idempotent and safe to call
// when nothing was fetched; callers defer it around the whole recompute so it
// runs on every exit path.
func (f *Fetcher) Cleanup() {
	fsutil.Cleanup(f.scratchDir)
}

// Fetch downloads the snapshot archive, verifies it, extracts the target
// file and verifies that too. It returns the path of the extracted snapshot,
// which stays valid until Cleanup is called.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if err := os.MkdirAll(f.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}

	zipPath, err := f.client.DownloadDataset(ctx, f.dataset, f.file, f.scratchDir)
	if err != nil {
		return "", err
	}

	if _, err := fsutil.VerifyFile(zipPath, f.minFileSize); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	snapshotPath := filepath.Join(f.scratchDir, f.file)
	if err := f.extract(zipPath, snapshotPath); err != nil {
		return "", err
	}

	size, err := fsutil.VerifyFile(snapshotPath, f.minFileSize)
	if err != nil {
		return "", fmt.Errorf("%w: extracted snapshot: %v", ErrCorruptArchive, err)
	}

	log.Info().
		Str("path", snapshotPath).
		Int64("bytes", size).
		Msg("Snapshot fetched and verified")

	return snapshotPath, nil
}

// extract pulls the target file out of the archive, validating every member's
// checksum along the way.
func (f *Fetcher) extract(zipPath, dest string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer reader.Close()

	var target *zip.File
	for _, member := range reader.File {
		// Reading to EOF forces the CRC32 check for each member.
		if err := checkMember(member); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, member.Name, err)
		}
		if member.Name == f.file {
			target = member
		}
	}

	if target == nil {
		return fmt.Errorf("%w: archive does not contain %s", ErrCorruptArchive, f.file)
	}

	src, err := target.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: extracting %s: %v", ErrCorruptArchive, target.Name, err)
	}

	return nil
}

func checkMember(member *zip.File) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(io.Discard, rc)
	return err
}
