package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/domain/service"
)

// zipContentType marks a multipart part as an archive to expand.
const zipContentType = "application/zip"

// imageContentTypes maps image extensions to the content type stored
// alongside the blob. Zip entries outside this set are skipped.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Upload is one file received from a client. A part whose declared
// content type is application/zip is expanded; any other part is stored
// as a single image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredFile describes one image persisted by an ingestion request.
type StoredFile struct {
	Filename   string
	StorageKey string
	RecordID   string
}

// Ingest accepts uploaded images, stores each blob, and creates a pending
// record per image. Zip archives are expanded and each contained image is
// treated as its own upload.
type Ingest struct {
	records record.Store
	store   service.ObjectStore
	logger  *slog.Logger
}

// NewIngest creates a new ingestion service.
func NewIngest(records record.Store, store service.ObjectStore, logger *slog.Logger) *Ingest {
	return &Ingest{
		records: records,
		store:   store,
		logger:  logger,
	}
}

// Accept processes a batch of uploads in order. The first failure aborts
// the batch and the returned error names the file that failed; files
// already persisted stay persisted.
func (s *Ingest) Accept(ctx context.Context, institutionID int, submittedBy string, uploads []Upload) ([]StoredFile, error) {
	var stored []StoredFile
	for _, u := range uploads {
		files, err := s.acceptOne(ctx, institutionID, submittedBy, u)
		if err != nil {
			return stored, fmt.Errorf("failed to upload %s: %w", u.Filename, err)
		}
		stored = append(stored, files...)
	}
	return stored, nil
}

func (s *Ingest) acceptOne(ctx context.Context, institutionID int, submittedBy string, u Upload) ([]StoredFile, error) {
	if u.ContentType == zipContentType {
		return s.acceptZip(ctx, institutionID, submittedBy, u)
	}

	f, err := s.storeImage(ctx, institutionID, submittedBy, u.Filename, u.ContentType, u.Data)
	if err != nil {
		return nil, err
	}
	return []StoredFile{f}, nil
}

// acceptZip expands an archive and stores every image it contains.
// Non-image entries (and directory entries) are skipped silently.
func (s *Ingest) acceptZip(ctx context.Context, institutionID int, submittedBy string, u Upload) ([]StoredFile, error) {
	reader, err := zip.NewReader(bytes.NewReader(u.Data), int64(len(u.Data)))
	if err != nil {
		return nil, fmt.Errorf("read zip archive: %w", err)
	}

	var stored []StoredFile
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Base(entry.Name)
		if _, ok := imageContentTypes[strings.ToLower(path.Ext(name))]; !ok {
			continue
		}

		data, err := readZipEntry(entry)
		if err != nil {
			return stored, fmt.Errorf("read %s from archive: %w", entry.Name, err)
		}
		f, err := s.storeImage(ctx, institutionID, submittedBy, name, "", data)
		if err != nil {
			return stored, fmt.Errorf("store %s from archive: %w", entry.Name, err)
		}
		stored = append(stored, f)
	}

	s.logger.Debug("zip archive expanded",
		slog.String("filename", u.Filename),
		slog.Int("images", len(stored)),
	)
	return stored, nil
}

// storeImage writes the blob under the original filename and creates its
// pending record. Identically named uploads share a key; last write wins.
func (s *Ingest) storeImage(ctx context.Context, institutionID int, submittedBy, filename, contentType string, data []byte) (StoredFile, error) {
	key := path.Base(filename)
	if contentType == "" || contentType == "application/octet-stream" {
		if ct, ok := imageContentTypes[strings.ToLower(path.Ext(key))]; ok {
			contentType = ct
		} else {
			contentType = "application/octet-stream"
		}
	}

	rec := record.New(institutionID, submittedBy, key)

	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return StoredFile{}, err
	}

	saved, err := s.records.Save(ctx, rec)
	if err != nil {
		return StoredFile{}, err
	}

	s.logger.Info("image ingested",
		slog.String("record_id", saved.ID()),
		slog.String("storage_key", key),
		slog.Int("institution_id", institutionID),
	)

	return StoredFile{
		Filename:   filename,
		StorageKey: key,
		RecordID:   saved.ID(),
	}, nil
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
