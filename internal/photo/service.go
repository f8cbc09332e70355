package photo

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Queryable metadata fields. Repositories index exactly these two.
const (
	FieldAnimalName    = "animal_name"
	FieldSanctuaryName = "sanctuary_name"
)

// rangeSentinel closes a prefix range: every string that starts with the term
// sorts at or below term+rangeSentinel, so [term, term+rangeSentinel] is a
// "starts with" match over a lexicographically ordered index.
const rangeSentinel = "\uf8ff"

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// MetadataStore is the document collection holding one record per upload.
// Create assigns the record id and upload timestamp.
type MetadataStore interface {
	Create(ctx context.Context, p Photo) (Photo, error)
	All(ctx context.Context) ([]Photo, error)
	RangeByField(ctx context.Context, field, lower, upper string) ([]Photo, error)
}

// BlobStore persists raw file bytes addressed by name. Saving an existing name
// overwrites it; last write wins.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Service handles photo uploads, retrieval and metadata search.
type Service struct {
	repo  MetadataStore
	blobs BlobStore
	log   *zap.Logger
}

// NewService constructs a photo service.
func NewService(repo MetadataStore, blobs BlobStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, blobs: blobs, log: log}
}

// Upload validates the request, stores the blob and then inserts the metadata
// record. The two writes are not transactional: a metadata failure after a
// successful blob write leaves the blob behind and still returns the error.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader, animalName, sanctuaryName string) (Photo, error) {
	if fileHeader == nil {
		return Photo{}, ErrNoFilePart
	}
	if strings.TrimSpace(animalName) == "" || strings.TrimSpace(sanctuaryName) == "" {
		return Photo{}, ErrMissingNames
	}
	if fileHeader.Filename == "" {
		return Photo{}, ErrNoFilename
	}
	if !allowedExtension(fileHeader.Filename) {
		return Photo{}, ErrExtNotAllowed
	}

	name := sanitizeFilename(fileHeader.Filename)
	if name == "" {
		return Photo{}, ErrNoFilename
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Photo{}, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	if err := s.blobs.Save(ctx, name, file, fileHeader.Size); err != nil {
		return Photo{}, fmt.Errorf("store blob: %w", err)
	}

	stored, err := s.repo.Create(ctx, Photo{
		Filename:      name,
		AnimalName:    animalName,
		SanctuaryName: sanctuaryName,
	})
	if err != nil {
		// The blob is already on disk with no metadata pointing at it.
		s.log.Error("metadata write failed after blob write, blob orphaned",
			zap.String("filename", name), zap.Error(err))
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}

	return stored, nil
}

// Open returns a reader over the stored blob for the given filename.
func (s *Service) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, filename)
}

// List returns every record, or those whose animal or sanctuary name starts
// with the search term (OR across the two fields, de-duplicated by id).
//
// Matching is prefix-based, not substring: the term is lowercased and turned
// into the range [term, term+rangeSentinel], compared against stored values
// as-is. A record stored with different casing than the lowered term will not
// match; kept for compatibility with the existing API behavior.
func (s *Service) List(ctx context.Context, search string) ([]View, error) {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		photos, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}
		return project(photos), nil
	}

	upper := term + rangeSentinel

	byAnimal, err := s.repo.RangeByField(ctx, FieldAnimalName, term, upper)
	if err != nil {
		return nil, err
	}
	bySanctuary, err := s.repo.RangeByField(ctx, FieldSanctuaryName, term, upper)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(byAnimal))
	merged := make([]Photo, 0, len(byAnimal)+len(bySanctuary))
	for _, p := range byAnimal {
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range bySanctuary {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		merged = append(merged, p)
	}

	return project(merged), nil
}

// Search filters by independent animal and sanctuary prefix terms. With both
// terms present the two range results are intersected by record id (AND); with
// one term it is a single range query; with none it is a full scan.
func (s *Service) Search(ctx context.Context, animal, sanctuary string) ([]View, error) {
	animal = strings.ToLower(strings.TrimSpace(animal))
	sanctuary = strings.ToLower(strings.TrimSpace(sanctuary))

	switch {
	case animal == "" && sanctuary == "":
		photos, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}
		return project(photos), nil

	case sanctuary == "":
		photos, err := s.repo.RangeByField(ctx, FieldAnimalName, animal, animal+rangeSentinel)
		if err != nil {
			return nil, err
		}
		return project(photos), nil

	case animal == "":
		photos, err := s.repo.RangeByField(ctx, FieldSanctuaryName, sanctuary, sanctuary+rangeSentinel)
		if err != nil {
			return nil, err
		}
		return project(photos), nil
	}

	byAnimal, err := s.repo.RangeByField(ctx, FieldAnimalName, animal, animal+rangeSentinel)
	if err != nil {
		return nil, err
	}
	bySanctuary, err := s.repo.RangeByField(ctx, FieldSanctuaryName, sanctuary, sanctuary+rangeSentinel)
	if err != nil {
		return nil, err
	}

	inSanctuary := make(map[uuid.UUID]struct{}, len(bySanctuary))
	for _, p := range bySanctuary {
		inSanctuary[p.ID] = struct{}{}
	}

	common := make([]Photo, 0, len(byAnimal))
	for _, p := range byAnimal {
		if _, ok := inSanctuary[p.ID]; ok {
			common = append(common, p)
		}
	}

	return project(common), nil
}

func project(photos []Photo) []View {
	views := make([]View, 0, len(photos))
	for _, p := range photos {
		var uploaded *string
		if !p.UploadDate.IsZero() {
			formatted := p.UploadDate.Format(time.RFC3339)
			uploaded = &formatted
		}
		views = append(views, View{
			Filename:      p.Filename,
			AnimalName:    p.AnimalName,
			SanctuaryName: p.SanctuaryName,
			UploadDate:    uploaded,
			URL:           "/photos/" + p.Filename,
		})
	}
	return views
}

func allowedExtension(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// sanitizeFilename strips directory components and anything outside
// [A-Za-z0-9_.-]; spaces become underscores. Collisions between sanitized
// names are allowed, the blob store overwrites.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
