package photo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUploadStoresBlobThenMetadata(t *testing.T) {
	var journal []string
	repo := &fakeRepo{journal: &journal}
	blobs := &fakeBlobStore{journal: &journal}
	service := NewService(repo, blobs, nil)

	fileHeader := buildFileHeader(t, "file", "lion.jpg", []byte("jpeg bytes"))

	stored, err := service.Upload(context.Background(), fileHeader, "Leo", "Safe Haven")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if stored.Filename != "lion.jpg" {
		t.Fatalf("unexpected filename: %s", stored.Filename)
	}
	if stored.ID == uuid.Nil {
		t.Fatalf("expected store-assigned id")
	}
	if !bytes.Equal(blobs.saved["lion.jpg"], []byte("jpeg bytes")) {
		t.Fatalf("blob content mismatch")
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one metadata record, got %d", len(repo.records))
	}
	if len(journal) != 2 || journal[0] != "blob.save" || journal[1] != "metadata.create" {
		t.Fatalf("unexpected write order: %v", journal)
	}
}

func TestUploadValidationFailsBeforeSideEffects(t *testing.T) {
	cases := []struct {
		name      string
		file      *multipart.FileHeader
		animal    string
		sanctuary string
		want      error
	}{
		{"missing file part", nil, "Leo", "Safe Haven", ErrNoFilePart},
		{"empty animal name", buildFileHeader(t, "file", "lion.jpg", []byte("x")), "", "Safe Haven", ErrMissingNames},
		{"empty sanctuary name", buildFileHeader(t, "file", "lion.jpg", []byte("x")), "Leo", "  ", ErrMissingNames},
		{"extension not allowed", buildFileHeader(t, "file", "animal.txt", []byte("x")), "Leo", "Safe Haven", ErrExtNotAllowed},
		{"no extension", buildFileHeader(t, "file", "lion", []byte("x")), "Leo", "Safe Haven", ErrExtNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			blobs := &fakeBlobStore{}
			service := NewService(repo, blobs, nil)

			_, err := service.Upload(context.Background(), tc.file, tc.animal, tc.sanctuary)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(repo.records) != 0 {
				t.Fatalf("expected no metadata record, got %d", len(repo.records))
			}
			if len(blobs.saved) != 0 {
				t.Fatalf("expected no blob written, got %d", len(blobs.saved))
			}
		})
	}
}

func TestUploadSanitizesFilename(t *testing.T) {
	repo := &fakeRepo{}
	blobs := &fakeBlobStore{}
	service := NewService(repo, blobs, nil)

	fileHeader := buildFileHeader(t, "file", "../shots/lion cub!.jpg", []byte("x"))

	stored, err := service.Upload(context.Background(), fileHeader, "Leo", "Safe Haven")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if stored.Filename != "lion_cub.jpg" {
		t.Fatalf("unexpected sanitized filename: %s", stored.Filename)
	}
	if _, ok := blobs.saved["lion_cub.jpg"]; !ok {
		t.Fatalf("blob stored under wrong name: %v", keys(blobs.saved))
	}
}

func TestUploadMetadataFailureLeavesOrphanedBlob(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("collection unavailable")}
	blobs := &fakeBlobStore{}
	service := NewService(repo, blobs, nil)

	fileHeader := buildFileHeader(t, "file", "lion.jpg", []byte("x"))

	_, err := service.Upload(context.Background(), fileHeader, "Leo", "Safe Haven")
	if err == nil {
		t.Fatalf("expected error from metadata write")
	}
	// No compensation: the blob stays behind.
	if _, ok := blobs.saved["lion.jpg"]; !ok {
		t.Fatalf("expected blob to remain after metadata failure")
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected no metadata record")
	}
}

func TestListEmptyTermReturnsEverything(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("lion.jpg", "leo", "safe haven")
	repo.seed("tiger.jpg", "rajah", "wild ridge")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 records, got %d", len(views))
	}
}

func TestListMatchesPrefixNotSubstring(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("a.jpg", "leo", "wild ridge")
	repo.seed("b.jpg", "leona", "wild ridge")
	repo.seed("c.jpg", "elon", "wild ridge")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.List(context.Background(), "LEO")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	got := viewFilenames(views)
	if len(got) != 2 || !got["a.jpg"] || !got["b.jpg"] {
		t.Fatalf("expected a.jpg and b.jpg, got %v", got)
	}
	if got["c.jpg"] {
		t.Fatalf("substring match leaked through: %v", got)
	}
}

func TestListUnionsFieldsAndDeduplicates(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("both.jpg", "leo", "leo house")
	repo.seed("animal.jpg", "leopard", "wild ridge")
	repo.seed("sanctuary.jpg", "rajah", "leo house")
	repo.seed("neither.jpg", "rajah", "wild ridge")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.List(context.Background(), "leo")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	got := viewFilenames(views)
	if len(views) != 3 {
		t.Fatalf("expected 3 de-duplicated records, got %d: %v", len(views), got)
	}
	for _, want := range []string{"both.jpg", "animal.jpg", "sanctuary.jpg"} {
		if !got[want] {
			t.Fatalf("missing %s in %v", want, got)
		}
	}
}

// Bounds are computed from the lowercased term but compared against stored
// values as-is, so differently cased records are missed. Kept on purpose.
func TestListPreservesCaseFoldGap(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("lion.jpg", "Leo", "Safe Haven")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.List(context.Background(), "leo")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no match for differently cased record, got %d", len(views))
	}
}

func TestSearchIntersectsBothTerms(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("match.jpg", "leo", "safe haven")
	repo.seed("wrong-sanctuary.jpg", "leo", "wild ridge")
	repo.seed("wrong-animal.jpg", "rajah", "safe haven")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.Search(context.Background(), "leo", "safe")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(views) != 1 || views[0].Filename != "match.jpg" {
		t.Fatalf("expected only match.jpg, got %v", viewFilenames(views))
	}
}

func TestSearchSingleTermQueriesOneField(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("a.jpg", "leo", "wild ridge")
	repo.seed("b.jpg", "rajah", "safe haven")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.Search(context.Background(), "", "safe")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(views) != 1 || views[0].Filename != "b.jpg" {
		t.Fatalf("expected only b.jpg, got %v", viewFilenames(views))
	}
}

func TestSearchWithoutTermsReturnsEverything(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("a.jpg", "leo", "wild ridge")
	repo.seed("b.jpg", "rajah", "safe haven")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.Search(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 records, got %d", len(views))
	}
}

func TestViewProjectionShape(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("lion.jpg", "leo", "safe haven")
	service := NewService(repo, &fakeBlobStore{}, nil)

	views, err := service.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	view := views[0]
	if view.URL != "/photos/lion.jpg" {
		t.Fatalf("unexpected url: %s", view.URL)
	}
	if view.UploadDate == nil {
		t.Fatalf("expected upload date, got null")
	}
	if _, err := time.Parse(time.RFC3339, *view.UploadDate); err != nil {
		t.Fatalf("upload date not RFC 3339: %v", err)
	}
}

func TestOpenMissingBlob(t *testing.T) {
	service := NewService(&fakeRepo{}, &fakeBlobStore{}, nil)

	_, err := service.Open(context.Background(), "does-not-exist.jpg")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

// --- helpers & fakes ---

func buildFileHeader(t *testing.T, fieldName, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("CreateFormFile error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(int64(len(content)) + 1024); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	return req.MultipartForm.File[fieldName][0]
}

func viewFilenames(views []View) map[string]bool {
	out := make(map[string]bool, len(views))
	for _, v := range views {
		out[v.Filename] = true
	}
	return out
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type fakeRepo struct {
	records   []Photo
	createErr error
	journal   *[]string
}

func (f *fakeRepo) seed(filename, animal, sanctuary string) {
	f.records = append(f.records, Photo{
		ID:            uuid.New(),
		Filename:      filename,
		AnimalName:    animal,
		SanctuaryName: sanctuary,
		UploadDate:    time.Now().UTC(),
	})
}

func (f *fakeRepo) Create(ctx context.Context, p Photo) (Photo, error) {
	if f.journal != nil {
		*f.journal = append(*f.journal, "metadata.create")
	}
	if f.createErr != nil {
		return Photo{}, f.createErr
	}
	p.ID = uuid.New()
	p.UploadDate = time.Now().UTC()
	f.records = append(f.records, p)
	return p, nil
}

func (f *fakeRepo) All(ctx context.Context) ([]Photo, error) {
	return append([]Photo(nil), f.records...), nil
}

func (f *fakeRepo) RangeByField(ctx context.Context, field, lower, upper string) ([]Photo, error) {
	var out []Photo
	for _, p := range f.records {
		value := p.AnimalName
		if field == FieldSanctuaryName {
			value = p.SanctuaryName
		}
		if value >= lower && value <= upper {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeBlobStore struct {
	saved   map[string][]byte
	saveErr error
	journal *[]string
}

func (f *fakeBlobStore) Save(ctx context.Context, name string, r io.Reader, size int64) error {
	if f.journal != nil {
		*f.journal = append(*f.journal, "blob.save")
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[name] = data
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := f.saved[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
