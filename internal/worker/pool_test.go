package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

// fakeObjects is a map-backed stand-in for the object store: enough to
// exercise download-original/upload-variant without a real S3 backend.
type fakeObjects struct {
	data map[string][]byte
}

func (f *fakeObjects) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.data[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (f *fakeObjects) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	f.data[key] = data
	return nil
}

// fakeJobStore lets a test claim exactly the jobs it seeds, in order, and
// records terminal state transitions for assertions.
type fakeJobStore struct {
	pending   []*models.Job
	completed []string
	failed    map[string]string
}

func (f *fakeJobStore) EnqueueJob(ctx context.Context, job *models.Job) (string, error) {
	f.pending = append(f.pending, job)
	return job.ID, nil
}

func (f *fakeJobStore) ClaimNextJob(ctx context.Context) (*models.Job, error) {
	if len(f.pending) == 0 {
		return nil, models.ErrNoJobAvailable
	}
	job := f.pending[0]
	f.pending = f.pending[1:]
	return job, nil
}

func (f *fakeJobStore) CompleteJob(ctx context.Context, id string) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeJobStore) FailJob(ctx context.Context, id string, jobErr error) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = jobErr.Error()
	return nil
}

func (f *fakeJobStore) RecoverStuckJobs(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeJobStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return nil, models.ErrJobNotFound
}
func (f *fakeJobStore) ListJobsByProject(ctx context.Context, projectID, status string, page, limit int) ([]*models.Job, int64, error) {
	return nil, 0, nil
}
func (f *fakeJobStore) ListJobsByProjects(ctx context.Context, projectIDs []string, status string) ([]*models.Job, error) {
	return nil, nil
}

type fakeFileStore struct {
	files map[string]*models.File
}

func (f *fakeFileStore) CreateFile(ctx context.Context, file *models.File) (string, error) {
	f.files[file.ID] = file
	return file.ID, nil
}
func (f *fakeFileStore) GetFile(ctx context.Context, id string) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, models.ErrFileNotFound
	}
	return file, nil
}
func (f *fakeFileStore) ListFilesByProject(ctx context.Context, projectID string, page, limit int) ([]*models.File, int64, error) {
	return nil, 0, nil
}
func (f *fakeFileStore) ListAllFiles(ctx context.Context, page, limit int) ([]*models.File, int64, error) {
	return nil, 0, nil
}
func (f *fakeFileStore) ListImageFilesByProject(ctx context.Context, projectID string) ([]*models.File, error) {
	var out []*models.File
	for _, file := range f.files {
		if file.ProjectID == projectID {
			out = append(out, file)
		}
	}
	return out, nil
}
func (f *fakeFileStore) UpdateFile(ctx context.Context, file *models.File) error {
	f.files[file.ID] = file
	return nil
}
func (f *fakeFileStore) DeleteFile(ctx context.Context, id string) error {
	delete(f.files, id)
	return nil
}

type fakeProjectStore struct {
	project *models.Project
}

func (f *fakeProjectStore) CreateProject(ctx context.Context, p *models.Project) (string, error) {
	return p.ID, nil
}
func (f *fakeProjectStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return f.project, nil
}
func (f *fakeProjectStore) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return nil, nil
}
func (f *fakeProjectStore) ListAllProjects(ctx context.Context) ([]*models.Project, error) {
	return nil, nil
}
func (f *fakeProjectStore) UpdateProject(ctx context.Context, p *models.Project) error { return nil }
func (f *fakeProjectStore) SoftDeleteProject(ctx context.Context, id string) error     { return nil }
func (f *fakeProjectStore) HardDeleteProject(ctx context.Context, id string) error     { return nil }
func (f *fakeProjectStore) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error) {
	return nil, nil
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 1, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestPool(t *testing.T) (*Pool, *fakeJobStore, *fakeFileStore) {
	t.Helper()
	original := samplePNG(t)

	jobs := &fakeJobStore{}
	files := &fakeFileStore{files: map[string]*models.File{
		"file-1": {ID: "file-1", ProjectID: "proj-1", S3Key: "proj-1/images/original/file-1.png", Status: models.FileStatusProcessing, Variants: json.RawMessage(`{}`)},
	}}
	projects := &fakeProjectStore{project: &models.Project{ID: "proj-1", Name: "My Project"}}

	objects := &fakeObjects{data: map[string][]byte{
		"proj-1/images/original/file-1.png": original,
	}}

	pool := New(jobs, files, projects, objects, Config{Concurrency: 1, PollInterval: time.Millisecond})
	return pool, jobs, files
}

func TestHandleProcessImageRendersVariant(t *testing.T) {
	pool, jobs, files := newTestPool(t)

	width := 20
	payload, err := json.Marshal(processImagePayload{
		Variants: map[string]models.VariantConfig{
			"thumb": {Width: &width},
		},
	})
	require.NoError(t, err)

	job := &models.Job{ID: "job-1", FileID: "file-1", Status: models.JobStatusPending, Payload: payload}
	require.NoError(t, pool.handle(context.Background(), job))

	file := files.files["file-1"]
	require.Equal(t, models.FileStatusReady, file.Status)
	require.Contains(t, file.VariantMap(), "thumb")

	_ = jobs // handle is called directly here, so the job store is not used
}

// A project-wide resync fans out into one sync_file_variants job per image
// file in the project; the project-level job itself never touches a file.
func TestHandleSyncProjectVariantsFansOutOneJobPerFile(t *testing.T) {
	pool, jobs, files := newTestPool(t)
	files.files["file-2"] = &models.File{ID: "file-2", ProjectID: "proj-1", S3Key: "proj-1/images/original/file-2.png", Status: models.FileStatusReady}
	files.files["other-project-file"] = &models.File{ID: "other-project-file", ProjectID: "proj-2", S3Key: "proj-2/images/original/x.png", Status: models.FileStatusReady}

	payload, err := json.Marshal(map[string]string{
		"type":       models.JobTypeSyncProjectVariants,
		"project_id": "proj-1",
	})
	require.NoError(t, err)

	job := &models.Job{ID: "job-5", ProjectID: "proj-1", Payload: payload}
	require.NoError(t, pool.handle(context.Background(), job))

	require.Len(t, jobs.pending, 2)
	enqueuedFileIDs := map[string]bool{}
	for _, j := range jobs.pending {
		enqueuedFileIDs[j.FileID] = true
		var p syncFileVariantsPayload
		require.NoError(t, json.Unmarshal(j.Payload, &p))
		require.Equal(t, j.FileID, p.FileID)
	}
	require.True(t, enqueuedFileIDs["file-1"])
	require.True(t, enqueuedFileIDs["file-2"])
	require.False(t, enqueuedFileIDs["other-project-file"])
}

func TestHandleUnknownPayloadShapeFails(t *testing.T) {
	pool, _, _ := newTestPool(t)

	job := &models.Job{ID: "job-2", FileID: "file-1", Payload: json.RawMessage(`{}`)}
	err := pool.handle(context.Background(), job)
	require.Error(t, err)
}

// A corrupt original leaves the file row untouched at "processing": the
// whole job fails rather than persisting a partial variant map.
func TestHandleProcessImageBadOriginalLeavesFileProcessing(t *testing.T) {
	pool, _, files := newTestPool(t)
	files.files["file-1"].S3Key = "proj-1/images/original/bad.png"
	pool.objects.(*fakeObjects).data["proj-1/images/original/bad.png"] = []byte("not an image")

	width := 20
	payload, err := json.Marshal(processImagePayload{
		Variants: map[string]models.VariantConfig{
			"thumb": {Width: &width},
		},
	})
	require.NoError(t, err)

	job := &models.Job{ID: "job-3", FileID: "file-1", Payload: payload}
	err = pool.handle(context.Background(), job)
	require.Error(t, err)

	file := files.files["file-1"]
	require.Equal(t, models.FileStatusProcessing, file.Status)
	require.Equal(t, json.RawMessage(`{}`), file.Variants)
}

// A variant whose original can't be fetched (e.g. uploaded but never
// finished writing to storage) aborts the job the same way: no variant is
// persisted even if other variants would have rendered fine.
func TestHandleProcessImageMissingOriginalAbortsWholeJob(t *testing.T) {
	pool, _, files := newTestPool(t)
	files.files["file-1"].S3Key = "proj-1/images/original/missing.png"

	width := 20
	payload, err := json.Marshal(processImagePayload{
		Variants: map[string]models.VariantConfig{
			"thumb": {Width: &width},
		},
	})
	require.NoError(t, err)

	job := &models.Job{ID: "job-4", FileID: "file-1", Payload: payload}
	err = pool.handle(context.Background(), job)
	require.Error(t, err)

	file := files.files["file-1"]
	require.Equal(t, models.FileStatusProcessing, file.Status)
	require.Equal(t, json.RawMessage(`{}`), file.Variants)
}
