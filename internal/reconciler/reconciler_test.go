package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

type fakeProjects struct {
	softDeleted []*models.Project
	hardDeleted []string
}

func (f *fakeProjects) CreateProject(ctx context.Context, p *models.Project) (string, error) {
	return p.ID, nil
}
func (f *fakeProjects) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return nil, models.ErrProjectNotFound
}
func (f *fakeProjects) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return nil, nil
}
func (f *fakeProjects) ListAllProjects(ctx context.Context) ([]*models.Project, error) { return nil, nil }
func (f *fakeProjects) UpdateProject(ctx context.Context, p *models.Project) error     { return nil }
func (f *fakeProjects) SoftDeleteProject(ctx context.Context, id string) error         { return nil }
func (f *fakeProjects) HardDeleteProject(ctx context.Context, id string) error {
	f.hardDeleted = append(f.hardDeleted, id)
	return nil
}
func (f *fakeProjects) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error) {
	return f.softDeleted, nil
}

type fakeFiles struct {
	byProject map[string][]*models.File
}

func (f *fakeFiles) CreateFile(ctx context.Context, file *models.File) (string, error) {
	return file.ID, nil
}
func (f *fakeFiles) GetFile(ctx context.Context, id string) (*models.File, error) {
	return nil, models.ErrFileNotFound
}
func (f *fakeFiles) ListFilesByProject(ctx context.Context, projectID string, page, limit int) ([]*models.File, int64, error) {
	files := f.byProject[projectID]
	return files, int64(len(files)), nil
}
func (f *fakeFiles) ListAllFiles(ctx context.Context, page, limit int) ([]*models.File, int64, error) {
	return nil, 0, nil
}
func (f *fakeFiles) ListImageFilesByProject(ctx context.Context, projectID string) ([]*models.File, error) {
	return nil, nil
}
func (f *fakeFiles) UpdateFile(ctx context.Context, file *models.File) error { return nil }
func (f *fakeFiles) DeleteFile(ctx context.Context, id string) error        { return nil }

type fakeObjects struct {
	deleted []string
}

func (f *fakeObjects) Resolve(value string) string { return value }
func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestSweepOncePurgesExpiredProjects(t *testing.T) {
	projects := &fakeProjects{
		softDeleted: []*models.Project{{ID: "proj-1"}},
	}
	files := &fakeFiles{byProject: map[string][]*models.File{
		"proj-1": {
			{
				ID:       "file-1",
				S3Key:    "proj-1/images/original/file-1.png",
				Variants: []byte(`{"thumb":"proj-1/images/variants/file-1-thumb.jpg"}`),
			},
		},
	}}
	objects := &fakeObjects{}

	rec := New(projects, files, objects, Config{RetentionPeriod: time.Hour})
	rec.SweepOnce(context.Background())

	require.Equal(t, []string{"proj-1"}, projects.hardDeleted)
	require.ElementsMatch(t, []string{
		"proj-1/images/original/file-1.png",
		"proj-1/images/variants/file-1-thumb.jpg",
	}, objects.deleted)
}

func TestSweepOnceSkipsWhenNothingExpired(t *testing.T) {
	projects := &fakeProjects{}
	files := &fakeFiles{byProject: map[string][]*models.File{}}
	objects := &fakeObjects{}

	rec := New(projects, files, objects, Config{RetentionPeriod: time.Hour})
	rec.SweepOnce(context.Background())

	require.Empty(t, projects.hardDeleted)
	require.Empty(t, objects.deleted)
}
