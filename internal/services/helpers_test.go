package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/gcfisi/coursehub-backend/internal/data/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	"github.com/gcfisi/coursehub-backend/internal/data/repos/testutil"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/platform/redislock"
)

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	log       *logger.Logger
	courses   repos.CourseRepo
	nodes     repos.StructureNodeRepo
	resources repos.ResourceRepo
	profiles  repos.ProfileRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// service tests assert on whole-table counts, so each gets its own database
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		log:       log,
		courses:   repos.NewCourseRepo(db, log),
		nodes:     repos.NewStructureNodeRepo(db, log),
		resources: repos.NewResourceRepo(db, log),
		profiles:  repos.NewProfileRepo(db, log),
	}
}

func (e *testEnv) actor(t *testing.T, role string) *ActorContext {
	t.Helper()
	p := testutil.SeedProfile(t, e.ctx, e.db, role)
	return &ActorContext{UserID: p.ID, Role: p.Role}
}

func (e *testEnv) course(t *testing.T) *types.Course {
	t.Helper()
	return testutil.SeedCourse(t, e.ctx, e.db, nil)
}

func (e *testEnv) structureService(nodes repos.StructureNodeRepo, locker redislock.Locker) StructureService {
	if nodes == nil {
		nodes = e.nodes
	}
	cfg := ResetConfig{VerifyAttempts: 3}
	return NewStructureService(e.db, e.log, dataagg.NewGormTxRunner(e.db), e.courses, nodes, e.resources, locker, nil, cfg)
}

func (e *testEnv) countNodes(t *testing.T, courseID uuid.UUID) int {
	t.Helper()
	rows, err := e.nodes.GetByCourseIDs(dbctx.Background(e.ctx), []uuid.UUID{courseID})
	if err != nil {
		t.Fatalf("GetByCourseIDs: %v", err)
	}
	return len(rows)
}

// stubbornNodes simulates a store that keeps reporting rows after deletes,
// one whose existence query fails, or one that answers a scripted sequence
// of existence checks (exists) before falling through to the real store.
type stubbornNodes struct {
	repos.StructureNodeRepo
	existsErr   error
	stuck       bool
	exists      []bool
	existsCalls int
	deletes     int
}

func (n *stubbornNodes) ExistsByCourseID(dbc dbctx.Context, courseID uuid.UUID) (bool, error) {
	n.existsCalls++
	if len(n.exists) > 0 {
		next := n.exists[0]
		n.exists = n.exists[1:]
		return next, nil
	}
	if n.existsErr != nil {
		return false, n.existsErr
	}
	if n.stuck {
		return true, nil
	}
	return n.StructureNodeRepo.ExistsByCourseID(dbc, courseID)
}

func (n *stubbornNodes) DeleteByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error) {
	n.deletes++
	if n.stuck {
		return 0, nil
	}
	return n.StructureNodeRepo.DeleteByCourseIDs(dbc, courseIDs)
}

type memBucket struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	failPut bool
}

func newMemBucket() *memBucket { return &memBucket{files: map[string][]byte{}} }

func (b *memBucket) UploadFile(dbc dbctx.Context, key string, r io.Reader) error {
	if b.failPut {
		return errors.New("bucket unavailable")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[key] = buf.Bytes()
	return nil
}

func (b *memBucket) DeleteFile(dbc dbctx.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBucket) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func seedTree(t *testing.T, e *testEnv, courseID uuid.UUID) (root, child, grandchild *types.StructureNode) {
	t.Helper()
	root = testutil.SeedStructureNode(t, e.ctx, e.db, courseID, nil, "Topics", 1)
	child = testutil.SeedStructureNode(t, e.ctx, e.db, courseID, &root.ID, "Topic 1", 1)
	grandchild = testutil.SeedStructureNode(t, e.ctx, e.db, courseID, &child.ID, "Slides", 1)
	return root, child, grandchild
}

func seedResource(t *testing.T, e *testEnv, node *types.StructureNode, uploaderID uuid.UUID, status string) *types.Resource {
	t.Helper()
	return testutil.SeedResource(t, e.ctx, e.db, node.CourseID, node.ID, uploaderID, status)
}

func dbcOf(e *testEnv) dbctx.Context { return dbctx.Background(e.ctx) }
