package persistent

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"viewswap/internal/entity"
	"viewswap/internal/model"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newDryRunDB opens a gorm handle that builds statements without touching a
// database, so the generated SQL can be inspected.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        "host=localhost user=viewswap dbname=viewswap sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

type capturedStmt struct {
	SQL  string
	Vars []interface{}
}

// captureStatements records every statement the handle builds.
func captureStatements(t *testing.T, db *gorm.DB) *[]capturedStmt {
	t.Helper()
	stmts := &[]capturedStmt{}
	record := func(tx *gorm.DB) {
		*stmts = append(*stmts, capturedStmt{SQL: tx.Statement.SQL.String(), Vars: tx.Statement.Vars})
	}
	require.NoError(t, db.Callback().Create().Register("test_capture_create", record))
	require.NoError(t, db.Callback().Update().Register("test_capture_update", record))
	require.NoError(t, db.Callback().Query().Register("test_capture_query", record))
	return stmts
}

func lastStmt(t *testing.T, stmts *[]capturedStmt) capturedStmt {
	t.Helper()
	require.NotEmpty(t, *stmts)
	return (*stmts)[len(*stmts)-1]
}

// insertVar returns the value bound to a column of a single-row INSERT.
func insertVar(t *testing.T, stmt capturedStmt, column string) interface{} {
	t.Helper()
	open := strings.Index(stmt.SQL, "(")
	closing := strings.Index(stmt.SQL, ")")
	require.True(t, open >= 0 && closing > open, "no column list in %q", stmt.SQL)
	cols := strings.Split(stmt.SQL[open+1:closing], ",")
	for i, c := range cols {
		if strings.Trim(c, `" `) == column {
			require.Less(t, i, len(stmt.Vars))
			return stmt.Vars[i]
		}
	}
	t.Fatalf("column %s not in %q", column, stmt.SQL)
	return nil
}

// updateVar returns the value bound to a column of an UPDATE ... SET clause.
func updateVar(t *testing.T, stmt capturedStmt, column string) interface{} {
	t.Helper()
	m := regexp.MustCompile(`"` + column + `"=\$(\d+)`).FindStringSubmatch(stmt.SQL)
	require.NotNil(t, m, "column %s not set in %q", column, stmt.SQL)
	idx, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	require.LessOrEqual(t, idx, len(stmt.Vars))
	return stmt.Vars[idx-1]
}

func TestCreateTask_UnreviewedTaskInsertsNullReviewer(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewTaskRepository(db)

	_, err := repo.Create(&entity.Task{
		VideoID:    "video-1",
		AssignedTo: "viewer-1",
		AssignedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	stmt := lastStmt(t, stmts)
	assert.Contains(t, stmt.SQL, `INSERT INTO "tasks"`)
	// reviewer_id is a UUID column; an unreviewed task must bind NULL, not ''
	assert.Nil(t, insertVar(t, stmt, "reviewer_id"))
}

func TestAppendLog_ActorlessEventInsertsNullUserID(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewLogRepository(db)

	require.NoError(t, repo.Append(entity.EventTasksExpired, "", "expired 3 stale proofs"))

	stmt := lastStmt(t, stmts)
	assert.Contains(t, stmt.SQL, `INSERT INTO "logs"`)
	assert.Nil(t, insertVar(t, stmt, "user_id"))
}

func TestAppendLog_ActorEventBindsUserID(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewLogRepository(db)

	require.NoError(t, repo.Append(entity.EventUserPaused, "user-1", ""))

	v := insertVar(t, lastStmt(t, stmts), "user_id")
	id, ok := v.(*string)
	require.True(t, ok, "user_id bound as %T", v)
	assert.Equal(t, "user-1", *id)
}

func TestSetVerified_BindsReviewer(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewTaskRepository(db)

	// Dry run reports zero affected rows, which the repository maps to
	// ErrNotFound; only the generated statement matters here.
	err := repo.SetVerified("task-1", entity.ResultRejected, "owner-1", "too blurry", time.Now().UTC())
	assert.ErrorIs(t, err, entity.ErrNotFound)

	stmt := lastStmt(t, stmts)
	assert.Contains(t, stmt.SQL, `UPDATE "tasks"`)
	v := updateVar(t, stmt, "reviewer_id")
	id, ok := v.(*string)
	require.True(t, ok, "reviewer_id bound as %T", v)
	assert.Equal(t, "owner-1", *id)
	assert.Equal(t, "too blurry", updateVar(t, stmt, "reviewer_msg"))
}

func TestListCandidates_FiltersOwnAndRepeatAssignments(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewTaskRepository(db)

	_, err := repo.ListCandidates("viewer-1")
	require.NoError(t, err)

	stmt := lastStmt(t, stmts)
	// Own videos are never candidates
	assert.Contains(t, stmt.SQL, "videos.owner_id <>")
	// A viewer never sees the same video twice, whatever the prior outcome
	assert.Contains(t, stmt.SQL, "NOT EXISTS (SELECT 1 FROM tasks WHERE tasks.video_id = videos.id AND tasks.assigned_to =")
	// Completed views count every uploaded proof, verified or not
	assert.Contains(t, stmt.SQL, "tasks.proof_uploaded_at IS NOT NULL) AS completed_views")
	// Stable enumeration order decides ties
	assert.Contains(t, stmt.SQL, "ORDER BY videos.created_at ASC, videos.id ASC")
	assert.Contains(t, stmt.Vars, "viewer-1")
}

func TestExpireStaleProofs_TargetsOnlyUnverifiedProofs(t *testing.T) {
	db := newDryRunDB(t)
	stmts := captureStatements(t, db)
	repo := NewTaskRepository(db)

	cutoff := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err := repo.ExpireStaleProofs(cutoff)
	require.NoError(t, err)

	stmt := lastStmt(t, stmts)
	assert.Contains(t, stmt.SQL, `UPDATE "tasks"`)
	// Proof-less tasks never expire by sweep
	assert.Contains(t, stmt.SQL, "proof_uploaded_at IS NOT NULL")
	assert.Contains(t, stmt.SQL, "proof_uploaded_at <=")
	// Already-expired rows are excluded, so a second run is a no-op
	assert.Contains(t, stmt.SQL, "verified =")
	assert.Contains(t, stmt.SQL, "expired =")
	assert.Contains(t, stmt.Vars, cutoff)
}

func TestTaskModel_OneTaskPerViewerVideo(t *testing.T) {
	s, err := schema.Parse(&model.TaskModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx, ok := s.ParseIndexes()["idx_tasks_viewer_video"]
	require.True(t, ok, "missing idx_tasks_viewer_video")
	assert.Equal(t, "UNIQUE", idx.Class)

	fields := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		fields = append(fields, f.DBName)
	}
	assert.ElementsMatch(t, []string{"video_id", "assigned_to"}, fields)
}
