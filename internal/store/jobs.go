package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/secondbrain/core/internal/core"
)

// CreateJob inserts an IngestionJob at stage RECEIVED for a freshly
// accepted document.
func (s *Store) CreateJob(ctx context.Context, userID, documentID string) (*core.IngestionJob, error) {
	job := &core.IngestionJob{
		UserID:     userID,
		DocumentID: documentID,
		Status:     core.JobRunning,
		Stage:      core.StageReceived,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO ingestion_jobs (user_id, document_id, status, stage) VALUES ($1,$2,$3,$4)
		 RETURNING id, created_at, updated_at`,
		job.UserID, job.DocumentID, job.Status, job.Stage,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "CreateJob", err)
	}
	return job, nil
}

// AdvanceStage persists a stage transition before work for the next stage
// begins, so an interrupted job shows the last completed stage.
func (s *Store) AdvanceStage(ctx context.Context, jobID string, stage core.Stage) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE ingestion_jobs SET stage = $1, updated_at = now() WHERE id = $2`, stage, jobID)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "AdvanceStage", err)
	}
	return nil
}

// CompleteJob moves a job to COMPLETED at stage INDEXED.
func (s *Store) CompleteJob(ctx context.Context, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE ingestion_jobs SET status = $1, stage = $2, updated_at = now() WHERE id = $3`,
		core.JobCompleted, core.StageIndexed, jobID)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "CompleteJob", err)
	}
	return nil
}

// FailJob records a terminal failure on the job with the triggering error.
func (s *Store) FailJob(ctx context.Context, jobID string, cause error) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE ingestion_jobs SET status = $1, stage = $2, error = $3, updated_at = now() WHERE id = $4`,
		core.JobFailed, core.StageFailed, cause.Error(), jobID)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "FailJob", err)
	}
	return nil
}

// GetJob fetches a job by id, scoped to userID.
func (s *Store) GetJob(ctx context.Context, userID, jobID string) (*core.IngestionJob, error) {
	var job core.IngestionJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, document_id, status, stage, error, created_at, updated_at
		 FROM ingestion_jobs WHERE id = $1 AND user_id = $2`, jobID, userID,
	).Scan(&job.ID, &job.UserID, &job.DocumentID, &job.Status, &job.Stage, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.KindNotFound, "GetJob", err)
		}
		return nil, core.NewError(core.KindStorageFailed, "GetJob", err)
	}
	return &job, nil
}
