package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ImageRefLister lists the image filenames currently referenced by job
// postings.
type ImageRefLister interface {
	ListImagePaths() ([]string, error)
}

// UploadSweeper deletes stored files not present in refs that are older
// than minAge.
type UploadSweeper interface {
	RemoveUnreferenced(refs []string, minAge time.Duration) (int, error)
}

// CleanupUploadsTask removes uploaded images that no job posting references
// anymore, e.g. after a posting is deleted while its image removal failed.
type CleanupUploadsTask struct{}

// Config returns the queue configuration for upload cleanup tasks.
func (t CleanupUploadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_uploads",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// minUploadAge keeps files from in-flight requests out of the sweep.
const minUploadAge = time.Hour

// CleanupUploadsProcessor creates a processor function for CleanupUploadsTask.
func CleanupUploadsProcessor(refs ImageRefLister, sweeper UploadSweeper) backlite.QueueProcessor[CleanupUploadsTask] {
	return func(ctx context.Context, task CleanupUploadsTask) error {
		if refs == nil || sweeper == nil {
			return fmt.Errorf("upload cleanup not configured")
		}

		referenced, err := refs.ListImagePaths()
		if err != nil {
			return fmt.Errorf("list referenced images: %w", err)
		}

		removed, err := sweeper.RemoveUnreferenced(referenced, minUploadAge)
		if err != nil {
			return fmt.Errorf("sweep uploads: %w", err)
		}

		log.Printf("[TASK] Removed %d unreferenced uploads", removed)
		return nil
	}
}

// NewCleanupUploadsQueue creates a backlite queue for upload cleanup tasks.
func NewCleanupUploadsQueue(refs ImageRefLister, sweeper UploadSweeper) backlite.Queue {
	return backlite.NewQueue(CleanupUploadsProcessor(refs, sweeper))
}
