package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

// ImageIndex reports which stored images are still referenced.
type ImageIndex interface {
	ListImagePaths(ctx context.Context) ([]string, error)
}

// Sweeper deletes uploaded images that no student references. Images younger
// than Grace are left alone: a registration saves its images before the row
// that points at them exists.
type Sweeper struct {
	Index  ImageIndex
	Images storage.ImageStore
	Grace  time.Duration
	Log    *slog.Logger
	Now    func() time.Time
}

// Sweep runs one pass and returns how many images it removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	objects, err := s.Images.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	paths, err := s.Index.ListImagePaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("list referenced images: %w", err)
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[p] = true
	}

	cutoff := s.now().Add(-s.Grace)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Path] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.Images.Remove(ctx, obj.Path); err != nil {
			s.log().Warn("remove orphaned image", "path", obj.Path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Sweeper) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// StartScheduler sweeps every interval until ctx is cancelled. The returned
// channel is closed once the loop has exited. A non-positive interval
// disables sweeping.
func StartScheduler(ctx context.Context, s *Sweeper, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		s.log().Warn("scheduler disabled", "interval", interval)
		close(done)
		return done
	}
	go func() {
		defer close(done)
		s.log().Info("scheduler started", "interval", interval, "grace", s.Grace)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log().Info("scheduler stopped")
				return
			case <-ticker.C:
				n, err := s.Sweep(ctx)
				if err != nil {
					s.log().Error("sweep uploads", "error", err)
					continue
				}
				if n > 0 {
					s.log().Info("removed orphaned uploads", "count", n)
				}
			}
		}
	}()
	return done
}
