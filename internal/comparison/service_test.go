package comparison

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/pose-coach/internal/exercise"
	"github.com/eleven-am/pose-coach/internal/feedback"
	"github.com/eleven-am/pose-coach/internal/pose"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/eleven-am/pose-coach/internal/video"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// markerDetector reads the person from the red channel of the first pixel.
// 0 means nobody is in frame and 255 simulates a model failure.
type markerDetector struct{}

func (markerDetector) Detect(ctx context.Context, img image.Image) ([]pose.RawFrame, error) {
	b := img.Bounds()
	r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	switch v := float64(r >> 8); v {
	case 0:
		return nil, nil
	case 255:
		return nil, errors.New("model crashed")
	default:
		kps := make(pose.RawFrame, 17)
		for i := range kps {
			kps[i] = pose.Keypoint{X: v * float64(i+1) / 10, Y: v * float64(i) / 5, Confidence: 0.9}
		}
		return []pose.RawFrame{kps}, nil
	}
}

// byteOpener decodes a "video" whose bytes are the marker of each frame.
type byteOpener struct {
	mu    sync.Mutex
	opens map[string]int
}

func (o *byteOpener) Open(ctx context.Context, path string) (video.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.opens == nil {
		o.opens = map[string]int{}
	}
	o.opens[path]++
	o.mu.Unlock()

	frames := make([]image.Image, len(data))
	for i, v := range data {
		img := image.NewRGBA(image.Rect(0, 0, 100, 100))
		img.SetRGBA(0, 0, color.RGBA{R: v, A: 255})
		frames[i] = img
	}
	return video.NewMemorySource(1, frames), nil
}

func (o *byteOpener) count(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[path]
}

type stubAdvisor struct{}

func (stubAdvisor) Advise(ctx context.Context, distance float64, action string) feedback.Advice {
	return feedback.Advice{
		Text:    "keep going with " + action,
		Verdict: feedback.VerdictFor(distance, feedback.DefaultThreshold),
	}
}

type stubSuggester struct {
	mu      sync.Mutex
	upserts []string
	nearest string
}

func (s *stubSuggester) Upsert(ctx context.Context, exerciseID string, seq pose.DescriptorSequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, exerciseID)
	return nil
}

func (s *stubSuggester) Nearest(ctx context.Context, seq pose.DescriptorSequence) (string, error) {
	return s.nearest, nil
}

type testEnv struct {
	service   *Service
	exercises *exercise.Store
	records   *Store
	opener    *byteOpener
	suggester *stubSuggester
	redis     *miniredis.Miniredis
	dir       string
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	exercises := exercise.NewStore(db)
	records := NewStore(db)
	if err := exercises.Migrate(); err != nil {
		t.Fatalf("exercise Migrate() error = %v", err)
	}
	if err := records.Migrate(); err != nil {
		t.Fatalf("comparison Migrate() error = %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opener := &byteOpener{}
	suggester := &stubSuggester{}

	service := NewService(ServiceConfig{
		Pipeline:  similarity.New(markerDetector{}, similarity.Config{}, logger),
		Open:      opener.Open,
		Exercises: exercises,
		Records:   records,
		Cache:     NewReferenceCache(client, 0),
		Advisor:   stubAdvisor{},
		Suggester: suggester,
		Logger:    logger,
	})

	return &testEnv{
		service:   service,
		exercises: exercises,
		records:   records,
		opener:    opener,
		suggester: suggester,
		redis:     mr,
		dir:       t.TempDir(),
	}
}

func (e *testEnv) writeVideo(t *testing.T, name string, markers ...byte) string {
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, markers, 0o644); err != nil {
		t.Fatalf("failed to write video: %v", err)
	}
	return path
}

func (e *testEnv) createExercise(t *testing.T, slug, name, videoPath string) *exercise.Exercise {
	ex := &exercise.Exercise{Slug: slug, Name: name, ReferenceVideo: videoPath}
	if err := e.exercises.Create(context.Background(), ex); err != nil {
		t.Fatalf("failed to create exercise: %v", err)
	}
	return ex
}

func TestService_CompareToExercise_Identical(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30, 40, 50)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30, 40, 50)
	ex := env.createExercise(t, "low-lunge", "Low Lunge", ref)

	rec, err := env.service.CompareToExercise(context.Background(), ex.ID, att)
	if err != nil {
		t.Fatalf("CompareToExercise() error = %v", err)
	}

	if !rec.Finite || rec.Distance != 0 {
		t.Errorf("expected finite zero distance, got %v (finite=%v)", rec.Distance, rec.Finite)
	}
	if rec.ExerciseID != ex.ID || rec.Action != "Low Lunge" {
		t.Errorf("unexpected exercise fields %q %q", rec.ExerciseID, rec.Action)
	}
	if rec.Verdict != string(feedback.VerdictHigh) {
		t.Errorf("expected high verdict, got %q", rec.Verdict)
	}
	if rec.ReferenceSampled != 5 || rec.AttemptDetected != 5 {
		t.Errorf("unexpected stats %+v", rec)
	}

	stored, err := env.records.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Feedback != "keep going with Low Lunge" {
		t.Errorf("unexpected stored feedback %q", stored.Feedback)
	}
}

func TestService_CompareToExercise_BySlug(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	att := env.writeVideo(t, "att.mp4", 30, 20, 10)
	ex := env.createExercise(t, "standing-split", "Standing Split", ref)

	rec, err := env.service.CompareToExercise(context.Background(), "standing-split", att)
	if err != nil {
		t.Fatalf("CompareToExercise() error = %v", err)
	}
	if rec.ExerciseID != ex.ID {
		t.Errorf("expected exercise %s, got %s", ex.ID, rec.ExerciseID)
	}
	if rec.Distance <= 0 {
		t.Errorf("expected positive distance, got %v", rec.Distance)
	}
}

func TestService_ReferenceIsCached(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30, 40)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30, 40)
	ex := env.createExercise(t, "low-lunge", "Low Lunge", ref)

	for i := 0; i < 3; i++ {
		if _, err := env.service.CompareToExercise(context.Background(), ex.ID, att); err != nil {
			t.Fatalf("CompareToExercise() #%d error = %v", i, err)
		}
	}

	if n := env.opener.count(ref); n != 1 {
		t.Errorf("expected reference decoded once, got %d", n)
	}
	if n := env.opener.count(att); n != 3 {
		t.Errorf("expected attempt decoded every time, got %d", n)
	}
	if len(env.redis.Keys()) != 1 {
		t.Errorf("expected one cached reference, got %v", env.redis.Keys())
	}
	if len(env.suggester.upserts) != 1 || env.suggester.upserts[0] != ex.ID {
		t.Errorf("expected suggester updated once, got %v", env.suggester.upserts)
	}
}

func TestService_IndexReference(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	ex := env.createExercise(t, "low-lunge", "Low Lunge", ref)

	if err := env.service.IndexReference(context.Background(), ex); err != nil {
		t.Fatalf("IndexReference() error = %v", err)
	}
	if len(env.redis.Keys()) != 1 {
		t.Errorf("expected reference cached, got %v", env.redis.Keys())
	}
}

func TestService_CompareToExercise_NotFound(t *testing.T) {
	env := newTestEnv(t)
	att := env.writeVideo(t, "att.mp4", 10)

	_, err := env.service.CompareToExercise(context.Background(), "missing", att)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_CompareVideos_EmptyAttempt(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	att := env.writeVideo(t, "att.mp4", 0, 0, 0)

	_, err := env.service.CompareVideos(context.Background(), ref, att, "squat")

	var se *similarity.SequenceError
	if !errors.As(err, &se) {
		t.Fatalf("expected SequenceError, got %v", err)
	}
	if se.Video != SideAttempt {
		t.Errorf("expected attempt side, got %q", se.Video)
	}
}

func TestService_CompareVideos_DetectorFailure(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 255, 30)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30)

	_, err := env.service.CompareVideos(context.Background(), ref, att, "squat")

	var ce *similarity.CollaboratorError
	if !errors.As(err, &ce) || ce.Collaborator != similarity.CollaboratorDetector {
		t.Errorf("expected detector error, got %v", err)
	}
}

func TestService_CompareVideos_UnreadableFile(t *testing.T) {
	env := newTestEnv(t)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30)

	_, err := env.service.CompareVideos(context.Background(), filepath.Join(env.dir, "missing.mp4"), att, "squat")

	var ce *similarity.CollaboratorError
	if !errors.As(err, &ce) || ce.Collaborator != similarity.CollaboratorDecoder {
		t.Errorf("expected decoder error, got %v", err)
	}
}

func TestService_CompareVideos_SuggestsAction(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30)
	ex := env.createExercise(t, "lunging-side-stretch", "Lunging Side Stretch", ref)
	env.suggester.nearest = ex.ID

	rec, err := env.service.CompareVideos(context.Background(), ref, att, "")
	if err != nil {
		t.Fatalf("CompareVideos() error = %v", err)
	}
	if rec.Action != "Lunging Side Stretch" || rec.ExerciseID != ex.ID {
		t.Errorf("expected suggested exercise, got %q %q", rec.Action, rec.ExerciseID)
	}
}

func TestService_CompareVideos_DefaultAction(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30)

	rec, err := env.service.CompareVideos(context.Background(), ref, att, "")
	if err != nil {
		t.Fatalf("CompareVideos() error = %v", err)
	}
	if rec.Action != "exercise" || rec.ExerciseID != "" {
		t.Errorf("expected generic action, got %q %q", rec.Action, rec.ExerciseID)
	}
}

func TestService_List(t *testing.T) {
	env := newTestEnv(t)
	ref := env.writeVideo(t, "ref.mp4", 10, 20, 30)
	att := env.writeVideo(t, "att.mp4", 10, 20, 30)
	ex := env.createExercise(t, "low-lunge", "Low Lunge", ref)

	env.service.CompareToExercise(context.Background(), ex.ID, att)
	env.service.CompareVideos(context.Background(), ref, att, "squat")

	all, err := env.service.List(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}

	filtered, _ := env.service.List(context.Background(), ex.ID, 0)
	if len(filtered) != 1 || filtered[0].ExerciseID != ex.ID {
		t.Errorf("expected 1 record for exercise, got %v", filtered)
	}
}
