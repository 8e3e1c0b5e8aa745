package brain

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/imaging"
	"github.com/abhisek/carescope/internal/predict"
)

type fakeClassifier struct {
	uploads []imaging.Upload
	res     predict.BrainResult
}

func (f *fakeClassifier) ClassifyBrainScan(_ context.Context, up imaging.Upload) (*predict.BrainResult, error) {
	f.uploads = append(f.uploads, up)
	res := f.res
	return &res, nil
}

type fakeExplainer struct{ calls int }

func (f *fakeExplainer) BrainScan(_ context.Context, res predict.BrainResult) explain.Explanation {
	f.calls++
	return explain.Explanation{Summary: "A " + res.TumorType() + " tumor grows from the pituitary gland."}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func submit(t *testing.T, s *BrainScreen, path string) {
	t.Helper()
	s.path.SetValue(path)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, s.busy)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if msg, ok := c().(classifyDoneMsg); ok {
			s.Update(msg)
			return
		}
	}
	t.Fatal("no classification message")
}

func TestClassifyScan(t *testing.T) {
	fc := &fakeClassifier{res: predict.BrainResult{Result: "Tumor: Pituitary", Confidence: "97.31%"}}
	fe := &fakeExplainer{}
	s := New(fc, fe)
	s.Init()

	submit(t, s, writePNG(t, 64, 48))

	require.Len(t, fc.uploads, 1)
	assert.Equal(t, "scan.png", fc.uploads[0].Filename)
	assert.Equal(t, imaging.FormatPNG, fc.uploads[0].Source)
	assert.Equal(t, 1, fe.calls)

	view := s.View(100, 40)
	assert.Contains(t, view, "Tumor: Pituitary")
	assert.Contains(t, view, "97%")
	assert.Contains(t, view, "64×48")
	assert.Contains(t, view, "pituitary gland")
}

func TestServiceExplanationIsUsed(t *testing.T) {
	fc := &fakeClassifier{res: predict.BrainResult{Result: "No Tumor", Confidence: "99.10%", Explanation: "<p>No sign of a tumor.</p>"}}
	fe := &fakeExplainer{}
	s := New(fc, fe)
	s.Init()

	submit(t, s, writePNG(t, 16, 16))
	assert.Zero(t, fe.calls)
	assert.Contains(t, s.View(100, 40), "No sign of a tumor.")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, s.result)
	assert.Empty(t, s.path.Value())
}

func TestRejectsNonImage(t *testing.T) {
	fc := &fakeClassifier{}
	s := New(fc, nil)
	s.Init()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	submit(t, s, path)

	assert.Empty(t, fc.uploads)
	assert.Nil(t, s.result)
	view := s.View(100, 40)
	assert.Contains(t, view, "Please upload an image file")
	assert.NotContains(t, view, imaging.ErrUnsupportedFormat.Error())
}

func TestMissingFile(t *testing.T) {
	s := New(&fakeClassifier{}, nil)
	s.Init()
	submit(t, s, filepath.Join(t.TempDir(), "missing.png"))
	assert.Contains(t, s.View(100, 40), "File not found")
}

func TestEmptyPath(t *testing.T) {
	s := New(&fakeClassifier{}, nil)
	s.Init()
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(100, 40), "Please select an image file")
}
