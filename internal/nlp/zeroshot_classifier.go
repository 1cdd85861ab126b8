package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const (
	modelDir          = "./internal/transformers/models"
	zeroShotModelName = "facebook/bart-large-mnli"
)

// ZeroShotClassifier scores hazard context with an in-process ONNX
// zero-shot pipeline. It downloads the model on first use and owns the
// runtime session for the process lifetime.
type ZeroShotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.ZeroShotClassificationPipeline
}

// NewZeroShotClassifier initializes the runtime session and pipeline with the
// given candidate labels fixed for all calls.
func NewZeroShotClassifier(labels []string) (*ZeroShotClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, "bart-large-mnli")
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[ZeroShotClassifier] Model not found, downloading...",
			slog.String("model", zeroShotModelName))
		downloaded, err := hugot.DownloadModel(zeroShotModelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download zero-shot model: %w", err)
		}
		modelPath = downloaded
		slog.Info("[ZeroShotClassifier] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[ZeroShotClassifier] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Hugot session: %w", err)
	}

	config := hugot.ZeroShotClassificationConfig{
		ModelPath: modelPath,
		Name:      "hazardContextPipeline",
		Options: []hugot.ZeroShotClassificationOption{
			pipelines.WithLabels(labels),
			pipelines.WithHypothesisTemplate("This text is about {}."),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize zero-shot pipeline: %w", err)
	}

	return &ZeroShotClassifier{session: session, pipeline: pipeline}, nil
}

// Classify runs the pipeline over a single text and returns its label scores
// ordered by confidence, highest first.
func (z *ZeroShotClassifier) Classify(_ context.Context, text string) ([]Prediction, error) {
	output, err := z.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("zero-shot pipeline failed: %w", err)
	}

	if len(output.ClassificationOutputs) == 0 {
		return nil, fmt.Errorf("zero-shot pipeline returned no output")
	}

	sorted := output.ClassificationOutputs[0].SortedValues
	predictions := make([]Prediction, 0, len(sorted))
	for _, sv := range sorted {
		predictions = append(predictions, Prediction{Label: sv.Key, Score: sv.Value})
	}
	return predictions, nil
}

// Close releases the runtime session.
func (z *ZeroShotClassifier) Close() {
	if z.session != nil {
		z.session.Destroy()
	}
}
