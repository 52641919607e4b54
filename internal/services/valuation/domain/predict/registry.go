package predict

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
)

// LinearModel is a fitted linear regression over the feature vector.
type LinearModel struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	// Min and Max optionally bound the output.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (m LinearModel) validate() error {
	if len(m.Coefficients) != FeatureCount {
		return fmt.Errorf("model has %d coefficients, want %d", len(m.Coefficients), FeatureCount)
	}
	if m.Min != nil && m.Max != nil && *m.Min > *m.Max {
		return fmt.Errorf("model min %v exceeds max %v", *m.Min, *m.Max)
	}
	return nil
}

// Apply evaluates the model on a feature vector.
func (m LinearModel) Apply(features [FeatureCount]float64) float64 {
	y := m.Intercept
	for i, w := range m.Coefficients {
		y += w * features[i]
	}
	if m.Min != nil && y < *m.Min {
		y = *m.Min
	}
	if m.Max != nil && y > *m.Max {
		y = *m.Max
	}
	return y
}

// Status describes one model slot of a registry.
type Status struct {
	Quantity  Quantity  `json:"quantity"`
	Path      string    `json:"path,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	Version   string    `json:"version,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
	Available bool      `json:"available"`
	Error     string    `json:"error,omitempty"`
}

// Registry serves predictions from models loaded at construction. It is
// read-only after LoadRegistry returns and safe for concurrent use.
type Registry struct {
	models map[Quantity]LinearModel
	status map[Quantity]Status
}

// ModelFileName returns the file a quantity's model is read from.
func ModelFileName(q Quantity) string {
	return string(q) + "_model.json"
}

// LoadRegistry loads every model found in dir. Missing or invalid model files
// leave their quantity unavailable; they are reported through Status and
// never fail the load.
func LoadRegistry(dir string) *Registry {
	return loadRegistry(dir, time.Now)
}

func loadRegistry(dir string, now func() time.Time) *Registry {
	r := &Registry{
		models: make(map[Quantity]LinearModel),
		status: make(map[Quantity]Status),
	}
	for _, q := range Quantities {
		status := Status{Quantity: q}
		if dir == "" {
			status.Error = "no model directory configured"
			r.status[q] = status
			continue
		}
		path := filepath.Join(dir, ModelFileName(q))
		status.Path = path
		model, hash, err := readModel(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			status.Error = "model file not found"
		case err != nil:
			status.Error = err.Error()
			log.Printf("predict: load %s: %v", path, err)
		default:
			status.Hash = hash
			status.Version = model.Version
			status.LoadedAt = now().UTC()
			status.Available = true
			r.models[q] = model
		}
		r.status[q] = status
	}
	return r
}

func readModel(path string) (LinearModel, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LinearModel{}, "", err
	}
	var model LinearModel
	if err := json.Unmarshal(data, &model); err != nil {
		return LinearModel{}, "", fmt.Errorf("decode model: %w", err)
	}
	if err := model.validate(); err != nil {
		return LinearModel{}, "", err
	}
	sum := sha256.Sum256(data)
	return model, hex.EncodeToString(sum[:])[:12], nil
}

// Available reports whether any model is loaded.
func (r *Registry) Available() bool {
	return len(r.models) > 0
}

// Status returns the model slots in reporting order.
func (r *Registry) Status() []Status {
	out := make([]Status, 0, len(Quantities))
	for _, q := range Quantities {
		out = append(out, r.status[q])
	}
	return out
}

// Predict evaluates the model for q. A quantity without a loaded model yields
// an unavailable prediction, not an error.
func (r *Registry) Predict(ctx context.Context, set attributes.Set, q Quantity) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	model, ok := r.models[q]
	if !ok {
		reason := r.status[q].Error
		if reason == "" {
			reason = "unknown quantity"
		}
		return Unavailable(q, reason), nil
	}
	features := Features(set)
	value := model.Apply(features)
	return Prediction{
		Quantity:   q,
		Value:      &value,
		Confidence: Confidence(features),
		Source:     SourceModel,
		Model:      r.status[q].Hash,
	}, nil
}
