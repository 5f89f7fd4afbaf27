package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"
)

// Artifact is the persisted training output: the selected model, the scaler
// when the family needs one (nil for tree families), and the metadata that
// justified selection. It is replaced wholesale on retrain; there is no
// versioning beyond "latest wins", since it is always regenerable from the
// game store.
type Artifact struct {
	ID         string
	Family     string
	CVAccuracy float64
	Model      Classifier
	Scaler     *Scaler
	Report     map[string]float64 // per-family CV accuracy
	Games      int
	TrainedAt  time.Time
}

func init() {
	gob.Register(&GradientBoosting{})
	gob.Register(&RandomForest{})
	gob.Register(&LogisticRegression{})
}

// Save writes the artifact to path via a temp file and rename, so a crash
// mid-write never leaves a torn artifact behind.
func (a *Artifact) Save(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("ml: create artifact: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(a); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("ml: encode artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ml: close artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ml: replace artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously saved artifact. A missing file is returned
// as os.ErrNotExist for the caller to treat as "no model yet".
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var a Artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("ml: decode artifact %s: %w", path, err)
	}
	return &a, nil
}
