package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/stirfluid/fluid"
)

// CheckpointVersion is incremented when the format changes.
const CheckpointVersion = 1

// ErrCheckpointVersion is returned when loading a checkpoint written by an
// incompatible version.
var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// Checkpoint holds the committed solver state for later restore.
type Checkpoint struct {
	Version    int          `json:"version"`
	Tick       int64        `json:"tick"`
	Resolution int          `json:"resolution"`
	Params     fluid.Params `json:"params"`

	Velocity []float32 `json:"velocity"` // row-major, 2 channels per cell
	Dye      []float32 `json:"dye"`      // row-major, 4 channels per cell

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// NewCheckpoint copies the solver's committed fields.
func NewCheckpoint(s *fluid.Solver) *Checkpoint {
	return &Checkpoint{
		Version:    CheckpointVersion,
		Tick:       s.Tick(),
		Resolution: s.Res(),
		Params:     s.Params(),
		Velocity:   append([]float32(nil), s.Velocity().Data()...),
		Dye:        append([]float32(nil), s.Dye().Data()...),
	}
}

// Grids rebuilds the velocity and dye grids stored in the checkpoint.
func (c *Checkpoint) Grids() (vel, dye *fluid.Grid, err error) {
	if vel, err = gridFrom(c.Resolution, fluid.VelocityChannels, c.Velocity); err != nil {
		return nil, nil, fmt.Errorf("velocity: %w", err)
	}
	if dye, err = gridFrom(c.Resolution, fluid.DyeChannels, c.Dye); err != nil {
		return nil, nil, fmt.Errorf("dye: %w", err)
	}
	return vel, dye, nil
}

func gridFrom(res, channels int, data []float32) (*fluid.Grid, error) {
	g, err := fluid.NewGrid(res, channels)
	if err != nil {
		return nil, err
	}
	if len(data) != len(g.Data()) {
		return nil, fmt.Errorf("%w: %d values, want %d", fluid.ErrSizeMismatch, len(data), len(g.Data()))
	}
	copy(g.Data(), data)
	return g, nil
}

// Restore loads the checkpoint's fields, parameters and tick into s. The
// solver is left untouched unless every part can be applied.
func (c *Checkpoint) Restore(s *fluid.Solver) error {
	if c.Resolution != s.Res() {
		return fmt.Errorf("%w: checkpoint resolution %d, solver %d", fluid.ErrSizeMismatch, c.Resolution, s.Res())
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	vel, dye, err := c.Grids()
	if err != nil {
		return err
	}
	if err := s.Restore(vel, dye); err != nil {
		return err
	}
	if err := s.SetParams(c.Params); err != nil {
		return err
	}
	s.SetTick(c.Tick)
	return nil
}

// SaveCheckpoint writes a checkpoint to disk.
// Returns the filepath where it was saved. Non-finite values cannot be
// encoded, so sanitize the fields first if the run may have diverged.
func SaveCheckpoint(cp *Checkpoint, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create checkpoint dir: %w", err)
	}

	name := fmt.Sprintf("checkpoint_%d", cp.Tick)
	if cp.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(cp.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("checkpoint_%d_%s", cp.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write checkpoint: %w", err)
	}
	return path, nil
}

// LoadCheckpoint reads a checkpoint from disk.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	if cp.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: %d", ErrCheckpointVersion, cp.Version)
	}
	return &cp, nil
}
