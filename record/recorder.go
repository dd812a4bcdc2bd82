package record

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/icza/mjpeg"
	"github.com/pthm-cable/stirfluid/fluid"
)

// Recorder appends dye frames to an MJPEG AVI file.
type Recorder struct {
	path    string
	quality int
	writer  mjpeg.AviWriter
	img     *image.RGBA
	buf     bytes.Buffer
	frames  int
}

// NewRecorder creates the video file. Frames are res x res pixels.
func NewRecorder(path string, res, fps, quality int) (*Recorder, error) {
	if fps <= 0 {
		return nil, &fluid.ConfigurationError{Field: "record.fps", Value: fps, Reason: "must be positive"}
	}
	if quality < 1 || quality > 100 {
		return nil, &fluid.ConfigurationError{Field: "record.jpeg_quality", Value: quality, Reason: "must be in [1,100]"}
	}
	w, err := mjpeg.New(path, int32(res), int32(res), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("creating video %s: %w", path, err)
	}
	return &Recorder{path: path, quality: quality, writer: w}, nil
}

// AddFrame encodes the dye field as one video frame. It must be called on
// the stepping goroutine between steps.
func (r *Recorder) AddFrame(dye *fluid.Grid) error {
	r.img = DyeImage(dye, r.img)
	if err := EncodeJPEG(&r.buf, r.img, r.quality); err != nil {
		return err
	}
	if err := r.writer.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("adding frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int { return r.frames }

// Close finalises the AVI index.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("closing video %s: %w", r.path, err)
	}
	slog.Info("video written", "path", r.path, "frames", r.frames)
	return nil
}
