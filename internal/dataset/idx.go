package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/batchfit/internal/data"
)

// IDX magic numbers of unsigned-byte image and label files.
const (
	idxImagesMagic = 0x00000803
	idxLabelsMagic = 0x00000801
)

// LoadIDX reads an IDX image file and its label file (the MNIST format) into
// 2-D examples with one-hot labels over classes. limit > 0 keeps only the
// first limit examples.
func LoadIDX(imagesPath, labelsPath string, classes, limit int) ([]data.Matrix[uint8], error) {
	images, err := os.Open(imagesPath)
	if err != nil {
		return nil, err
	}
	defer images.Close()

	labels, err := os.Open(labelsPath)
	if err != nil {
		return nil, err
	}
	defer labels.Close()

	return ReadIDX(images, labels, classes, limit)
}

// ReadIDX is LoadIDX over readers.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes, row-major
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDX(images, labels io.Reader, classes, limit int) ([]data.Matrix[uint8], error) {
	if classes <= 0 {
		return nil, fmt.Errorf("%w: classes must be > 0", ErrSchema)
	}

	var imgHeader [4]uint32 // magic, count, rows, cols
	if err := binary.Read(images, binary.BigEndian, &imgHeader); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if imgHeader[0] != idxImagesMagic {
		return nil, fmt.Errorf("invalid image magic number: got %d, want %d", imgHeader[0], idxImagesMagic)
	}

	var lblHeader [2]uint32 // magic, count
	if err := binary.Read(labels, binary.BigEndian, &lblHeader); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if lblHeader[0] != idxLabelsMagic {
		return nil, fmt.Errorf("invalid label magic number: got %d, want %d", lblHeader[0], idxLabelsMagic)
	}

	count, rows, cols := int(imgHeader[1]), int(imgHeader[2]), int(imgHeader[3])
	if count != int(lblHeader[1]) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", count, lblHeader[1])
	}
	if limit > 0 {
		count = min(count, limit)
	}
	if count == 0 {
		return nil, ErrNoRecords
	}

	classIDs := make([]byte, count)
	if _, err := io.ReadFull(labels, classIDs); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	out := make([]data.Matrix[uint8], count)
	for i := range out {
		pixels := make([]uint8, rows*cols)
		if _, err := io.ReadFull(images, pixels); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		if int(classIDs[i]) >= classes {
			return nil, fmt.Errorf("image %d: %w: %d not in [0, %d)", i, ErrClassRange, classIDs[i], classes)
		}

		m := data.Matrix[uint8]{Rows: make([][]uint8, rows), Labels: make([]uint8, classes)}
		for r := range rows {
			m.Rows[r] = pixels[r*cols : (r+1)*cols]
		}
		m.Labels[classIDs[i]] = 1
		out[i] = m
	}
	return out, nil
}
