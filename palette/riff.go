package palette

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// readRIFF reads every palette chunk in a RIFF PAL stream and flattens the
// entries into a single ordered color list.
func readRIFF(r io.Reader) ([]color.NRGBA, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	return readChunks(rd)
}

func readChunks(r *riff.Reader) ([]color.NRGBA, error) {
	var res []color.NRGBA

	for {
		id, size, data, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return res, fmt.Errorf("could not read chunk #%d: %w", len(res), err)
		}

		if id == riff.LIST {
			listType, list, lerr := riff.NewListReader(size, data)
			if lerr != nil {
				return res, fmt.Errorf("could not read list chunk: %w", lerr)
			} else if listType != palType {
				return res, fmt.Errorf("unsupported list type: %s", string(listType[:]))
			}

			sub, lerr := readChunks(list)
			res = append(res, sub...)
			if lerr != nil {
				return res, lerr
			}
			continue
		} else if id != dataType {
			return res, fmt.Errorf("unsupported chunk type: %s", string(id[:]))
		}

		cols, err := readLogPalette(data)
		if err != nil {
			return res, err
		}
		res = append(res, cols...)
	}

	return res, nil
}

func readLogPalette(r io.Reader) ([]color.NRGBA, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read LOGPALETTE header: %w", err)
	}

	ver := binary.BigEndian.Uint16(hdr[:2])
	if ver != 3 {
		return nil, fmt.Errorf("unsupported palette version: %d", ver)
	}

	count := binary.LittleEndian.Uint16(hdr[2:])
	res := make([]color.NRGBA, count)
	var entry [4]byte
	for i := range count {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return res, fmt.Errorf("could not read color %d/%d: %w", i, count, err)
		}
		res[i] = color.NRGBA{R: entry[0], G: entry[1], B: entry[2], A: 0xFF}
	}

	return res, nil
}
